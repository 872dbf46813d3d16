package updates

import (
	"sync"
	"time"

	"github.com/gotdgram/mtclient/session"
	"github.com/gotdgram/mtclient/tl"
)

// possibleGapTimeout is how long a possible gap is allowed to sit buffered
// before the sequencer gives up waiting for the missing updates and treats
// it as a real gap (spec.md §4.6.2 rule 5, §4.6.3's "ms" timer).
const possibleGapTimeout = 500 * time.Millisecond

// entrySoftDeadline is how long an entry may go without activity before the
// sequencer proactively runs updates.getDifference plus a channel difference
// for every known channel (spec.md §4.6.3); updates.getState is not sent.
const entrySoftDeadline = 15 * time.Minute

// entryState tracks one pts bucket's local progress.
type entryState struct {
	LocalPts     int32
	LastActivity time.Time
}

// gapRecord buffers updates that arrived ahead of the entry's local_pts,
// waiting either for the missing in-between update or for the timeout.
type gapRecord struct {
	Deadline time.Time
	Buffered []Item
}

// Update is one fully-ordered update ready for delivery to the application.
// Entry is the zero value for informational updates that never carried a
// PtsInfo.
type Update struct {
	Entry Entry
	Body  tl.Object
}

// box holds the sequencer's ordering state: per-entry local pts, in-flight
// possible gaps, and which entries are currently awaiting a difference
// (spec.md §4.6.2-§4.6.3).
type box struct {
	mu           sync.Mutex
	entries      map[Entry]*entryState
	possibleGaps map[Entry]*gapRecord
	gettingDiff  map[Entry]bool

	accountSeq  int32
	accountDate int32
}

func newBox(state session.UpdatesState) *box {
	b := &box{
		entries:      make(map[Entry]*entryState),
		possibleGaps: make(map[Entry]*gapRecord),
		gettingDiff:  make(map[Entry]bool),
		accountSeq:   state.Seq,
		accountDate:  state.Date,
	}
	now := time.Now()
	b.entries[AccountWide()] = &entryState{LocalPts: state.Pts, LastActivity: now}
	b.entries[SecretChats()] = &entryState{LocalPts: state.Qts, LastActivity: now}
	for _, ch := range state.Channels {
		b.entries[ChannelEntry(ch.ID)] = &entryState{LocalPts: ch.Pts, LastActivity: now}
	}
	return b
}

// entryFor returns e's tracking state, lazily creating it. This is how a
// channel entry dropped on CHANNEL_PRIVATE comes back: the next update that
// mentions the channel gets a fresh entry starting from pts 0
// (an Open Question this core resolves by not resurrecting proactively).
func (b *box) entryFor(e Entry) *entryState {
	st, ok := b.entries[e]
	if !ok {
		st = &entryState{LastActivity: time.Now()}
		b.entries[e] = st
	}
	return st
}

// handleEnvelope applies one normalized Envelope's ordering, returning the
// updates now ready for delivery and the entries that need a difference
// fetched (account-wide or a specific channel).
func (b *box) handleEnvelope(env *Envelope) (ready []Update, gaps []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if env.GapAccountWide {
		gaps = append(gaps, b.triggerGapLocked(AccountWide())...)
		return ready, gaps
	}

	if env.HasSeq && env.SeqStart > b.accountSeq+1 {
		gaps = append(gaps, b.triggerGapLocked(AccountWide())...)
		return ready, gaps
	}

	for _, item := range env.Items {
		r, g := b.handleItemLocked(item)
		ready = append(ready, r...)
		gaps = append(gaps, g...)
	}

	if env.HasSeq && env.Seq != 0 && env.Seq > b.accountSeq {
		b.accountSeq = env.Seq
		b.accountDate = env.Date
	}
	return ready, gaps
}

func (b *box) handleItemLocked(item Item) (ready []Update, gaps []Entry) {
	if item.GapEntry != nil {
		return nil, b.triggerGapLocked(*item.GapEntry)
	}
	if item.Pts == nil {
		return []Update{{Body: item.Body}}, nil
	}

	e := item.Pts.Entry
	if b.gettingDiff[e] {
		// A difference is already in flight for this entry; drop live
		// traffic for it until the difference lands (spec.md §4.6.4).
		return nil, nil
	}

	if gap, buffering := b.possibleGaps[e]; buffering {
		gap.Buffered = append(gap.Buffered, item)
		return b.tryResolveGapLocked(e), nil
	}

	st := b.entryFor(e)
	newPts, count := item.Pts.Pts, item.Pts.PtsCount

	if newPts <= st.LocalPts {
		return nil, nil // rule 1: already applied
	}
	if newPts-count == st.LocalPts {
		st.LocalPts = newPts
		st.LastActivity = time.Now()
		return []Update{{Entry: e, Body: item.Body}}, nil // rule 2: in order
	}

	// rule 3: possible gap, buffer and start the timeout
	b.possibleGaps[e] = &gapRecord{
		Deadline: time.Now().Add(possibleGapTimeout),
		Buffered: []Item{item},
	}
	return nil, nil
}

// tryResolveGapLocked drains as much of a possible gap's buffer as is now
// contiguous with the entry's local_pts (rule 4: gap closed).
func (b *box) tryResolveGapLocked(e Entry) []Update {
	gap := b.possibleGaps[e]
	st := b.entryFor(e)

	var ready []Update
	for progressed := true; progressed; {
		progressed = false
		for i, it := range gap.Buffered {
			if it.Pts.Pts-it.Pts.PtsCount == st.LocalPts {
				st.LocalPts = it.Pts.Pts
				st.LastActivity = time.Now()
				ready = append(ready, Update{Entry: e, Body: it.Body})
				gap.Buffered = append(gap.Buffered[:i], gap.Buffered[i+1:]...)
				progressed = true
				break
			}
		}
	}
	if len(gap.Buffered) == 0 {
		delete(b.possibleGaps, e)
	}
	return ready
}

// triggerGapLocked marks e as awaiting a difference and drops whatever was
// buffered for it; the caller is responsible for actually issuing the
// difference request outside the lock.
func (b *box) triggerGapLocked(e Entry) []Entry {
	if b.gettingDiff[e] {
		return nil
	}
	b.gettingDiff[e] = true
	delete(b.possibleGaps, e)
	return []Entry{e}
}

// checkDeadlines fires timed-out possible gaps (rule 5) and reports whether
// every entry has gone quiet long enough to warrant an unsolicited state
// refresh (spec.md §4.6.3). It returns the entries that need a
// difference and the next time checkDeadlines should be called again.
func (b *box) checkDeadlines(now time.Time) (gaps []Entry, refresh bool, next time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next = now.Add(entrySoftDeadline)
	for e, gap := range b.possibleGaps {
		if !gap.Deadline.After(now) {
			gaps = append(gaps, b.triggerGapLocked(e)...)
			continue
		}
		if gap.Deadline.Before(next) {
			next = gap.Deadline
		}
	}

	refresh = len(b.entries) > 0
	for _, st := range b.entries {
		deadline := st.LastActivity.Add(entrySoftDeadline)
		if deadline.After(now) {
			refresh = false
		}
		if deadline.Before(next) {
			next = deadline
		}
	}
	return gaps, refresh, next
}

// peekDeadline reports the next time checkDeadlines needs calling, without
// firing anything — used to re-arm the run loop's timer right after a new
// possible gap is buffered, instead of waiting for the next scheduled tick.
func (b *box) peekDeadline(now time.Time) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := now.Add(entrySoftDeadline)
	for _, gap := range b.possibleGaps {
		if gap.Deadline.Before(next) {
			next = gap.Deadline
		}
	}
	for _, st := range b.entries {
		deadline := st.LastActivity.Add(entrySoftDeadline)
		if deadline.Before(next) {
			next = deadline
		}
	}
	return next
}

// applyState overwrites an entry's local pts after a successful difference
// fetch and touches its activity clock.
func (b *box) applyState(e Entry, pts int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.entryFor(e)
	st.LocalPts = pts
	st.LastActivity = time.Now()
}

// dropEntry removes e entirely, e.g. after CHANNEL_PRIVATE. A later update
// mentioning the same channel recreates it via entryFor (lazy resurrection).
func (b *box) dropEntry(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, e)
	delete(b.possibleGaps, e)
}

func (b *box) clearGettingDiff(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.gettingDiff, e)
}

func (b *box) setAccountState(seq, date int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accountSeq = seq
	b.accountDate = date
}

func (b *box) snapshot(e Entry) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entryFor(e).LocalPts
}

func (b *box) accountSnapshot() (pts, qts, date, seq int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entryFor(AccountWide()).LocalPts, b.entryFor(SecretChats()).LocalPts, b.accountDate, b.accountSeq
}

func (b *box) channelEntries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Entry
	for e := range b.entries {
		if e.Kind == ChannelKind {
			out = append(out, e)
		}
	}
	return out
}
