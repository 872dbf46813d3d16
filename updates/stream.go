package updates

import (
	"context"
	"sync"
	"time"

	"github.com/gotdgram/mtclient/invoker"
	"github.com/gotdgram/mtclient/peer"
	"github.com/gotdgram/mtclient/sender"
	"github.com/gotdgram/mtclient/session"
)

// outQueueSize bounds how many ordered updates can sit ready for the
// application before the sequencer starts dropping and warning (spec.md
// §4.6.5). Applications that fall behind permanently need a faster
// consumer, not a bigger buffer.
const outQueueSize = 4096

// backpressureWarnEvery throttles the "queue full, dropping updates"
// warning so a stuck consumer doesn't flood the log (spec.md §4.6.5).
const backpressureWarnEvery = 5 * time.Minute

// Sequencer consumes a pool's raw update feed, orders it per entry, and
// recovers from gaps via updates.getDifference / updates.getChannelDifference
// (spec.md §4.6).
type Sequencer struct {
	store session.Store
	peers *peer.Map
	inv   *invoker.Invoker
	log   sender.Logger
	bot   bool

	box *box
	in  <-chan []byte
	out chan Update

	done chan struct{}
	once sync.Once

	warnMu   sync.Mutex
	lastWarn time.Time
}

// New builds a Sequencer around a pool's update feed. peers is the shared
// per-update peer cache (spec.md §4.7) the caller also feeds from replies,
// since channel difference recovery needs access hashes out of it.
func New(in <-chan []byte, store session.Store, peers *peer.Map, inv *invoker.Invoker, bot bool, log sender.Logger) (*Sequencer, error) {
	state, err := store.UpdatesState()
	if err != nil {
		return nil, err
	}
	return &Sequencer{
		store: store,
		peers: peers,
		inv:   inv,
		log:   log,
		bot:   bot,
		box:   newBox(state),
		in:    in,
		out:   make(chan Update, outQueueSize),
		done:  make(chan struct{}),
	}, nil
}

// Updates is the ordered, gap-free stream applications read from.
func (s *Sequencer) Updates() <-chan Update { return s.out }

// Close stops Run.
func (s *Sequencer) Close() {
	s.once.Do(func() { close(s.done) })
}

// Run drives the sequencer until ctx is cancelled or Close is called: every
// raw payload off in is normalized and ordered, timed-out possible gaps
// trigger difference recovery, and a fully quiet message box triggers
// refreshState (spec.md §4.6.3).
func (s *Sequencer) Run(ctx context.Context) error {
	timer := time.NewTimer(entrySoftDeadline)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil

		case raw, ok := <-s.in:
			if !ok {
				return nil
			}
			s.handleRaw(ctx, raw)
			// A new possible gap may need checking well before the timer's
			// current deadline (spec.md §4.6.2 rule 5's 500ms window), so
			// re-arm against whatever is now soonest.
			resetTimer(timer, time.Until(s.box.peekDeadline(time.Now())))

		case now := <-timer.C:
			gaps, refresh, next := s.box.checkDeadlines(now)
			for _, e := range gaps {
				go s.recoverEntry(ctx, e)
			}
			if refresh {
				go s.refreshState(ctx)
			}
			resetTimer(timer, time.Until(next))
		}
	}
}

func (s *Sequencer) handleRaw(ctx context.Context, raw []byte) {
	env, err := Normalize(raw)
	if err != nil {
		s.logError(err, "updates: malformed update payload")
		return
	}
	ready, gaps := s.box.handleEnvelope(env)
	if env.HasSeq || len(env.Items) > 0 {
		pts, qts, date, seq := s.box.accountSnapshot()
		s.persistPrimary(pts, date, seq)
		s.persistSecondary(qts)
	}
	for _, u := range ready {
		s.emit(u)
	}
	for _, e := range gaps {
		go s.recoverEntry(ctx, e)
	}
}

// refreshState runs after a fully quiet message box: it starts a channel
// difference for every known channel entry and drives updates.getDifference
// for the account (spec.md §4.6.3). It does not send updates.getState.
func (s *Sequencer) refreshState(ctx context.Context) {
	for _, e := range s.box.channelEntries() {
		go s.recoverEntry(ctx, e)
	}
	s.recoverAccountDifference(ctx)
}

func (s *Sequencer) emit(u Update) {
	select {
	case s.out <- u:
	default:
		s.warnDropped()
	}
}

func (s *Sequencer) warnDropped() {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	now := time.Now()
	if now.Sub(s.lastWarn) < backpressureWarnEvery {
		return
	}
	s.lastWarn = now
	if s.log != nil {
		s.log.Debug("updates: output queue full, dropping updates until the consumer catches up")
	}
}

func (s *Sequencer) persistAccount(pts, qts, date, seq int32) {
	s.persistAll(pts, qts, date, seq)
}

func (s *Sequencer) persistAll(pts, qts, date, seq int32) {
	if err := s.store.SetUpdateState(session.UpdateState{Kind: session.StateAll, Pts: pts, Qts: qts, Date: date, Seq: seq}); err != nil {
		s.logError(err, "updates: persisting full state failed")
	}
}

func (s *Sequencer) persistPrimary(pts, date, seq int32) {
	if err := s.store.SetUpdateState(session.UpdateState{Kind: session.StatePrimary, Pts: pts, Date: date, Seq: seq}); err != nil {
		s.logError(err, "updates: persisting primary state failed")
	}
}

func (s *Sequencer) persistSecondary(qts int32) {
	if err := s.store.SetUpdateState(session.UpdateState{Kind: session.StateSecondary, Qts: qts}); err != nil {
		s.logError(err, "updates: persisting secondary state failed")
	}
}

func (s *Sequencer) persistChannel(channelID int64, pts int32) {
	if err := s.store.SetUpdateState(session.UpdateState{Kind: session.StateChannel, ChannelID: channelID, Pts: pts}); err != nil {
		s.logError(err, "updates: persisting channel %d state failed", channelID)
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	if d <= 0 {
		d = time.Millisecond
	}
	t.Reset(d)
}
