// Package updates is the update sequencer: it sits between the sender
// pool's update channel and the application, delivering updates in
// per-entry order without duplicates or gaps (spec.md §4.6).
package updates

import "github.com/gotdgram/mtclient/tl"

// EntryKind discriminates the sequencer's pts-tracking buckets
// (spec.md §4.6.1, Glossary "Entry").
type EntryKind int

const (
	AccountWideKind EntryKind = iota
	SecretChatsKind
	ChannelKind
)

// Entry identifies one pts bucket. ChannelID is only meaningful when
// Kind == ChannelKind.
type Entry struct {
	Kind      EntryKind
	ChannelID int64
}

func AccountWide() Entry         { return Entry{Kind: AccountWideKind} }
func SecretChats() Entry         { return Entry{Kind: SecretChatsKind} }
func ChannelEntry(id int64) Entry { return Entry{Kind: ChannelKind, ChannelID: id} }

// PtsInfo is the normalized per-update sequence marker spec.md §4.6.1
// describes every non-informational update as carrying.
type PtsInfo struct {
	Pts      int32
	PtsCount int32
	Entry    Entry
}

// Item is one normalized update, ready for the sequencer's ordering rules.
// Pts is nil for the purely informational updates (typing notifications,
// status changes) that have no pts and pass straight through.
type Item struct {
	Pts  *PtsInfo
	Body tl.Object

	// GapEntry is set for updateChannelTooLong: a single-entry gap
	// declaration independent of any pts arithmetic (spec.md §4.6.1).
	GapEntry *Entry
}

// Envelope is a normalized top-level update container: either a single
// short-form update or a full "updates"/"updatesCombined" batch.
type Envelope struct {
	Items []Item

	HasSeq   bool
	SeqStart int32
	Seq      int32
	Date     int32

	// GapAccountWide is set for updatesTooLong: declare a gap on the
	// account-wide entry outright (spec.md §4.6.1).
	GapAccountWide bool
}

// Normalize decodes one raw update payload (as delivered by the sender
// pool's Updates channel) into a uniform Envelope, collapsing the several
// compact envelopes spec.md §4.6.1 lists into one shape.
func Normalize(raw []byte) (*Envelope, error) {
	d := tl.NewDecoder(raw)
	obj := d.Object()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return normalizeObject(obj), nil
}

func normalizeObject(obj tl.Object) *Envelope {
	switch u := obj.(type) {
	case tl.UpdateShort:
		return &Envelope{Items: []Item{itemFromInner(u.Update)}, Date: u.Date}

	case tl.Updates:
		items := make([]Item, 0, len(u.UpdatesList))
		for _, inner := range u.UpdatesList {
			items = append(items, itemFromInner(inner))
		}
		return &Envelope{Items: items, HasSeq: true, SeqStart: u.Seq, Seq: u.Seq, Date: u.Date}

	case tl.UpdatesCombined:
		items := make([]Item, 0, len(u.UpdatesList))
		for _, inner := range u.UpdatesList {
			items = append(items, itemFromInner(inner))
		}
		return &Envelope{Items: items, HasSeq: true, SeqStart: u.SeqStart, Seq: u.Seq, Date: u.Date}

	case tl.UpdateShortMessage:
		entry := AccountWide()
		return &Envelope{Items: []Item{{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: entry}, Body: u}}, Date: u.Date}

	case tl.UpdateShortChatMessage:
		entry := AccountWide()
		return &Envelope{Items: []Item{{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: entry}, Body: u}}, Date: u.Date}

	case tl.UpdateShortSentMessage:
		entry := AccountWide()
		return &Envelope{Items: []Item{{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: entry}, Body: u}}, Date: u.Date}

	case tl.UpdatesTooLong:
		return &Envelope{GapAccountWide: true}

	default:
		return &Envelope{Items: []Item{itemFromInner(obj)}}
	}
}

// itemFromInner classifies one inner update object from an "updates"/
// "updatesCombined" list (or a short envelope's single update) into an
// Item, extracting its PtsInfo when it carries one.
func itemFromInner(obj tl.Object) Item {
	switch u := obj.(type) {
	case tl.UpdateNewMessage:
		return Item{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: AccountWide()}, Body: u}
	case tl.UpdateDeleteMessages:
		return Item{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: AccountWide()}, Body: u}
	case tl.UpdateNewChannelMessage:
		entry := ChannelEntry(int64(u.ChannelID))
		return Item{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: entry}, Body: u}
	case tl.UpdateDeleteChannelMessages:
		entry := ChannelEntry(int64(u.ChannelID))
		return Item{Pts: &PtsInfo{Pts: u.Pts, PtsCount: u.PtsCount, Entry: entry}, Body: u}
	case tl.UpdateChannelTooLong:
		entry := ChannelEntry(int64(u.ChannelID))
		return Item{Body: u, GapEntry: &entry}
	default:
		// Informational: no pts, passes straight through (spec.md §4.6.1).
		return Item{Body: obj}
	}
}
