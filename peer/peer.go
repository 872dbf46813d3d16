// Package peer holds the compact identity types addressed across dc
// boundaries (spec.md §3 Peer, §4.7 Peer cache).
package peer

// Kind discriminates the shapes of addressable peers.
type Kind int

const (
	SelfUser Kind = iota
	User
	Bot
	Chat
	Megagroup
	Broadcast
	Gigagroup
)

func (k Kind) String() string {
	switch k {
	case SelfUser:
		return "self-user"
	case User:
		return "user"
	case Bot:
		return "bot"
	case Chat:
		return "chat"
	case Megagroup:
		return "megagroup"
	case Broadcast:
		return "broadcast"
	case Gigagroup:
		return "gigagroup"
	default:
		return "unknown"
	}
}

// ID is a compact identity: chats need no access hash, users and channels
// do (carried separately in Info).
type ID struct {
	Kind Kind
	ID   int64
}

// NeedsHash reports whether this kind of peer must be addressed with an
// access_hash.
func (p ID) NeedsHash() bool {
	switch p.Kind {
	case User, Bot, Megagroup, Broadcast, Gigagroup:
		return true
	default:
		return false
	}
}

// Info pairs a peer identity with the access hash needed to address it.
// Min marks a hash obtained from a "min" constructor — session-bound, never
// persisted (spec.md §4.7, Glossary "Min constructor").
type Info struct {
	ID         ID
	AccessHash *int64
	Min        bool
}

// Map is the per-update scratch cache: ids to raw user/chat records seen
// while processing one batch of updates, valid only for that batch's
// lifetime (spec.md §4.7 surface (b)).
type Map struct {
	entries map[ID]Info
}

// NewMap creates an empty per-update peer map.
func NewMap() *Map {
	return &Map{entries: make(map[ID]Info)}
}

// Put records a peer seen in the current batch.
func (m *Map) Put(info Info) {
	m.entries[info.ID] = info
}

// Get looks up a peer seen so far in this batch.
func (m *Map) Get(id ID) (Info, bool) {
	info, ok := m.entries[id]
	return info, ok
}

// Len reports how many distinct peers have been recorded.
func (m *Map) Len() int { return len(m.entries) }
