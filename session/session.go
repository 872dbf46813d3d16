// Package session defines the storage interface this core consumes
// (spec.md §6) plus a reference TL-serialized, file-backed implementation.
// Session persistence algorithms beyond this reference store are out of
// scope (spec.md §1); callers may supply their own Store.
package session

import (
	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/peer"
)

// DcOption is a known datacenter address, with an optional negotiated auth
// key once the handshake has completed (spec.md §3 DcOption).
type DcOption struct {
	ID      int32
	IPv4    string
	IPv6    string
	AuthKey *crypto.AuthKey
}

// UserInfo records who the authenticated session belongs to, so bot-vs-user
// decisions (e.g. channel-difference limit selection, spec.md §4.6.4) don't
// need a live RPC round trip (grounded in
// grammers-session/src/storages/tl_session.rs, dropped by the distillation).
type UserInfo struct {
	ID  int64
	Bot bool
}

// ChannelState is one channel's pts entry within UpdatesState.
type ChannelState struct {
	ID  int64
	Pts int32
}

// UpdatesState is the full snapshot the sequencer needs to resume after a
// restart (spec.md §3 State/MessageBoxes, persisted via §6's
// updates_state()).
type UpdatesState struct {
	Pts      int32
	Qts      int32
	Date     int32
	Seq      int32
	Channels []ChannelState
}

// UpdateStateKind discriminates which fields of an UpdateState write are
// meaningful, mirroring the original's four-shape encoding
// (grammers-session/src/storages/tl_session.rs) rather than collapsing
// every update to one shape.
type UpdateStateKind int

const (
	// StateAll replaces pts, qts, date and seq in one shot (e.g. after
	// updates.getState or updates.getDifference converges).
	StateAll UpdateStateKind = iota
	// StatePrimary updates only pts/date/seq (account difference progress
	// before qts is known).
	StatePrimary
	// StateSecondary updates only qts (secret chat progress).
	StateSecondary
	// StateChannel updates a single channel's pts.
	StateChannel
)

// UpdateState is a discriminated update to persisted state; exactly the
// fields relevant to Kind are meaningful.
type UpdateState struct {
	Kind      UpdateStateKind
	Pts       int32
	Qts       int32
	Date      int32
	Seq       int32
	ChannelID int64
}

// Store is the session persistence interface this core consumes. It is
// shared-mutable across goroutines; implementations must serialize access
// internally and keep every method fast and non-blocking (spec.md §5).
type Store interface {
	HomeDcID() int32
	SetHomeDcID(id int32)

	DcOption(dcID int32) (DcOption, bool)
	SetDcOption(opt DcOption)

	Peer(id peer.ID) (peer.Info, bool)
	CachePeer(info peer.Info)

	UpdatesState() (UpdatesState, error)
	SetUpdateState(update UpdateState) error

	// UserInfo/SetUserInfo persist who this session belongs to, so bot
	// status survives a restart without a live RPC round trip (spec.md
	// §4.6.4's bot-vs-user channel-difference limit).
	UserInfo() UserInfo
	SetUserInfo(info UserInfo)
}
