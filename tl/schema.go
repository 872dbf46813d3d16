package tl

// Domain-specific constructors: datacenter config, connection bootstrap,
// peers/users/chats, the update envelope family, and the RPCs the update
// sequencer and invoker issue directly (spec.md §4.4, §4.6, §6).

const (
	crcDcOption uint32 = 0x18b7a10d
	crcConfig   uint32 = 0x232d5905

	crcInitConnection uint32 = 0xc1cd5ea9
	crcInvokeWithLayer uint32 = 0xda9b0d0d
	crcInvokeAfterMsg  uint32 = 0xcb9f372d
	crcHelpGetConfig  uint32 = 0xc4f9186b

	crcPeerUser    uint32 = 0x59511722
	crcPeerChat    uint32 = 0x36c6019a
	crcPeerChannel uint32 = 0xa2a5371e

	crcInputPeerUser    uint32 = 0x7b8e7de6
	crcInputPeerChat    uint32 = 0x35a95cb9
	crcInputPeerChannel uint32 = 0x27bcbbfc
	crcInputChannel     uint32 = 0xf35aec28

	crcUser    uint32 = 0x3ff6ecb0
	crcChat    uint32 = 0x41cbf256
	crcChannel uint32 = 0x8261ac61

	crcUpdateShort          uint32 = 0x78d4dec1
	crcUpdates              uint32 = 0x74ae4240
	crcUpdatesCombined      uint32 = 0x725b04c3
	crcUpdateShortMessage   uint32 = 0x313bc7f8
	crcUpdateShortChatMsg   uint32 = 0x4d6deea5
	crcUpdateShortSentMsg   uint32 = 0x11f1331c
	crcUpdatesTooLong       uint32 = 0xe317af7e

	crcUpdateNewMessage            uint32 = 0x1f2b0afd
	crcUpdateDeleteMessages        uint32 = 0xa20db0e5
	crcUpdateNewChannelMessage     uint32 = 0x62f0fde9
	crcUpdateDeleteChannelMessages uint32 = 0xc32d5b12
	crcUpdateChannelTooLong        uint32 = 0x108d941f
	crcUpdateUserStatus            uint32 = 0xe5bdf8de // pts-less, passes through

	crcUpdatesGetState           uint32 = 0xedd4882a
	crcUpdatesState              uint32 = 0xa56c2a3e
	crcUpdatesGetDifference      uint32 = 0x19c2f763
	crcUpdatesDifferenceEmpty    uint32 = 0x5d75a138
	crcUpdatesDifference         uint32 = 0x00f49ca0
	crcUpdatesDifferenceSlice    uint32 = 0xa8fb1981
	crcUpdatesDifferenceTooLong  uint32 = 0x4afe8f6d

	crcUpdatesGetChannelDifference     uint32 = 0x03173d78
	crcUpdatesChannelDifferenceEmpty   uint32 = 0x3e11affb
	crcUpdatesChannelDifference        uint32 = 0x2064674e
	crcUpdatesChannelDifferenceTooLong uint32 = 0xa4bcc6fe

	crcAuthExportAuthorization   uint32 = 0xe5bfffcd
	crcAuthExportedAuthorization uint32 = 0xdf969c2d
	crcAuthImportAuthorization  uint32 = 0xe3ef9613
	crcAuthAuthorization        uint32 = 0xcd050916
)

func init() {
	Register(crcDcOption, func(d *Decoder) Object {
		return DcOption{
			ID:        d.Int(),
			IPAddress: d.String(),
			Port:      d.Int(),
			Ipv6:      d.Bool(),
		}
	})
	Register(crcConfig, func(d *Decoder) Object {
		thisDc := d.Int()
		options := d.Vector()
		dcOpts := make([]DcOption, 0, len(options))
		for _, o := range options {
			if opt, ok := o.(DcOption); ok {
				dcOpts = append(dcOpts, opt)
			}
		}
		return Config{ThisDC: thisDc, DcOptions: dcOpts}
	})

	Register(crcPeerUser, func(d *Decoder) Object { return PeerUser{UserID: d.Int()} })
	Register(crcPeerChat, func(d *Decoder) Object { return PeerChat{ChatID: d.Int()} })
	Register(crcPeerChannel, func(d *Decoder) Object { return PeerChannel{ChannelID: d.Int()} })

	Register(crcUser, func(d *Decoder) Object {
		return User{ID: d.Int(), AccessHash: d.Long(), Bot: d.Bool(), FirstName: d.String(), LastName: d.String(), Username: d.String()}
	})
	Register(crcChat, func(d *Decoder) Object { return Chat{ID: d.Int(), Title: d.String()} })
	Register(crcChannel, func(d *Decoder) Object {
		return Channel{ID: d.Int(), AccessHash: d.Long(), Title: d.String(), Megagroup: d.Bool()}
	})

	Register(crcUpdateShort, func(d *Decoder) Object {
		return UpdateShort{Update: d.Object(), Date: d.Int()}
	})
	Register(crcUpdates, func(d *Decoder) Object {
		return Updates{
			UpdatesList: d.Vector(),
			Users:       d.Vector(),
			Chats:       d.Vector(),
			Date:        d.Int(),
			Seq:         d.Int(),
		}
	})
	Register(crcUpdatesCombined, func(d *Decoder) Object {
		return UpdatesCombined{
			UpdatesList: d.Vector(),
			Users:       d.Vector(),
			Chats:       d.Vector(),
			Date:        d.Int(),
			SeqStart:    d.Int(),
			Seq:         d.Int(),
		}
	})
	Register(crcUpdateShortMessage, func(d *Decoder) Object {
		return UpdateShortMessage{ID: d.Int(), UserID: d.Int(), Message: d.String(), Pts: d.Int(), PtsCount: d.Int(), Date: d.Int()}
	})
	Register(crcUpdateShortChatMsg, func(d *Decoder) Object {
		return UpdateShortChatMessage{ID: d.Int(), FromID: d.Int(), ChatID: d.Int(), Message: d.String(), Pts: d.Int(), PtsCount: d.Int(), Date: d.Int()}
	})
	Register(crcUpdateShortSentMsg, func(d *Decoder) Object {
		return UpdateShortSentMessage{ID: d.Int(), Pts: d.Int(), PtsCount: d.Int(), Date: d.Int()}
	})
	Register(crcUpdatesTooLong, func(d *Decoder) Object { return UpdatesTooLong{} })

	Register(crcUpdateNewMessage, func(d *Decoder) Object {
		return UpdateNewMessage{MessageID: d.Int(), Pts: d.Int(), PtsCount: d.Int()}
	})
	Register(crcUpdateDeleteMessages, func(d *Decoder) Object {
		return UpdateDeleteMessages{Messages: d.VectorInt(), Pts: d.Int(), PtsCount: d.Int()}
	})
	Register(crcUpdateNewChannelMessage, func(d *Decoder) Object {
		return UpdateNewChannelMessage{ChannelID: d.Int(), MessageID: d.Int(), Pts: d.Int(), PtsCount: d.Int()}
	})
	Register(crcUpdateDeleteChannelMessages, func(d *Decoder) Object {
		return UpdateDeleteChannelMessages{ChannelID: d.Int(), Messages: d.VectorInt(), Pts: d.Int(), PtsCount: d.Int()}
	})
	Register(crcUpdateChannelTooLong, func(d *Decoder) Object {
		return UpdateChannelTooLong{ChannelID: d.Int()}
	})
	Register(crcUpdateUserStatus, func(d *Decoder) Object {
		return UpdateUserStatus{UserID: d.Int(), Online: d.Bool()}
	})

	Register(crcUpdatesState, func(d *Decoder) Object {
		return UpdatesState{Pts: d.Int(), Qts: d.Int(), Date: d.Int(), Seq: d.Int(), UnreadCount: d.Int()}
	})
	Register(crcUpdatesDifferenceEmpty, func(d *Decoder) Object {
		return DifferenceEmpty{Date: d.Int(), Seq: d.Int()}
	})
	Register(crcUpdatesDifference, func(d *Decoder) Object {
		return Difference{
			NewMessages:  d.VectorInt(),
			OtherUpdates: d.Vector(),
			Users:        d.Vector(),
			Chats:        d.Vector(),
			State:        d.Object(),
		}
	})
	Register(crcUpdatesDifferenceSlice, func(d *Decoder) Object {
		return DifferenceSlice{
			NewMessages:      d.VectorInt(),
			OtherUpdates:     d.Vector(),
			Users:            d.Vector(),
			Chats:            d.Vector(),
			IntermediateState: d.Object(),
		}
	})
	Register(crcUpdatesDifferenceTooLong, func(d *Decoder) Object {
		return DifferenceTooLong{Pts: d.Int()}
	})

	Register(crcUpdatesChannelDifferenceEmpty, func(d *Decoder) Object {
		return ChannelDifferenceEmpty{Pts: d.Int(), Timeout: d.Int()}
	})
	Register(crcUpdatesChannelDifference, func(d *Decoder) Object {
		return ChannelDifference{
			Final:        d.Bool(),
			Pts:          d.Int(),
			Timeout:      d.Int(),
			NewMessages:  d.VectorInt(),
			OtherUpdates: d.Vector(),
			Users:        d.Vector(),
			Chats:        d.Vector(),
		}
	})
	Register(crcUpdatesChannelDifferenceTooLong, func(d *Decoder) Object {
		return ChannelDifferenceTooLong{Pts: d.Int(), Timeout: d.Int()}
	})

	Register(crcAuthExportedAuthorization, func(d *Decoder) Object {
		return AuthExportedAuthorization{ID: d.Int(), Bytes: d.StringBytes()}
	})
	Register(crcAuthAuthorization, func(d *Decoder) Object {
		return AuthAuthorization{User: d.Object()}
	})
}

// DcOption is one datacenter address entry (spec.md §3).
type DcOption struct {
	ID        int32
	IPAddress string
	Port      int32
	Ipv6      bool
}

func (DcOption) CRC() uint32 { return crcDcOption }
func (o DcOption) EncodeBody(e *Encoder) {
	e.Int(o.ID)
	e.String(o.IPAddress)
	e.Int(o.Port)
	e.Bool(o.Ipv6)
}

// Config is help.getConfig's response, trimmed to what the sender pool's
// bootstrap needs (spec.md §4.4).
type Config struct {
	ThisDC    int32
	DcOptions []DcOption
}

func (Config) CRC() uint32 { return crcConfig }
func (c Config) EncodeBody(e *Encoder) {
	e.Int(c.ThisDC)
	objs := make([]Object, len(c.DcOptions))
	for i, o := range c.DcOptions {
		objs[i] = o
	}
	e.Vector(objs)
}

// InitConnection wraps a request with client identification parameters
// (spec.md §6 connection parameters).
type InitConnection struct {
	APIID          int32
	DeviceModel    string
	SystemVersion  string
	AppVersion     string
	SystemLangCode string
	LangPack       string
	LangCode       string
	Query          Object
}

func (InitConnection) CRC() uint32 { return crcInitConnection }
func (i InitConnection) EncodeBody(e *Encoder) {
	e.Int(i.APIID)
	e.String(i.DeviceModel)
	e.String(i.SystemVersion)
	e.String(i.AppVersion)
	e.String(i.SystemLangCode)
	e.String(i.LangPack)
	e.String(i.LangCode)
	e.Object(i.Query)
}

// InvokeWithLayer pins a TL schema layer number on the wrapped query
// (spec.md §6: changing the layer implies a breaking schema change).
type InvokeWithLayer struct {
	Layer int32
	Query Object
}

func (InvokeWithLayer) CRC() uint32 { return crcInvokeWithLayer }
func (i InvokeWithLayer) EncodeBody(e *Encoder) {
	e.Int(i.Layer)
	e.Object(i.Query)
}

// InvokeAfterMsg wraps a query so the server defers processing it until
// MsgID's effects have been applied (spec.md §5 invokeAfterMsg bundling).
type InvokeAfterMsg struct {
	MsgID int64
	Query Object
}

func (InvokeAfterMsg) CRC() uint32 { return crcInvokeAfterMsg }
func (i InvokeAfterMsg) EncodeBody(e *Encoder) {
	e.Long(i.MsgID)
	e.Object(i.Query)
}

// HelpGetConfig has no fields.
type HelpGetConfig struct{}

func (HelpGetConfig) CRC() uint32             { return crcHelpGetConfig }
func (HelpGetConfig) EncodeBody(e *Encoder) {}

// Peer* are the compact addressed-by-id variants (spec.md §3 Peer).
type PeerUser struct{ UserID int32 }

func (PeerUser) CRC() uint32 { return crcPeerUser }
func (p PeerUser) EncodeBody(e *Encoder) { e.Int(p.UserID) }

type PeerChat struct{ ChatID int32 }

func (PeerChat) CRC() uint32 { return crcPeerChat }
func (p PeerChat) EncodeBody(e *Encoder) { e.Int(p.ChatID) }

type PeerChannel struct{ ChannelID int32 }

func (PeerChannel) CRC() uint32 { return crcPeerChannel }
func (p PeerChannel) EncodeBody(e *Encoder) { e.Int(p.ChannelID) }

// InputChannel addresses a channel/megagroup for getChannelDifference,
// requiring the access hash from the peer cache (spec.md §4.6.4, §4.7).
type InputChannel struct {
	ChannelID  int32
	AccessHash int64
}

func (InputChannel) CRC() uint32 { return crcInputChannel }
func (c InputChannel) EncodeBody(e *Encoder) {
	e.Int(c.ChannelID)
	e.Long(c.AccessHash)
}

// User/Chat/Channel are trimmed "new peer info" records returned alongside
// updates and differences.
type User struct {
	ID         int32
	AccessHash int64
	Bot        bool
	FirstName  string
	LastName   string
	Username   string
}

func (User) CRC() uint32 { return crcUser }
func (u User) EncodeBody(e *Encoder) {
	e.Int(u.ID)
	e.Long(u.AccessHash)
	e.Bool(u.Bot)
	e.String(u.FirstName)
	e.String(u.LastName)
	e.String(u.Username)
}

type Chat struct {
	ID    int32
	Title string
}

func (Chat) CRC() uint32 { return crcChat }
func (c Chat) EncodeBody(e *Encoder) {
	e.Int(c.ID)
	e.String(c.Title)
}

type Channel struct {
	ID         int32
	AccessHash int64
	Title      string
	Megagroup  bool
}

func (Channel) CRC() uint32 { return crcChannel }
func (c Channel) EncodeBody(e *Encoder) {
	e.Int(c.ID)
	e.Long(c.AccessHash)
	e.String(c.Title)
	e.Bool(c.Megagroup)
}

// --- Update envelope family (spec.md §4.6.1) ---

type UpdateShort struct {
	Update Object
	Date   int32
}

func (UpdateShort) CRC() uint32 { return crcUpdateShort }
func (u UpdateShort) EncodeBody(e *Encoder) {
	e.Object(u.Update)
	e.Int(u.Date)
}

type Updates struct {
	UpdatesList []Object
	Users       []Object
	Chats       []Object
	Date        int32
	Seq         int32
}

func (Updates) CRC() uint32 { return crcUpdates }
func (u Updates) EncodeBody(e *Encoder) {
	e.Vector(u.UpdatesList)
	e.Vector(u.Users)
	e.Vector(u.Chats)
	e.Int(u.Date)
	e.Int(u.Seq)
}

type UpdatesCombined struct {
	UpdatesList []Object
	Users       []Object
	Chats       []Object
	Date        int32
	SeqStart    int32
	Seq         int32
}

func (UpdatesCombined) CRC() uint32 { return crcUpdatesCombined }
func (u UpdatesCombined) EncodeBody(e *Encoder) {
	e.Vector(u.UpdatesList)
	e.Vector(u.Users)
	e.Vector(u.Chats)
	e.Int(u.Date)
	e.Int(u.SeqStart)
	e.Int(u.Seq)
}

type UpdateShortMessage struct {
	ID       int32
	UserID   int32
	Message  string
	Pts      int32
	PtsCount int32
	Date     int32
}

func (UpdateShortMessage) CRC() uint32 { return crcUpdateShortMessage }
func (u UpdateShortMessage) EncodeBody(e *Encoder) {
	e.Int(u.ID)
	e.Int(u.UserID)
	e.String(u.Message)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
	e.Int(u.Date)
}

type UpdateShortChatMessage struct {
	ID       int32
	FromID   int32
	ChatID   int32
	Message  string
	Pts      int32
	PtsCount int32
	Date     int32
}

func (UpdateShortChatMessage) CRC() uint32 { return crcUpdateShortChatMsg }
func (u UpdateShortChatMessage) EncodeBody(e *Encoder) {
	e.Int(u.ID)
	e.Int(u.FromID)
	e.Int(u.ChatID)
	e.String(u.Message)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
	e.Int(u.Date)
}

type UpdateShortSentMessage struct {
	ID       int32
	Pts      int32
	PtsCount int32
	Date     int32
}

func (UpdateShortSentMessage) CRC() uint32 { return crcUpdateShortSentMsg }
func (u UpdateShortSentMessage) EncodeBody(e *Encoder) {
	e.Int(u.ID)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
	e.Int(u.Date)
}

// UpdatesTooLong tells the client to fetch a full difference
// (spec.md §4.6.1: equivalent to declaring a gap on AccountWide).
type UpdatesTooLong struct{}

func (UpdatesTooLong) CRC() uint32           { return crcUpdatesTooLong }
func (UpdatesTooLong) EncodeBody(e *Encoder) {}

// --- pts-carrying inner updates ---

type UpdateNewMessage struct {
	MessageID int32
	Pts       int32
	PtsCount  int32
}

func (UpdateNewMessage) CRC() uint32 { return crcUpdateNewMessage }
func (u UpdateNewMessage) EncodeBody(e *Encoder) {
	e.Int(u.MessageID)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
}

type UpdateDeleteMessages struct {
	Messages []int32
	Pts      int32
	PtsCount int32
}

func (UpdateDeleteMessages) CRC() uint32 { return crcUpdateDeleteMessages }
func (u UpdateDeleteMessages) EncodeBody(e *Encoder) {
	e.VectorInt(u.Messages)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
}

type UpdateNewChannelMessage struct {
	ChannelID int32
	MessageID int32
	Pts       int32
	PtsCount  int32
}

func (UpdateNewChannelMessage) CRC() uint32 { return crcUpdateNewChannelMessage }
func (u UpdateNewChannelMessage) EncodeBody(e *Encoder) {
	e.Int(u.ChannelID)
	e.Int(u.MessageID)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
}

type UpdateDeleteChannelMessages struct {
	ChannelID int32
	Messages  []int32
	Pts       int32
	PtsCount  int32
}

func (UpdateDeleteChannelMessages) CRC() uint32 { return crcUpdateDeleteChannelMessages }
func (u UpdateDeleteChannelMessages) EncodeBody(e *Encoder) {
	e.Int(u.ChannelID)
	e.VectorInt(u.Messages)
	e.Int(u.Pts)
	e.Int(u.PtsCount)
}

// UpdateChannelTooLong declares a gap on a single channel entry.
type UpdateChannelTooLong struct{ ChannelID int32 }

func (UpdateChannelTooLong) CRC() uint32 { return crcUpdateChannelTooLong }
func (u UpdateChannelTooLong) EncodeBody(e *Encoder) { e.Int(u.ChannelID) }

// UpdateUserStatus is one of the purely informational updates spec.md
// §4.6.1 describes: it carries no pts and passes straight through the
// sequencer.
type UpdateUserStatus struct {
	UserID int32
	Online bool
}

func (UpdateUserStatus) CRC() uint32 { return crcUpdateUserStatus }
func (u UpdateUserStatus) EncodeBody(e *Encoder) {
	e.Int(u.UserID)
	e.Bool(u.Online)
}

// --- updates.getState / updates.getDifference family ---

type UpdatesGetState struct{}

func (UpdatesGetState) CRC() uint32             { return crcUpdatesGetState }
func (UpdatesGetState) EncodeBody(e *Encoder) {}

type UpdatesState struct {
	Pts         int32
	Qts         int32
	Date        int32
	Seq         int32
	UnreadCount int32
}

func (UpdatesState) CRC() uint32 { return crcUpdatesState }
func (s UpdatesState) EncodeBody(e *Encoder) {
	e.Int(s.Pts)
	e.Int(s.Qts)
	e.Int(s.Date)
	e.Int(s.Seq)
	e.Int(s.UnreadCount)
}

type UpdatesGetDifference struct {
	Pts  int32
	Date int32
	Qts  int32
}

func (UpdatesGetDifference) CRC() uint32 { return crcUpdatesGetDifference }
func (g UpdatesGetDifference) EncodeBody(e *Encoder) {
	e.Int(g.Pts)
	e.Int(g.Date)
	e.Int(g.Qts)
}

type DifferenceEmpty struct {
	Date int32
	Seq  int32
}

func (DifferenceEmpty) CRC() uint32 { return crcUpdatesDifferenceEmpty }
func (d DifferenceEmpty) EncodeBody(e *Encoder) {
	e.Int(d.Date)
	e.Int(d.Seq)
}

type Difference struct {
	NewMessages  []int32
	OtherUpdates []Object
	Users        []Object
	Chats        []Object
	State        Object // UpdatesState
}

func (Difference) CRC() uint32 { return crcUpdatesDifference }
func (d Difference) EncodeBody(e *Encoder) {
	e.VectorInt(d.NewMessages)
	e.Vector(d.OtherUpdates)
	e.Vector(d.Users)
	e.Vector(d.Chats)
	e.Object(d.State)
}

type DifferenceSlice struct {
	NewMessages       []int32
	OtherUpdates      []Object
	Users             []Object
	Chats             []Object
	IntermediateState Object // UpdatesState
}

func (DifferenceSlice) CRC() uint32 { return crcUpdatesDifferenceSlice }
func (d DifferenceSlice) EncodeBody(e *Encoder) {
	e.VectorInt(d.NewMessages)
	e.Vector(d.OtherUpdates)
	e.Vector(d.Users)
	e.Vector(d.Chats)
	e.Object(d.IntermediateState)
}

// DifferenceTooLong hints the pts to reset to (spec.md §4.6.4).
type DifferenceTooLong struct{ Pts int32 }

func (DifferenceTooLong) CRC() uint32 { return crcUpdatesDifferenceTooLong }
func (d DifferenceTooLong) EncodeBody(e *Encoder) { e.Int(d.Pts) }

// --- updates.getChannelDifference family ---

type UpdatesGetChannelDifference struct {
	Channel InputChannel
	Pts     int32
	Limit   int32
}

func (UpdatesGetChannelDifference) CRC() uint32 { return crcUpdatesGetChannelDifference }
func (g UpdatesGetChannelDifference) EncodeBody(e *Encoder) {
	e.Object(g.Channel)
	e.Int(g.Pts)
	e.Int(g.Limit)
}

type ChannelDifferenceEmpty struct {
	Pts     int32
	Timeout int32
}

func (ChannelDifferenceEmpty) CRC() uint32 { return crcUpdatesChannelDifferenceEmpty }
func (c ChannelDifferenceEmpty) EncodeBody(e *Encoder) {
	e.Int(c.Pts)
	e.Int(c.Timeout)
}

type ChannelDifference struct {
	Final        bool
	Pts          int32
	Timeout      int32
	NewMessages  []int32
	OtherUpdates []Object
	Users        []Object
	Chats        []Object
}

func (ChannelDifference) CRC() uint32 { return crcUpdatesChannelDifference }
func (c ChannelDifference) EncodeBody(e *Encoder) {
	e.Bool(c.Final)
	e.Int(c.Pts)
	e.Int(c.Timeout)
	e.VectorInt(c.NewMessages)
	e.Vector(c.OtherUpdates)
	e.Vector(c.Users)
	e.Vector(c.Chats)
}

type ChannelDifferenceTooLong struct {
	Pts     int32
	Timeout int32
}

func (ChannelDifferenceTooLong) CRC() uint32 { return crcUpdatesChannelDifferenceTooLong }
func (c ChannelDifferenceTooLong) EncodeBody(e *Encoder) {
	e.Int(c.Pts)
	e.Int(c.Timeout)
}

// --- cross-dc auth copy (spec.md §4.5) ---

type AuthExportAuthorization struct{ DCID int32 }

func (AuthExportAuthorization) CRC() uint32 { return crcAuthExportAuthorization }
func (a AuthExportAuthorization) EncodeBody(e *Encoder) { e.Int(a.DCID) }

type AuthExportedAuthorization struct {
	ID    int32
	Bytes []byte
}

func (AuthExportedAuthorization) CRC() uint32 { return crcAuthExportedAuthorization }
func (a AuthExportedAuthorization) EncodeBody(e *Encoder) {
	e.Int(a.ID)
	e.StringBytes(a.Bytes)
}

type AuthImportAuthorization struct {
	ID    int32
	Bytes []byte
}

func (AuthImportAuthorization) CRC() uint32 { return crcAuthImportAuthorization }
func (a AuthImportAuthorization) EncodeBody(e *Encoder) {
	e.Int(a.ID)
	e.StringBytes(a.Bytes)
}

type AuthAuthorization struct{ User Object }

func (AuthAuthorization) CRC() uint32 { return crcAuthAuthorization }
func (a AuthAuthorization) EncodeBody(e *Encoder) { e.Object(a.User) }
