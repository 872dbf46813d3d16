package tl

// Core "service" constructors needed by the MTProto record layer itself
// (spec.md §4.2's incoming classification table). Constructor ids follow
// Telegram's published schema.

const (
	crcMsgContainer       uint32 = 0x73f1f8dc
	crcRPCResult          uint32 = 0xf35c6d01
	crcRPCError           uint32 = 0x2144ca19
	crcBadMsgNotification uint32 = 0xa7eff811
	crcBadServerSalt      uint32 = 0xedab447b
	crcMsgsAck            uint32 = 0x62d6b459
	crcPing               uint32 = 0x7abe77ec
	crcPong               uint32 = 0x347773c5
	crcNewSessionCreated  uint32 = 0x9ec20908
	crcMsgsStateInfo      uint32 = 0x04deb57d
)

func init() {
	Register(crcMsgContainer, func(d *Decoder) Object {
		n := d.Int()
		items := make([]Message, n)
		for i := range items {
			items[i] = Message{
				MsgID: d.Long(),
				SeqNo: d.Int(),
				Bytes: d.Int(),
			}
			items[i].Body = d.Object()
		}
		return MsgContainer{Items: items}
	})
	Register(crcRPCResult, func(d *Decoder) Object {
		reqMsgID := d.Long()
		body := d.Object()
		return RPCResult{ReqMsgID: reqMsgID, Body: body}
	})
	Register(crcRPCError, func(d *Decoder) Object {
		return RPCError{ErrorCode: d.Int(), ErrorMessage: d.String()}
	})
	Register(crcBadMsgNotification, func(d *Decoder) Object {
		return BadMsgNotification{
			BadMsgID:    d.Long(),
			BadMsgSeqNo: d.Int(),
			ErrorCode:   d.Int(),
		}
	})
	Register(crcBadServerSalt, func(d *Decoder) Object {
		return BadServerSalt{
			BadMsgID:      d.Long(),
			BadMsgSeqNo:   d.Int(),
			ErrorCode:     d.Int(),
			NewServerSalt: d.Long(),
		}
	})
	Register(crcMsgsAck, func(d *Decoder) Object {
		return MsgsAck{MsgIDs: d.VectorLong()}
	})
	Register(crcPing, func(d *Decoder) Object {
		return Ping{PingID: d.Long()}
	})
	Register(crcPong, func(d *Decoder) Object {
		return Pong{MsgID: d.Long(), PingID: d.Long()}
	})
	Register(crcNewSessionCreated, func(d *Decoder) Object {
		return NewSessionCreated{
			FirstMsgID: d.Long(),
			UniqueID:   d.Long(),
			ServerSalt: d.Long(),
		}
	})
	Register(crcMsgsStateInfo, func(d *Decoder) Object {
		return MsgsStateInfo{ReqMsgID: d.Long(), Info: d.StringBytes()}
	})
}

// Message is one entry of a msg_container.
type Message struct {
	MsgID int64
	SeqNo int32
	Bytes int32
	Body  Object
}

// MsgContainer batches multiple messages sharing one encrypted frame
// (spec.md §4.2 outgoing Finalize, and incoming container walk).
type MsgContainer struct{ Items []Message }

func (MsgContainer) CRC() uint32 { return crcMsgContainer }

func (c MsgContainer) EncodeBody(e *Encoder) {
	e.Int(int32(len(c.Items)))
	for _, m := range c.Items {
		e.Long(m.MsgID)
		e.Int(m.SeqNo)
		e.Int(m.Bytes)
		e.Object(m.Body)
	}
}

// RPCResult is the envelope carrying a response keyed by the original
// request's msg_id.
type RPCResult struct {
	ReqMsgID int64
	Body     Object
}

func (RPCResult) CRC() uint32 { return crcRPCResult }
func (r RPCResult) EncodeBody(e *Encoder) {
	e.Long(r.ReqMsgID)
	e.Object(r.Body)
}

// RPCError is the raw server error shape, before name/value splitting
// (spec.md §7 does that splitting in the invoker/errors layer).
type RPCError struct {
	ErrorCode    int32
	ErrorMessage string
}

func (RPCError) CRC() uint32 { return crcRPCError }
func (r RPCError) EncodeBody(e *Encoder) {
	e.Int(r.ErrorCode)
	e.String(r.ErrorMessage)
}

// BadMsgNotification signals a problem with a previously sent message
// (spec.md §4.2 bad-msg codes).
type BadMsgNotification struct {
	BadMsgID    int64
	BadMsgSeqNo int32
	ErrorCode   int32
}

func (BadMsgNotification) CRC() uint32 { return crcBadMsgNotification }
func (b BadMsgNotification) EncodeBody(e *Encoder) {
	e.Long(b.BadMsgID)
	e.Int(b.BadMsgSeqNo)
	e.Int(b.ErrorCode)
}

// BadServerSalt additionally carries the salt to retry with (bad-msg code
// 48).
type BadServerSalt struct {
	BadMsgID      int64
	BadMsgSeqNo   int32
	ErrorCode     int32
	NewServerSalt int64
}

func (BadServerSalt) CRC() uint32 { return crcBadServerSalt }
func (b BadServerSalt) EncodeBody(e *Encoder) {
	e.Long(b.BadMsgID)
	e.Int(b.BadMsgSeqNo)
	e.Int(b.ErrorCode)
	e.Long(b.NewServerSalt)
}

// MsgsAck acknowledges receipt of messages sent with an odd seq_no.
type MsgsAck struct{ MsgIDs []int64 }

func (MsgsAck) CRC() uint32 { return crcMsgsAck }
func (m MsgsAck) EncodeBody(e *Encoder) { e.VectorLong(m.MsgIDs) }

// Ping/Pong keep the connection alive and measure RTT.
type Ping struct{ PingID int64 }

func (Ping) CRC() uint32          { return crcPing }
func (p Ping) EncodeBody(e *Encoder) { e.Long(p.PingID) }

type Pong struct {
	MsgID  int64
	PingID int64
}

func (Pong) CRC() uint32 { return crcPong }
func (p Pong) EncodeBody(e *Encoder) {
	e.Long(p.MsgID)
	e.Long(p.PingID)
}

// NewSessionCreated signals history loss; delivered to the sequencer as an
// update (spec.md §4.2).
type NewSessionCreated struct {
	FirstMsgID int64
	UniqueID   int64
	ServerSalt int64
}

func (NewSessionCreated) CRC() uint32 { return crcNewSessionCreated }
func (n NewSessionCreated) EncodeBody(e *Encoder) {
	e.Long(n.FirstMsgID)
	e.Long(n.UniqueID)
	e.Long(n.ServerSalt)
}

// MsgsStateInfo answers a msgs_state_req; used here only as a pass-through
// classification target (spec.md §4.2).
type MsgsStateInfo struct {
	ReqMsgID int64
	Info     []byte
}

func (MsgsStateInfo) CRC() uint32 { return crcMsgsStateInfo }
func (m MsgsStateInfo) EncodeBody(e *Encoder) {
	e.Long(m.ReqMsgID)
	e.StringBytes(m.Info)
}
