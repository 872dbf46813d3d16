package mtstate

import (
	"encoding/binary"

	"github.com/gotdgram/mtclient/crypto"
)

// Plain is the unencrypted bootstrap mode: auth_key_id=0 || msg_id ||
// length || body. Used only while negotiating an AuthKey (spec.md §4.2);
// it holds at most one pending request at a time.
type Plain struct {
	lastMsgID int64
	pending   []byte
	hasPending bool
}

// NewPlain creates a fresh Plain state.
func NewPlain() *Plain { return &Plain{} }

func (p *Plain) Push(buf *crypto.DequeBuffer[byte], request []byte) (MsgID, bool) {
	if p.hasPending {
		return 0, false
	}
	p.pending = request
	p.hasPending = true
	return p.nextMsgID(), true
}

func (p *Plain) nextMsgID() int64 {
	id := newMsgID(0)
	if id <= p.lastMsgID {
		id = p.lastMsgID + 4
	}
	p.lastMsgID = id
	return id
}

func (p *Plain) Finalize(buf *crypto.DequeBuffer[byte]) (MsgID, bool) {
	if !p.hasPending {
		return 0, false
	}
	body := p.pending
	p.pending = nil
	p.hasPending = false

	var header [24]byte
	// auth_key_id = 0
	binary.LittleEndian.PutUint64(header[8:16], uint64(p.lastMsgID))
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(body)))
	_ = header[20:24] // reserved/unused in plain framing beyond length

	buf.ExtendBack(header[:20])
	buf.ExtendBack(body)
	return p.lastMsgID, true
}

func (p *Plain) Deserialize(payload []byte) ([]Deserialization, error) {
	if len(payload) < 20 {
		return nil, &DeserializeError{Kind: ErrMessageBufferTooSmall}
	}
	length := binary.LittleEndian.Uint32(payload[16:20])
	if int(length) > len(payload)-20 {
		return nil, &DeserializeError{Kind: ErrTooLongMessageLength, Got: int64(length), MaxLength: len(payload) - 20}
	}
	body := payload[20 : 20+int(length)]
	return []Deserialization{{Kind: KindUpdate, Update: body}}, nil
}
