package sender

import (
	"fmt"

	"github.com/gotdgram/mtclient/mtstate"
	"github.com/gotdgram/mtclient/tl"
)

// RPCError is the structured shape a failed rpc_result resolves a
// RequestSlot with; invoker reclassifies it into the caller-facing error
// taxonomy (spec.md §7).
type RPCError struct {
	Code    int32
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc_error %d: %s", e.Code, e.Message)
}

// ackDrainer is satisfied by mtstate.Encrypted; Plain never accumulates
// acks since it has no seq_no concept.
type ackDrainer interface{ TakePendingAcks() []int64 }

func drainAcks(mtp mtstate.Mtp) []int64 {
	if d, ok := mtp.(ackDrainer); ok {
		return d.TakePendingAcks()
	}
	return nil
}

func encodeAck(msgID int64) []byte {
	e := tl.NewEncoder(16)
	e.Object(tl.MsgsAck{MsgIDs: []int64{msgID}})
	return e.Bytes()
}

func encodePing(pingID int64) []byte {
	e := tl.NewEncoder(12)
	e.Object(tl.Ping{PingID: pingID})
	return e.Bytes()
}
