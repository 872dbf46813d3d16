package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/mtstate"
	"github.com/gotdgram/mtclient/tl"
)

func TestRPCErrorMessage(t *testing.T) {
	e := &RPCError{Code: 400, Message: "CHANNEL_PRIVATE"}
	assert.Equal(t, "rpc_error 400: CHANNEL_PRIVATE", e.Error())
}

func TestEncodeAckRoundTrips(t *testing.T) {
	raw := encodeAck(12345)
	d := tl.NewDecoder(raw)
	obj := d.Object()
	require.NoError(t, d.Err())
	ack, ok := obj.(tl.MsgsAck)
	require.True(t, ok)
	assert.Equal(t, []int64{12345}, ack.MsgIDs)
}

func TestEncodePingRoundTrips(t *testing.T) {
	raw := encodePing(999)
	d := tl.NewDecoder(raw)
	obj := d.Object()
	require.NoError(t, d.Err())
	ping, ok := obj.(tl.Ping)
	require.True(t, ok)
	assert.Equal(t, int64(999), ping.PingID)
}

func TestDrainAcksOnlyWhenMtpSupportsIt(t *testing.T) {
	assert.Nil(t, drainAcks(plainStub{}))
	assert.Equal(t, []int64{7}, drainAcks(ackStub{pending: []int64{7}}))
}

// plainStub and ackStub are minimal mtstate.Mtp-shaped stand-ins used only
// to probe drainAcks' type switch; the full Mtp surface isn't needed here.
type plainStub struct{ mtpStub }
type ackStub struct {
	mtpStub
	pending []int64
}

func (a ackStub) TakePendingAcks() []int64 { return a.pending }

// mtpStub satisfies mtstate.Mtp with no-op bodies; embedders only need to
// add the methods a given test actually exercises.
type mtpStub struct{}

func (mtpStub) Push(buf *crypto.DequeBuffer[byte], request []byte) (int64, bool) { return 0, false }
func (mtpStub) Finalize(buf *crypto.DequeBuffer[byte]) (int64, bool)             { return 0, false }
func (mtpStub) Deserialize(payload []byte) ([]mtstate.Deserialization, error)    { return nil, nil }
