package updates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/rpcerr"
	"github.com/gotdgram/mtclient/tl"
)

func TestChannelDiffLimit(t *testing.T) {
	assert.Equal(t, int32(100000), channelDiffLimit(true))
	assert.Equal(t, int32(100), channelDiffLimit(false))
}

func TestIsChannelPrivate(t *testing.T) {
	s := &Sequencer{}

	assert.True(t, s.isChannelPrivate(&rpcerr.InvocationError{Kind: rpcerr.KindRpc, Rpc: &rpcerr.RPCError{Name: "CHANNEL_PRIVATE"}}))
	assert.False(t, s.isChannelPrivate(&rpcerr.InvocationError{Kind: rpcerr.KindRpc, Rpc: &rpcerr.RPCError{Name: "FLOOD_WAIT"}}))
	assert.False(t, s.isChannelPrivate(&rpcerr.InvocationError{Kind: rpcerr.KindIo}))
	assert.False(t, s.isChannelPrivate(assert.AnError))
}

func TestEmitMessageIDsAndOthers(t *testing.T) {
	s := &Sequencer{out: make(chan Update, 8)}

	s.emitMessageIDs(ChannelEntry(5), []int32{1, 2})
	require.Len(t, s.out, 2)
	first := <-s.out
	assert.Equal(t, ChannelEntry(5), first.Entry)
	assert.Equal(t, RawNewMessage{ID: 1}, first.Body)
	second := <-s.out
	assert.Equal(t, RawNewMessage{ID: 2}, second.Body)

	s.emitOthers([]tl.Object{RawNewMessage{ID: 9}})
	third := <-s.out
	assert.Equal(t, Entry{}, third.Entry)
	assert.Equal(t, RawNewMessage{ID: 9}, third.Body)
}

func TestRawNewMessageIsInert(t *testing.T) {
	var m RawNewMessage
	assert.Equal(t, uint32(0), m.CRC())
	m.EncodeBody(nil) // must not panic despite a nil encoder
}
