package mtstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/crypto"
)

func TestPlainPushFinalizeRoundTrip(t *testing.T) {
	p := NewPlain()

	req := []byte{1, 2, 3, 4}
	msgID, pushed := p.Push(nil, req)
	require.True(t, pushed)
	assert.NotZero(t, msgID)

	buf := crypto.NewDequeBuffer[byte](32, 0)
	finalID, ok := p.Finalize(buf)
	require.True(t, ok)
	assert.Equal(t, msgID, finalID)

	wire := buf.Bytes()
	require.Len(t, wire, 20+len(req))
	for _, b := range wire[0:8] { // auth_key_id must be all-zero
		assert.Equal(t, byte(0), b)
	}
	assert.Equal(t, req, wire[20:])
}

func TestPlainRejectsConcurrentPush(t *testing.T) {
	p := NewPlain()
	_, ok := p.Push(nil, []byte{1})
	require.True(t, ok)

	_, ok = p.Push(nil, []byte{2})
	assert.False(t, ok, "a second request must not be accepted before the first is finalized")
}

func TestPlainFinalizeWithoutPushIsNoop(t *testing.T) {
	p := NewPlain()
	buf := crypto.NewDequeBuffer[byte](8, 0)
	_, ok := p.Finalize(buf)
	assert.False(t, ok)
	assert.Equal(t, 0, buf.Len())
}

func TestPlainDeserializeRoundTripsFinalizedFrame(t *testing.T) {
	p := NewPlain()
	body := []byte{9, 8, 7}
	_, ok := p.Push(nil, body)
	require.True(t, ok)

	buf := crypto.NewDequeBuffer[byte](32, 0)
	_, ok = p.Finalize(buf)
	require.True(t, ok)

	results, err := p.Deserialize(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindUpdate, results[0].Kind)
	assert.Equal(t, body, results[0].Update)
}

func TestPlainDeserializeRejectsShortPayload(t *testing.T) {
	p := NewPlain()
	_, err := p.Deserialize(make([]byte, 10))
	require.Error(t, err)
	var de *DeserializeError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, ErrMessageBufferTooSmall, de.Kind)
}

func TestPlainDeserializeRejectsOverlongLength(t *testing.T) {
	p := NewPlain()
	frame := make([]byte, 24)
	// length field (bytes 16:20) claims more body than the payload holds.
	frame[16] = 0xff
	_, err := p.Deserialize(frame)
	require.Error(t, err)
	var de *DeserializeError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, ErrTooLongMessageLength, de.Kind)
}
