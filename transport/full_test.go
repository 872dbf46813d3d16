package transport

import (
	"bytes"
	"testing"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullWriteReadRoundTrip(t *testing.T) {
	writer := NewFull()
	buf := crypto.NewDequeBuffer[byte](64, 8)
	writer.WriteFrame(buf, []byte("hello"))
	writer.WriteFrame(buf, []byte("world!"))

	reader := NewFull()
	r := bytes.NewReader(buf.Bytes())

	got, err := reader.ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = reader.ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("world!"), got)
}

func TestFullReadFrameRejectsShortFrame(t *testing.T) {
	reader := NewFull()
	// len field claims an 8-byte total envelope, below the 12-byte minimum.
	raw := []byte{8, 0, 0, 0, 1, 2, 3, 4}
	_, err := reader.ReadFrame(bytes.NewReader(raw))
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindShortFrame, terr.Kind)
}

func TestFullReadFrameRejectsBadSeq(t *testing.T) {
	writer := NewFull()
	buf := crypto.NewDequeBuffer[byte](64, 8)
	writer.WriteFrame(buf, []byte("payload"))

	reader := NewFull()
	reader.recvSeq = 5 // out of sync with the writer's first frame (seq 0)

	_, err := reader.ReadFrame(bytes.NewReader(buf.Bytes()))
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindBadSeq, terr.Kind)
}

func TestFullReadFrameRejectsBadCRC(t *testing.T) {
	writer := NewFull()
	buf := crypto.NewDequeBuffer[byte](64, 8)
	writer.WriteFrame(buf, []byte("payload"))

	raw := append([]byte(nil), buf.Bytes()...)
	raw[len(raw)-1] ^= 0xff // flip a bit in the trailing crc32

	reader := NewFull()
	_, err := reader.ReadFrame(bytes.NewReader(raw))
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindBadCRC, terr.Kind)
}

func TestIsBadStatusSignClassification(t *testing.T) {
	assert.True(t, isBadStatus(0xFFFFFE6C)) // -404 as uint32
	assert.False(t, isBadStatus(5))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&Error{Kind: KindShortFrame}).Error(), "12-byte")
	assert.Contains(t, (&Error{Kind: KindBadSeq, Got: 1, Want: 0}).Error(), "bad sequence")
	assert.Contains(t, (&Error{Kind: KindBadCRC}).Error(), "crc32")
	assert.Contains(t, (&Error{Kind: KindBadStatus, Status: 404}).Error(), "404")
}
