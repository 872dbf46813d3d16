// Package transport implements MTProto's "full" transport framing: the only
// variant this core supports (spec.md §1 names alternates out of scope).
package transport

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/gotdgram/mtclient/crypto"
)

// envelopeOverhead is the fixed len+seq+crc32 framing cost: 4 (len) + 4
// (seq) + 4 (crc32).
const envelopeOverhead = 12

// Full is the "full" transport codec: u32 len || u32 seq || payload ||
// u32 crc32, with len counting the whole envelope and crc32 (IEEE) covering
// everything before it.
type Full struct {
	sendSeq uint32
	recvSeq uint32
}

// NewFull creates a Full codec with both direction counters starting at 0,
// as a freshly connected socket expects.
func NewFull() *Full {
	return &Full{}
}

// WriteFrame appends one framed payload to buf, using (and advancing) the
// sender's sequence counter. buf must have at least envelopeOverhead bytes
// of back capacity reserved beyond payload's length; callers typically
// reserve it via crypto.NewDequeBuffer's back-capacity argument.
func (f *Full) WriteFrame(buf *crypto.DequeBuffer[byte], payload []byte) {
	total := envelopeOverhead + len(payload)

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(total))
	binary.LittleEndian.PutUint32(header[4:8], f.sendSeq)
	f.sendSeq++

	start := buf.Len()
	buf.ExtendBack(header[:])
	buf.ExtendBack(payload)

	crc := crc32.ChecksumIEEE(buf.Bytes()[start:])
	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc)
	buf.ExtendBack(trailer[:])
}

// ReadFrame reads one framed payload from r. The first four bytes read may
// instead be an HTTP-like status code when mis-framed as negative lengths
// (see spec.md §7); such frames surface as KindBadStatus.
func (f *Full) ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	// A small negative length, read as unsigned, looks like a huge value;
	// Telegram instead sends a 4-byte status padded to look like -status.
	if isBadStatus(length) {
		return nil, &Error{Kind: KindBadStatus, Status: int(^length + 1)}
	}
	if length < envelopeOverhead {
		return nil, &Error{Kind: KindShortFrame}
	}

	rest := make([]byte, length-4)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, err
	}

	seq := binary.LittleEndian.Uint32(rest[0:4])
	if seq != f.recvSeq {
		return nil, &Error{Kind: KindBadSeq, Got: seq, Want: f.recvSeq}
	}
	f.recvSeq++

	payload := rest[4 : len(rest)-4]
	gotCRC := binary.LittleEndian.Uint32(rest[len(rest)-4:])

	full := make([]byte, 0, 8+len(payload))
	full = append(full, lenBuf[:]...)
	full = append(full, rest[:len(rest)-4]...)
	wantCRC := crc32.ChecksumIEEE(full)
	if gotCRC != wantCRC {
		return nil, &Error{Kind: KindBadCRC, Got: gotCRC, Want: wantCRC}
	}

	return payload, nil
}

func isBadStatus(length uint32) bool {
	// Telegram's HTTP-like status frames (404, 429, ...) arrive as a raw
	// four byte little-endian negative int32 with no further payload.
	signed := int32(length)
	return signed < 0
}
