package transport

import "fmt"

// Kind classifies a transport-level failure (spec.md §4.1, §7).
type Kind int

const (
	// KindShortFrame: a frame shorter than the 12-byte envelope header.
	KindShortFrame Kind = iota
	// KindBadSeq: the sequence number did not match what was expected.
	KindBadSeq
	// KindBadCRC: the trailing crc32 did not match the envelope.
	KindBadCRC
	// KindBadStatus: the server sent an HTTP-like status in place of a
	// frame (404 = no auth key, 429 = too many connections).
	KindBadStatus
)

// Error is a fatal, connection-ending transport failure.
type Error struct {
	Kind   Kind
	Status int // only set for KindBadStatus
	Got    uint32
	Want   uint32
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindShortFrame:
		return "transport: frame shorter than the 12-byte envelope"
	case KindBadSeq:
		return fmt.Sprintf("transport: bad sequence number (got %d, want %d)", e.Got, e.Want)
	case KindBadCRC:
		return "transport: crc32 mismatch"
	case KindBadStatus:
		return fmt.Sprintf("transport: bad status %d", e.Status)
	default:
		return "transport: unknown error"
	}
}
