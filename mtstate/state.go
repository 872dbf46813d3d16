// Package mtstate implements the two MTProto record-layer modes: Plain
// (used only to bootstrap an auth key) and Encrypted (the production path),
// per spec.md §4.2.
package mtstate

import (
	"fmt"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/tl"
)

// MsgID is a 64-bit message identifier (spec.md §3).
type MsgID = int64

// Mtp is the trait-like contract both Plain and Encrypted satisfy: turn
// zero or more outgoing requests into a batch buffer, and turn an incoming
// payload into zero or more classified Deserializations.
type Mtp interface {
	// Push appends request to the pending batch, returning the MsgID
	// assigned to it, or ok=false if the batch is already full (spec.md
	// §4.2's ~1MiB/1024-entry container cap).
	Push(buf *crypto.DequeBuffer[byte], request []byte) (id MsgID, ok bool)

	// Finalize wraps the pending batch (if any) into a message or
	// msg_container, encrypts/frames it into buf, and returns the MsgID
	// of the outermost envelope.
	Finalize(buf *crypto.DequeBuffer[byte]) (id MsgID, ok bool)

	// Deserialize decrypts/validates/classifies one incoming payload.
	Deserialize(payload []byte) ([]Deserialization, error)
}

// RPCResult is a decrypted rpc_result body awaiting dispatch to its slot.
type RPCResult struct {
	MsgID MsgID
	Body  []byte
}

// RPCResultError is a decrypted rpc_error awaiting dispatch to its slot.
type RPCResultError struct {
	MsgID MsgID
	Error tl.RPCError
}

// BadMessage pairs a bad_msg_notification/bad_server_salt with the msg_id
// it concerns (spec.md §4.2 bad-msg codes).
type BadMessage struct {
	MsgID MsgID
	Code  int32
}

// Description returns a human-readable explanation of the bad-msg code,
// adapted from Telegram's "Service Messages about Messages" documentation.
func (b BadMessage) Description() string {
	switch b.Code {
	case 16:
		return "msg_id too low"
	case 17:
		return "msg_id too high"
	case 18:
		return "incorrect two lower order msg_id bits; this is a bug"
	case 19:
		return "container msg_id is the same as msg_id of a previously received message; this is a bug"
	case 20:
		return "message too old"
	case 32:
		return "msg_seqno too low"
	case 33:
		return "msg_seqno too high"
	case 34:
		return "an even msg_seqno expected; this may be a bug"
	case 35:
		return "odd msg_seqno expected; this may be a bug"
	case 48:
		return "incorrect server salt"
	case 64:
		return "invalid container; this is likely a bug"
	default:
		return "unknown explanation; please report this issue"
	}
}

// Retryable reports whether the message that caused this bad-msg can be
// retried as-is (spec.md §4.2, §8 property 6).
func (b BadMessage) Retryable() bool {
	switch b.Code {
	case 16, 17, 48:
		return true
	default:
		return false
	}
}

// Fatal reports whether the whole connection must be restarted.
func (b BadMessage) Fatal() bool {
	if b.Retryable() {
		return false
	}
	switch b.Code {
	case 32, 33:
		return false
	default:
		return true
	}
}

// DeserializationFailure pairs a DeserializeError with the msg_id of the
// sub-message that failed, when known.
type DeserializationFailure struct {
	MsgID MsgID
	Err   error
}

// Deserialization is the tagged result of classifying one decrypted
// sub-message (spec.md §4.2's incoming classification table).
type Deserialization struct {
	Kind      DeserializationKind
	OwnUpdate struct {
		MsgID  MsgID
		Update []byte
	}
	Update      []byte
	RPCResult   RPCResult
	RPCError    RPCResultError
	BadMessage  BadMessage
	Failure     DeserializationFailure
}

// DeserializationKind tags which field of Deserialization is populated.
type DeserializationKind int

const (
	KindOwnUpdate DeserializationKind = iota
	KindUpdate
	KindRPCResult
	KindRPCError
	KindBadMessage
	KindFailure
)

// DeserializeError is the error type for decoding a server payload
// (spec.md §4.2's error kinds).
type DeserializeError struct {
	Kind ErrKind
	// context fields, populated depending on Kind
	Got, Expected int64
	MaxLength     int
	ConstructorID uint32
	Cause         error
}

type ErrKind int

const (
	ErrBadAuthKey ErrKind = iota
	ErrBadMessageID
	ErrNegativeMessageLength
	ErrTooLongMessageLength
	ErrMessageBufferTooSmall
	ErrDecompressionFailed
	ErrUnexpectedConstructor
	ErrDecryptionError
)

func (e *DeserializeError) Error() string {
	switch e.Kind {
	case ErrBadAuthKey:
		return fmt.Sprintf("mtstate: bad server auth key (got %d, expected %d)", e.Got, e.Expected)
	case ErrBadMessageID:
		return fmt.Sprintf("mtstate: bad server message id (got %d)", e.Got)
	case ErrNegativeMessageLength:
		return fmt.Sprintf("mtstate: bad server message length (got %d)", e.Got)
	case ErrTooLongMessageLength:
		return fmt.Sprintf("mtstate: bad server message length (got %d, max %d)", e.Got, e.MaxLength)
	case ErrMessageBufferTooSmall:
		return "mtstate: server responded with a payload too small to fit a valid message"
	case ErrDecompressionFailed:
		return "mtstate: failed to decompress server's data"
	case ErrUnexpectedConstructor:
		return fmt.Sprintf("mtstate: unexpected constructor %#08x", e.ConstructorID)
	case ErrDecryptionError:
		return fmt.Sprintf("mtstate: failed to decrypt message: %v", e.Cause)
	default:
		return "mtstate: unknown deserialize error"
	}
}

func (e *DeserializeError) Unwrap() error { return e.Cause }
