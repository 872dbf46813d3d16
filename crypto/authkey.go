package crypto

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/ansel1/merry/v2"
)

// AuthKeySize is the length in bytes of a permanent MTProto authorization
// key.
const AuthKeySize = 256

// ErrWrongAuthKeySize is returned when a byte slice of the wrong length is
// used to construct an AuthKey.
var ErrWrongAuthKeySize = merry.New("crypto: auth key must be 256 bytes")

// AuthKey is the 256-byte permanent secret negotiated with one datacenter
// during the auth_key_gen handshake (out of scope here, see
// senderpool.AuthKeyGen). It is immutable after generation.
type AuthKey struct {
	data   [AuthKeySize]byte
	keyID  int64
	hasID  bool
}

// NewAuthKey wraps a 256-byte key, computing its fingerprint eagerly.
func NewAuthKey(data []byte) (AuthKey, error) {
	var k AuthKey
	if len(data) != AuthKeySize {
		return k, ErrWrongAuthKeySize.Here()
	}
	copy(k.data[:], data)
	k.keyID = computeKeyID(k.data[:])
	k.hasID = true
	return k, nil
}

// Bytes returns the raw 256-byte key.
func (k AuthKey) Bytes() []byte {
	return k.data[:]
}

// KeyID returns the 8-byte fingerprint (auth_key_id) derived from the key:
// the low-order 64 bits of SHA1(auth_key).
func (k AuthKey) KeyID() int64 {
	return k.keyID
}

// IsZero reports whether this AuthKey was never assigned a key.
func (k AuthKey) IsZero() bool {
	return !k.hasID
}

func computeKeyID(data []byte) int64 {
	sum := sha1.Sum(data)
	// low-order 64 bits, i.e. the last 8 bytes, little-endian as on the wire.
	return int64(binary.LittleEndian.Uint64(sum[12:20]))
}
