package crypto

import (
	"crypto/aes"
	"crypto/sha256"

	"github.com/ansel1/merry/v2"
)

// ErrShortCiphertext is returned when IGE decryption is given a buffer that
// is not a non-zero multiple of the AES block size.
var ErrShortCiphertext = merry.New("crypto: IGE ciphertext is not a multiple of the block size")

// aesIGEDecrypt decrypts data (a multiple of 16 bytes) in Infinite Garble
// Extension mode with the given 32-byte key and 32-byte iv (iv1||iv2, 16
// bytes each), as used by MTProto 2.0.
func aesIGEDecrypt(key, iv, data []byte) ([]byte, error) {
	return aesIGE(key, iv, data, false)
}

// aesIGEEncrypt is the encrypting counterpart of aesIGEDecrypt.
func aesIGEEncrypt(key, iv, data []byte) ([]byte, error) {
	return aesIGE(key, iv, data, true)
}

func aesIGE(key, iv, data []byte, encrypt bool) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, ErrShortCiphertext.Here()
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, merry.Wrap(err)
	}

	iv1 := append([]byte(nil), iv[:16]...)
	iv2 := append([]byte(nil), iv[16:32]...)

	out := make([]byte, len(data))
	tmp := make([]byte, aes.BlockSize)

	for off := 0; off < len(data); off += aes.BlockSize {
		chunk := data[off : off+aes.BlockSize]
		if encrypt {
			xorBytes(tmp, chunk, iv1)
			block.Encrypt(tmp, tmp)
			xorBytes(tmp, tmp, iv2)
			copy(out[off:off+aes.BlockSize], tmp)
			copy(iv1, tmp)
			copy(iv2, chunk)
		} else {
			xorBytes(tmp, chunk, iv2)
			block.Decrypt(tmp, tmp)
			xorBytes(tmp, tmp, iv1)
			copy(out[off:off+aes.BlockSize], tmp)
			copy(iv1, chunk)
			copy(iv2, tmp)
		}
	}
	return out, nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// MsgKeyClientToServer computes the msg_key used by client->server encrypted
// envelopes per MTProto 2.0: the middle 16 bytes of
// SHA256(authKey[88:120] || plaintext).
func MsgKeyClientToServer(authKey, plaintext []byte) [16]byte {
	return msgKey(authKey, plaintext, 0)
}

// MsgKeyServerToClient computes the msg_key used to validate server->client
// encrypted envelopes: the middle 16 bytes of
// SHA256(authKey[96:128] || plaintext).
func MsgKeyServerToClient(authKey, plaintext []byte) [16]byte {
	return msgKey(authKey, plaintext, 8)
}

func msgKey(authKey, plaintext []byte, x int) [16]byte {
	h := sha256.New()
	h.Write(authKey[88+x : 88+x+32])
	h.Write(plaintext)
	sum := h.Sum(nil)
	var out [16]byte
	copy(out[:], sum[8:24])
	return out
}

// KeyIV derives the AES-256 key and IGE iv for one direction of an
// encrypted envelope, per MTProto 2.0's key-derivation algorithm. x is 0 for
// messages the client sends, 8 for messages the client receives.
func KeyIV(authKey []byte, msgKey [16]byte, x int) (key, iv []byte) {
	a := sha256.New()
	a.Write(msgKey[:])
	a.Write(authKey[x : x+36])
	shaA := a.Sum(nil)

	b := sha256.New()
	b.Write(authKey[40+x : 40+x+36])
	b.Write(msgKey[:])
	shaB := b.Sum(nil)

	key = make([]byte, 32)
	copy(key[0:8], shaA[0:8])
	copy(key[8:24], shaB[8:24])
	copy(key[24:32], shaA[24:32])

	iv = make([]byte, 32)
	copy(iv[0:8], shaB[0:8])
	copy(iv[8:24], shaA[8:24])
	copy(iv[24:32], shaB[24:32])
	return key, iv
}

// EncryptClientMessage encrypts plaintext (already padded to a multiple of
// 16 bytes, 12..1024 bytes of padding per spec) for sending to the server,
// returning msg_key||ciphertext.
func EncryptClientMessage(authKey, plaintext []byte) ([]byte, error) {
	mk := MsgKeyClientToServer(authKey, plaintext)
	key, iv := KeyIV(authKey, mk, 0)
	ct, err := aesIGEEncrypt(key, iv, plaintext)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	out := make([]byte, 16+len(ct))
	copy(out, mk[:])
	copy(out[16:], ct)
	return out, nil
}

// DecryptServerMessage decrypts a msg_key||ciphertext envelope received from
// the server, validating that the recomputed msg_key matches.
func DecryptServerMessage(authKey, envelope []byte) ([]byte, error) {
	if len(envelope) < 16+aes.BlockSize {
		return nil, ErrShortCiphertext.Here()
	}
	var mk [16]byte
	copy(mk[:], envelope[:16])
	ciphertext := envelope[16:]

	key, iv := KeyIV(authKey, mk, 8)
	plaintext, err := aesIGEDecrypt(key, iv, ciphertext)
	if err != nil {
		return nil, merry.Wrap(err)
	}

	got := MsgKeyServerToClient(authKey, plaintext)
	if got != mk {
		return nil, ErrBadMsgKey.Here()
	}
	return plaintext, nil
}

// ErrBadMsgKey is returned when a decrypted envelope's recomputed msg_key
// does not match the one the server sent.
var ErrBadMsgKey = merry.New("crypto: msg_key mismatch on decrypt")
