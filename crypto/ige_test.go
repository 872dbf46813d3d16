package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/ansel1/merry/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAesIGERoundTrip(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 32)
	data := make([]byte, 64)
	for _, b := range [][]byte{key, iv, data} {
		_, err := rand.Read(b)
		require.NoError(t, err)
	}

	ct, err := aesIGEEncrypt(key, iv, data)
	require.NoError(t, err)
	assert.NotEqual(t, data, ct)

	pt, err := aesIGEDecrypt(key, iv, ct)
	require.NoError(t, err)
	assert.Equal(t, data, pt)
}

func TestAesIGERejectsNonBlockMultiple(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 32)
	_, err := aesIGEEncrypt(key, iv, make([]byte, 17))
	assert.True(t, merry.Is(err, ErrShortCiphertext))

	_, err = aesIGEEncrypt(key, iv, nil)
	assert.True(t, merry.Is(err, ErrShortCiphertext))
}

func TestKeyIVIsDeterministic(t *testing.T) {
	authKey := make([]byte, 256)
	_, err := rand.Read(authKey)
	require.NoError(t, err)
	var mk [16]byte
	_, err = rand.Read(mk[:])
	require.NoError(t, err)

	k1, iv1 := KeyIV(authKey, mk, 0)
	k2, iv2 := KeyIV(authKey, mk, 0)
	assert.Equal(t, k1, k2)
	assert.Equal(t, iv1, iv2)

	k8, _ := KeyIV(authKey, mk, 8)
	assert.False(t, bytes.Equal(k1, k8), "client and server directions must derive different keys")
}

func TestEncryptDecryptServerDirectionRoundTrip(t *testing.T) {
	authKey := make([]byte, 256)
	_, err := rand.Read(authKey)
	require.NoError(t, err)

	plaintext := make([]byte, 32)
	_, err = rand.Read(plaintext)
	require.NoError(t, err)

	// Build a server->client envelope by hand, mirroring what
	// DecryptServerMessage expects (x=8), then verify it decrypts.
	mk := MsgKeyServerToClient(authKey, plaintext)
	key, iv := KeyIV(authKey, mk, 8)
	ct, err := aesIGEEncrypt(key, iv, plaintext)
	require.NoError(t, err)

	envelope := append(append([]byte(nil), mk[:]...), ct...)

	got, err := DecryptServerMessage(authKey, envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptServerMessageRejectsTamperedMsgKey(t *testing.T) {
	authKey := make([]byte, 256)
	_, err := rand.Read(authKey)
	require.NoError(t, err)

	plaintext := make([]byte, 32)
	mk := MsgKeyServerToClient(authKey, plaintext)
	key, iv := KeyIV(authKey, mk, 8)
	ct, err := aesIGEEncrypt(key, iv, plaintext)
	require.NoError(t, err)

	envelope := append(append([]byte(nil), mk[:]...), ct...)
	envelope[0] ^= 0xff // corrupt the claimed msg_key

	_, err = DecryptServerMessage(authKey, envelope)
	assert.True(t, merry.Is(err, ErrBadMsgKey))
}

func TestDecryptServerMessageRejectsShortEnvelope(t *testing.T) {
	_, err := DecryptServerMessage(make([]byte, 256), make([]byte, 10))
	assert.True(t, merry.Is(err, ErrShortCiphertext))
}

func TestEncryptClientMessageProducesMsgKeyPrefixedEnvelope(t *testing.T) {
	authKey := make([]byte, 256)
	_, err := rand.Read(authKey)
	require.NoError(t, err)
	plaintext := make([]byte, 32)

	out, err := EncryptClientMessage(authKey, plaintext)
	require.NoError(t, err)
	require.Len(t, out, 16+32)
	assert.Equal(t, MsgKeyClientToServer(authKey, plaintext)[:], out[:16])
}
