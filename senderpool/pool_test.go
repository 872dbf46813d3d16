package senderpool

import (
	"testing"

	"github.com/ansel1/merry/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/transport"
)

func TestRandomSessionIDIsNonDeterministic(t *testing.T) {
	a, err := randomSessionID()
	require.NoError(t, err)
	b, err := randomSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "two draws should not collide in practice")
}

func TestKeyForDistinguishesDcs(t *testing.T) {
	assert.NotEqual(t, keyFor(1), keyFor(2))
	assert.Equal(t, keyFor(5), keyFor(5))
	assert.Equal(t, "5", keyFor(5))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&transport.Error{Kind: transport.KindBadStatus, Status: 404}))
	// merry.Wrap must not hide the underlying *transport.Error from errors.As.
	assert.True(t, isNotFound(merry.Wrap(&transport.Error{Kind: transport.KindBadStatus, Status: 404})))
	assert.False(t, isNotFound(&transport.Error{Kind: transport.KindBadStatus, Status: 429}))
	assert.False(t, isNotFound(&transport.Error{Kind: transport.KindBadCRC}))
	assert.False(t, isNotFound(nil))
}
