package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsHash(t *testing.T) {
	assert.False(t, ID{Kind: SelfUser}.NeedsHash())
	assert.False(t, ID{Kind: Chat}.NeedsHash())
	assert.True(t, ID{Kind: User}.NeedsHash())
	assert.True(t, ID{Kind: Bot}.NeedsHash())
	assert.True(t, ID{Kind: Megagroup}.NeedsHash())
	assert.True(t, ID{Kind: Broadcast}.NeedsHash())
	assert.True(t, ID{Kind: Gigagroup}.NeedsHash())
}

func TestMapPutGet(t *testing.T) {
	m := NewMap()
	_, ok := m.Get(ID{Kind: User, ID: 1})
	assert.False(t, ok)

	hash := int64(123)
	m.Put(Info{ID: ID{Kind: User, ID: 1}, AccessHash: &hash})
	assert.Equal(t, 1, m.Len())

	info, ok := m.Get(ID{Kind: User, ID: 1})
	require := assert.New(t)
	require.True(ok)
	require.Equal(hash, *info.AccessHash)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "user", User.String())
	assert.Equal(t, "megagroup", Megagroup.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
