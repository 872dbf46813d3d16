package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/crypto"
	"github.com/gotdgram/mtclient/peer"
)

func TestNewTLFileStoreSeedsDefaultsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)

	opt, ok := s.DcOption(2)
	require.True(t, ok)
	assert.Equal(t, "149.154.167.51:443", opt.IPv4)

	_, ok = s.DcOption(99)
	assert.False(t, ok)
}

func TestTLFileStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)

	s.SetHomeDcID(2)
	s.SetUserInfo(UserInfo{ID: 555, Bot: true})

	key, err := crypto.NewAuthKey(make([]byte, crypto.AuthKeySize))
	require.NoError(t, err)
	s.SetDcOption(DcOption{ID: 2, IPv4: "1.2.3.4:443", IPv6: "[::1]:443", AuthKey: &key})

	hash := int64(9001)
	s.CachePeer(peer.Info{ID: peer.ID{Kind: peer.User, ID: 42}, AccessHash: &hash})
	s.CachePeer(peer.Info{ID: peer.ID{Kind: peer.User, ID: 43}, AccessHash: &hash, Min: true})

	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateAll, Pts: 10, Qts: 20, Date: 30, Seq: 40}))
	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateChannel, ChannelID: 100, Pts: 1}))

	loaded, err := NewTLFileStore(path)
	require.NoError(t, err)

	assert.Equal(t, int32(2), loaded.HomeDcID())
	assert.Equal(t, UserInfo{ID: 555, Bot: true}, loaded.UserInfo())

	opt, ok := loaded.DcOption(2)
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4:443", opt.IPv4)
	require.NotNil(t, opt.AuthKey)
	assert.Equal(t, key.Bytes(), opt.AuthKey.Bytes())

	info, ok := loaded.Peer(peer.ID{Kind: peer.User, ID: 42})
	require.True(t, ok)
	require.NotNil(t, info.AccessHash)
	assert.Equal(t, hash, *info.AccessHash)

	_, ok = loaded.Peer(peer.ID{Kind: peer.User, ID: 43})
	assert.False(t, ok, "a min access hash must never be persisted")

	state, err := loaded.UpdatesState()
	require.NoError(t, err)
	assert.Equal(t, int32(10), state.Pts)
	assert.Equal(t, int32(20), state.Qts)
	assert.Equal(t, int32(30), state.Date)
	assert.Equal(t, int32(40), state.Seq)
	require.Len(t, state.Channels, 1)
	assert.Equal(t, ChannelState{ID: 100, Pts: 1}, state.Channels[0])
}

func TestSetUpdateStatePrimaryLeavesQtsUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateAll, Pts: 1, Qts: 2, Date: 3, Seq: 4}))
	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StatePrimary, Pts: 10, Date: 30, Seq: 40}))

	state, err := s.UpdatesState()
	require.NoError(t, err)
	assert.Equal(t, int32(10), state.Pts)
	assert.Equal(t, int32(2), state.Qts, "StatePrimary must not touch qts")
	assert.Equal(t, int32(30), state.Date)
	assert.Equal(t, int32(40), state.Seq)
}

func TestSetUpdateStateSecondaryOnlyTouchesQts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateAll, Pts: 1, Qts: 2, Date: 3, Seq: 4}))
	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateSecondary, Qts: 99}))

	state, err := s.UpdatesState()
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.Pts)
	assert.Equal(t, int32(99), state.Qts)
}

func TestSetUpdateStateChannelUpdatesExistingEntryInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateChannel, ChannelID: 1, Pts: 5}))
	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateChannel, ChannelID: 2, Pts: 6}))
	require.NoError(t, s.SetUpdateState(UpdateState{Kind: StateChannel, ChannelID: 1, Pts: 50}))

	state, err := s.UpdatesState()
	require.NoError(t, err)
	require.Len(t, state.Channels, 2, "an existing channel entry must be updated, not duplicated")

	byID := map[int64]int32{}
	for _, ch := range state.Channels {
		byID[ch.ID] = ch.Pts
	}
	assert.Equal(t, int32(50), byID[1])
	assert.Equal(t, int32(6), byID[2])
}

func TestSaveWritesAtomicallyViaRename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	s, err := NewTLFileStore(path)
	require.NoError(t, err)
	s.SetHomeDcID(3)

	_, err = os.Stat(path)
	require.NoError(t, err, "Save must leave the final file in place, not the .tmp")
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "the .tmp staging file must not survive a successful rename")
}
