package rpcerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/tl"
)

func TestParseRPCError(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantName string
		wantVal  *int32
	}{
		{"flood wait", "FLOOD_WAIT_31", "FLOOD_WAIT", int32p(31)},
		{"interdc", "INTERDC_2_CALL_ERROR", "INTERDC_CALL_ERROR", int32p(2)},
		{"no digits", "CHANNEL_PRIVATE", "CHANNEL_PRIVATE", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseRPCError(400, c.raw)
			assert.Equal(t, c.wantName, got.Name)
			if c.wantVal == nil {
				assert.Nil(t, got.Value)
			} else {
				require.NotNil(t, got.Value)
				assert.Equal(t, *c.wantVal, *got.Value)
			}
		})
	}
}

func TestRPCErrorIsWildcard(t *testing.T) {
	err := &RPCError{Name: "FLOOD_WAIT"}
	assert.True(t, err.Is("FLOOD_WAIT"))
	assert.True(t, err.Is("FLOOD_*"))
	assert.True(t, err.Is("*_WAIT"))
	assert.True(t, err.Is("*WAIT*"))
	assert.False(t, err.Is("CHANNEL_PRIVATE"))
}

func TestFromRPCErrorClassifiesAsRpc(t *testing.T) {
	ie := FromRPCError(tl.RPCError{ErrorCode: 420, ErrorMessage: "FLOOD_WAIT_5"})
	assert.Equal(t, KindRpc, ie.Kind)
	require.NotNil(t, ie.Rpc)
	assert.Equal(t, "FLOOD_WAIT", ie.Rpc.Name)
	assert.True(t, ie.Is("FLOOD_WAIT"))
}

func int32p(v int32) *int32 { return &v }
