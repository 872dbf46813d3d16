package tl

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrips(t *testing.T) {
	e := NewEncoder(64)
	e.Int(-7)
	e.Long(-123456789012345)
	e.Double(3.25)
	e.Bool(true)
	e.Bool(false)
	e.String("hello, world")
	e.BigInt(big.NewInt(987654321))

	d := NewDecoder(e.Bytes())
	assert.Equal(t, int32(-7), d.Int())
	assert.Equal(t, int64(-123456789012345), d.Long())
	assert.Equal(t, 3.25, d.Double())
	assert.Equal(t, true, d.Bool())
	assert.Equal(t, false, d.Bool())
	assert.Equal(t, "hello, world", d.String())
	assert.Equal(t, big.NewInt(987654321), d.BigInt())
	require.NoError(t, d.Err())
	assert.Equal(t, 0, d.Remaining())
}

func TestStringBytesPadsLongStringsToFourBytes(t *testing.T) {
	e := NewEncoder(512)
	long := make([]byte, 300)
	for i := range long {
		long[i] = byte(i)
	}
	e.StringBytes(long)
	assert.Equal(t, 0, len(e.Bytes())%4)

	d := NewDecoder(e.Bytes())
	assert.Equal(t, long, d.StringBytes())
	require.NoError(t, d.Err())
}

func TestVectorIntRoundTrip(t *testing.T) {
	e := NewEncoder(64)
	e.VectorInt([]int32{1, 2, 3})
	d := NewDecoder(e.Bytes())
	assert.Equal(t, []int32{1, 2, 3}, d.VectorInt())
	require.NoError(t, d.Err())
}

func TestVectorLongAndStringRoundTrip(t *testing.T) {
	e := NewEncoder(64)
	e.VectorLong([]int64{10, 20})
	e.VectorString([]string{"a", "bb"})
	d := NewDecoder(e.Bytes())
	assert.Equal(t, []int64{10, 20}, d.VectorLong())
	assert.Equal(t, []string{"a", "bb"}, d.VectorString())
	require.NoError(t, d.Err())
}

func TestObjectRoundTripDcOption(t *testing.T) {
	e := NewEncoder(64)
	e.Object(DcOption{ID: 2, IPAddress: "1.2.3.4", Port: 443, Ipv6: false})

	d := NewDecoder(e.Bytes())
	obj := d.Object()
	require.NoError(t, d.Err())
	opt, ok := obj.(DcOption)
	require.True(t, ok)
	assert.Equal(t, int32(2), opt.ID)
	assert.Equal(t, "1.2.3.4", opt.IPAddress)
	assert.Equal(t, int32(443), opt.Port)
	assert.False(t, opt.Ipv6)
}

func TestObjectRoundTripConfigWithNestedVector(t *testing.T) {
	e := NewEncoder(128)
	e.Object(Config{
		ThisDC: 2,
		DcOptions: []DcOption{
			{ID: 1, IPAddress: "10.0.0.1", Port: 443},
			{ID: 2, IPAddress: "10.0.0.2", Port: 443, Ipv6: true},
		},
	})

	d := NewDecoder(e.Bytes())
	obj := d.Object()
	require.NoError(t, d.Err())
	cfg, ok := obj.(Config)
	require.True(t, ok)
	assert.Equal(t, int32(2), cfg.ThisDC)
	require.Len(t, cfg.DcOptions, 2)
	assert.Equal(t, "10.0.0.2", cfg.DcOptions[1].IPAddress)
	assert.True(t, cfg.DcOptions[1].Ipv6)
}

func TestDecoderErrorOnUnexpectedConstructor(t *testing.T) {
	e := NewEncoder(16)
	e.UInt(0xdeadbeef)
	d := NewDecoder(e.Bytes())
	obj := d.Object()
	assert.Nil(t, obj)
	require.Error(t, d.Err())
	var uce *UnexpectedConstructorError
	assert.ErrorAs(t, d.Err(), &uce)
}

func TestDoubleEncodesIEEE754(t *testing.T) {
	e := NewEncoder(8)
	e.Double(math.Pi)
	d := NewDecoder(e.Bytes())
	assert.InDelta(t, math.Pi, d.Double(), 1e-12)
}
