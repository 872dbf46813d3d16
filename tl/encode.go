package tl

import (
	"encoding/binary"
	"math"
	"math/big"
)

// Encoder is an append-only byte builder for the TL binary format, mirrored
// on the teacher's EncodeBuf (tgclient's tl_decode.go companion).
type Encoder struct {
	buf []byte
}

// NewEncoder creates an Encoder with the given initial capacity hint.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len reports the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) UInt(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) Int(v int32) {
	e.UInt(uint32(v))
}

func (e *Encoder) Long(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) Double(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	e.buf = append(e.buf, b[:]...)
}

// RawBytes writes a fixed-size byte slice verbatim, with no length prefix.
func (e *Encoder) RawBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// StringBytes writes a TL-encoded length-prefixed, 4-byte padded byte
// string.
func (e *Encoder) StringBytes(b []byte) {
	size := len(b)
	if size <= 253 {
		e.buf = append(e.buf, byte(size))
	} else {
		e.buf = append(e.buf, 254, byte(size), byte(size>>8), byte(size>>16))
	}
	e.buf = append(e.buf, b...)

	var padding int
	if size <= 253 {
		padding = (4 - ((size + 1) % 4)) % 4
	} else {
		padding = (4 - (size % 4)) % 4
	}
	for i := 0; i < padding; i++ {
		e.buf = append(e.buf, 0)
	}
}

func (e *Encoder) String(s string) {
	e.StringBytes([]byte(s))
}

func (e *Encoder) BigInt(v *big.Int) {
	b := v.Bytes()
	// strip a leading zero sign byte if present, mirroring DecodeBuf.BigInt
	if len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	e.StringBytes(b)
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.UInt(crcBoolTrue)
	} else {
		e.UInt(crcBoolFalse)
	}
}

func (e *Encoder) VectorInt(v []int32) {
	e.UInt(crcVector)
	e.Int(int32(len(v)))
	for _, x := range v {
		e.Int(x)
	}
}

func (e *Encoder) VectorLong(v []int64) {
	e.UInt(crcVector)
	e.Int(int32(len(v)))
	for _, x := range v {
		e.Long(x)
	}
}

func (e *Encoder) VectorString(v []string) {
	e.UInt(crcVector)
	e.Int(int32(len(v)))
	for _, x := range v {
		e.String(x)
	}
}

// Object writes a full constructor id + body for o.
func (e *Encoder) Object(o Object) {
	e.UInt(o.CRC())
	if enc, ok := o.(interface{ EncodeBody(*Encoder) }); ok {
		enc.EncodeBody(e)
	}
}

// Vector writes a TL vector of Objects.
func (e *Encoder) Vector(v []Object) {
	e.UInt(crcVector)
	e.Int(int32(len(v)))
	for _, o := range v {
		e.Object(o)
	}
}
