package tl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Decoder reads the TL binary format, mirrored on the teacher's DecodeBuf
// (tgclient's tl_decode.go), generalized with an Object() dispatch table
// since this package hand-maintains its own constructor registry instead of
// a generated schema.
type Decoder struct {
	buf  []byte
	off  int
	size int
	err  error
}

// NewDecoder wraps b for reading.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b, size: len(b)}
}

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Remaining reports how many bytes are left unconsumed.
func (d *Decoder) Remaining() int {
	return d.size - d.off
}

func (d *Decoder) Long() int64 {
	if d.err != nil {
		return 0
	}
	if d.off+8 > d.size {
		d.err = errors.New("tl: decode Long: short buffer")
		return 0
	}
	x := int64(binary.LittleEndian.Uint64(d.buf[d.off : d.off+8]))
	d.off += 8
	return x
}

func (d *Decoder) Double() float64 {
	if d.err != nil {
		return 0
	}
	if d.off+8 > d.size {
		d.err = errors.New("tl: decode Double: short buffer")
		return 0
	}
	x := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.off : d.off+8]))
	d.off += 8
	return x
}

func (d *Decoder) Int() int32 {
	return int32(d.UInt())
}

func (d *Decoder) UInt() uint32 {
	if d.err != nil {
		return 0
	}
	if d.off+4 > d.size {
		d.err = errors.New("tl: decode UInt: short buffer")
		return 0
	}
	x := binary.LittleEndian.Uint32(d.buf[d.off : d.off+4])
	d.off += 4
	return x
}

func (d *Decoder) Bytes(size int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+size > d.size {
		d.err = errors.New("tl: decode Bytes: short buffer")
		return nil
	}
	x := make([]byte, size)
	copy(x, d.buf[d.off:d.off+size])
	d.off += size
	return x
}

func (d *Decoder) StringBytes() []byte {
	if d.err != nil {
		return nil
	}
	if d.off+1 > d.size {
		d.err = errors.New("tl: decode StringBytes: short buffer")
		return nil
	}
	size := int(d.buf[d.off])
	d.off++
	padding := (4 - ((size + 1) % 4)) & 3
	if size == 254 {
		if d.off+3 > d.size {
			d.err = errors.New("tl: decode StringBytes: short length")
			return nil
		}
		size = int(d.buf[d.off]) | int(d.buf[d.off+1])<<8 | int(d.buf[d.off+2])<<16
		d.off += 3
		padding = (4 - size%4) & 3
	}
	if d.off+size > d.size {
		d.err = fmt.Errorf("tl: decode StringBytes: wrong size: %d+%d > %d", d.off, size, d.size)
		return nil
	}
	x := make([]byte, size)
	copy(x, d.buf[d.off:d.off+size])
	d.off += size
	if d.off+padding > d.size {
		d.err = errors.New("tl: decode StringBytes: wrong padding")
		return nil
	}
	d.off += padding
	return x
}

func (d *Decoder) String() string {
	b := d.StringBytes()
	if d.err != nil {
		return ""
	}
	return string(b)
}

func (d *Decoder) BigInt() *big.Int {
	b := d.StringBytes()
	if d.err != nil {
		return nil
	}
	y := make([]byte, len(b)+1)
	copy(y[1:], b)
	return new(big.Int).SetBytes(y)
}

func (d *Decoder) Bool() bool {
	c := d.UInt()
	if d.err != nil {
		return false
	}
	switch c {
	case crcBoolTrue:
		return true
	case crcBoolFalse:
		return false
	default:
		d.err = &UnexpectedConstructorError{ID: c}
		return false
	}
}

func (d *Decoder) vectorHeader() int32 {
	constructor := d.UInt()
	if d.err != nil {
		return 0
	}
	if constructor != crcVector {
		d.err = &UnexpectedConstructorError{ID: constructor}
		return 0
	}
	size := d.Int()
	if d.err == nil && size < 0 {
		d.err = errors.New("tl: decode vector: negative size")
	}
	return size
}

func (d *Decoder) VectorInt() []int32 {
	size := d.vectorHeader()
	if d.err != nil {
		return nil
	}
	x := make([]int32, size)
	for i := range x {
		x[i] = d.Int()
		if d.err != nil {
			return nil
		}
	}
	return x
}

func (d *Decoder) VectorLong() []int64 {
	size := d.vectorHeader()
	if d.err != nil {
		return nil
	}
	x := make([]int64, size)
	for i := range x {
		x[i] = d.Long()
		if d.err != nil {
			return nil
		}
	}
	return x
}

func (d *Decoder) VectorString() []string {
	size := d.vectorHeader()
	if d.err != nil {
		return nil
	}
	x := make([]string, size)
	for i := range x {
		x[i] = d.String()
		if d.err != nil {
			return nil
		}
	}
	return x
}

// ConstructorFunc decodes the body of one constructor (the id has already
// been consumed) into an Object.
type ConstructorFunc func(d *Decoder) Object

var registry = map[uint32]ConstructorFunc{}

// Register adds a constructor to the package-wide decode registry. Called
// from init() functions in types.go/schema.go, mirroring how a generated
// schema would populate its dispatch table.
func Register(id uint32, fn ConstructorFunc) {
	registry[id] = fn
}

// Vector decodes a vector of Objects using the registry for dispatch.
func (d *Decoder) Vector() []Object {
	size := d.vectorHeader()
	if d.err != nil {
		return nil
	}
	x := make([]Object, size)
	for i := range x {
		x[i] = d.Object()
		if d.err != nil {
			return nil
		}
	}
	return x
}

// Object reads one constructor id and dispatches to its registered decoder,
// handling the container and gzip_packed wrappers generically (spec.md
// §4.2's incoming classification starts here).
func (d *Decoder) Object() Object {
	constructor := d.UInt()
	if d.err != nil {
		return nil
	}

	if constructor == crcGzipPacked {
		raw := d.StringBytes()
		if d.err != nil {
			return nil
		}
		unzipped, err := gunzip(raw)
		if err != nil {
			d.err = fmt.Errorf("tl: gzip_packed: %w", err)
			return nil
		}
		inner := NewDecoder(unzipped)
		obj := inner.Object()
		d.err = inner.err
		return obj
	}

	fn, ok := registry[constructor]
	if !ok {
		d.err = &UnexpectedConstructorError{ID: constructor}
		return nil
	}
	obj := fn(d)
	if d.err != nil {
		return nil
	}
	return obj
}
