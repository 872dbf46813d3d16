// Package tl is a hand-written slice of the Type Language wire model: just
// enough constructors to drive the MTProto record layer, sender, invoker
// and update sequencer described by this core. Full schema code generation
// (the ~thousands of real TL types) is out of scope (spec.md §1) and is
// treated as an external collaborator producing values that satisfy Object.
package tl

import "fmt"

// Object is satisfied by every TL constructor this package knows about.
// Real generated bindings would implement the same shape; this hand-written
// subset stands in for that generator's output.
type Object interface {
	CRC() uint32
}

// Bare well-known constructor ids used directly by the decoder.
const (
	crcVector    uint32 = 0x1cb5c415
	crcBoolTrue  uint32 = 0x997275b5
	crcBoolFalse uint32 = 0xbc799737
	crcGzipPacked uint32 = 0x3072cfa1
)

// UnexpectedConstructorError is returned by Decoder.Object when the wire
// holds a constructor id this package does not know how to decode.
type UnexpectedConstructorError struct {
	ID uint32
}

func (e *UnexpectedConstructorError) Error() string {
	return fmt.Sprintf("tl: unexpected constructor %#08x", e.ID)
}
