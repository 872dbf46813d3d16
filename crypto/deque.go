// Package crypto holds the byte-level primitives shared by the transport and
// MTProto state layers: the growable DequeBuffer used to frame messages
// without copying, and the AES-256-IGE envelope used by encrypted sessions.
package crypto

// DequeBuffer is a growable buffer of T with room reserved at both the front
// and the back, so that a transport header and an encryption trailer can be
// prepended/appended without shifting the payload in between.
//
// Ported from grammers-crypto's DequeBuffer<T>: a Vec-backed deque that only
// rotates when the front reserve is exhausted.
type DequeBuffer[T any] struct {
	buf        []T
	head       int
	defaultHead int
}

// NewDequeBuffer creates an empty buffer with room for at least backCap
// elements at the back and exactly frontCap zero-valued elements reserved at
// the front.
func NewDequeBuffer[T any](backCap, frontCap int) *DequeBuffer[T] {
	buf := make([]T, frontCap, frontCap+backCap)
	return &DequeBuffer[T]{
		buf:         buf,
		head:        frontCap,
		defaultHead: frontCap,
	}
}

// Clear removes all values, restoring the buffer to its zero-valued front
// reserve.
func (d *DequeBuffer[T]) Clear() {
	var zero T
	d.buf = d.buf[:d.defaultHead]
	for i := range d.buf {
		d.buf[i] = zero
	}
	d.head = d.defaultHead
}

// ExtendFront prepends slice to the buffer. It never copies the occupied
// window unless the front reserve is exhausted, in which case the backing
// array grows by the shortfall and is rotated so slice fits at the very
// front; no front reserve is left after that.
func (d *DequeBuffer[T]) ExtendFront(slice []T) {
	if d.head >= len(slice) {
		d.head -= len(slice)
	} else {
		shift := len(slice) - d.head
		var zero T
		for i := 0; i < shift; i++ {
			d.buf = append(d.buf, zero)
		}
		rotateRight(d.buf, shift)
		d.head = 0
	}
	copy(d.buf[d.head:d.head+len(slice)], slice)
}

// rotateRight rotates buf to the right by k positions in place.
func rotateRight[T any](buf []T, k int) {
	n := len(buf)
	if n == 0 {
		return
	}
	k %= n
	if k == 0 {
		return
	}
	reverse(buf)
	reverse(buf[:k])
	reverse(buf[k:])
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Push appends value to the back of the buffer.
func (d *DequeBuffer[T]) Push(value T) {
	d.buf = append(d.buf, value)
}

// ExtendBack appends slice to the back of the buffer.
func (d *DequeBuffer[T]) ExtendBack(slice []T) {
	d.buf = append(d.buf, slice...)
}

// IsEmpty reports whether the occupied window is empty.
func (d *DequeBuffer[T]) IsEmpty() bool {
	return d.head == len(d.buf)
}

// Len returns the number of live elements (excludes the unused front
// reserve).
func (d *DequeBuffer[T]) Len() int {
	return len(d.buf) - d.head
}

// Bytes returns the occupied window as a slice. Mutating it mutates the
// buffer.
func (d *DequeBuffer[T]) Bytes() []T {
	return d.buf[d.head:]
}

// At returns the element at the given index within the occupied window.
func (d *DequeBuffer[T]) At(i int) T {
	return d.buf[d.head+i]
}

// Slice returns buf[lo:hi] within the occupied window.
func (d *DequeBuffer[T]) Slice(lo, hi int) []T {
	return d.buf[d.head+lo : d.head+hi]
}
