// Package recvbuf implements the per-connection receive buffer: an
// append/pop byte buffer with power-of-two growth from a 32-byte floor.
// Bytes are pushed from the socket and popped once the parser or a body
// reader has consumed them; capacity never shrinks within a connection's
// lifetime.
package recvbuf

import "github.com/valyala/bytebufferpool"

const minCapacity = 32

// Buffer is the dynamic receive buffer. The zero value is not usable; call
// Get to obtain one from the shared pool.
type Buffer struct {
	bb *bytebufferpool.ByteBuffer
}

// Get returns a Buffer backed by a pooled byte slice, reused across
// connections the way fasthttp recycles its ByteBuffers.
func Get() *Buffer {
	return &Buffer{bb: bytebufferpool.Get()}
}

// Release returns the backing array to the shared pool. The Buffer must
// not be used afterward.
func (b *Buffer) Release() {
	b.bb.Reset()
	bytebufferpool.Put(b.bb)
	b.bb = nil
}

// Bytes returns the used prefix [0, Len()). The slice is only valid until
// the next Push or PopFront call.
func (b *Buffer) Bytes() []byte {
	return b.bb.B
}

// Len reports the number of used bytes.
func (b *Buffer) Len() int {
	return len(b.bb.B)
}

// Push copies p into the tail of the buffer, growing the backing array by
// doubling (from a floor of minCapacity) whenever the current capacity is
// insufficient.
func (b *Buffer) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	need := len(b.bb.B) + len(p)
	if cap(b.bb.B) < need {
		b.grow(need)
	}
	b.bb.B = append(b.bb.B, p...)
}

func (b *Buffer) grow(need int) {
	newCap := cap(b.bb.B)
	if newCap < minCapacity {
		newCap = minCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.bb.B), newCap)
	copy(grown, b.bb.B)
	b.bb.B = grown
}

// PopFront discards the first n bytes, shifting [n, Len()) down to offset
// 0. n must satisfy 0 <= n <= Len().
func (b *Buffer) PopFront(n int) {
	if n < 0 || n > len(b.bb.B) {
		panic("recvbuf: PopFront out of range")
	}
	if n == 0 {
		return
	}
	copy(b.bb.B, b.bb.B[n:])
	b.bb.B = b.bb.B[:len(b.bb.B)-n]
}
