package recvbuf

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPushPopRoundTrip(t *testing.T) {
	b := Get()
	defer b.Release()

	b.Push([]byte("hello "))
	b.Push([]byte("world"))
	assert.Equal(t, "hello world", string(b.Bytes()))

	b.PopFront(6)
	assert.Equal(t, "world", string(b.Bytes()))

	b.PopFront(5)
	assert.Equal(t, 0, b.Len())
}

func TestBufferCapacityNeverShrinks(t *testing.T) {
	b := Get()
	defer b.Release()

	b.Push(bytes.Repeat([]byte("x"), 100))
	maxCap := cap(b.Bytes())

	b.PopFront(100)
	assert.Equal(t, 0, b.Len())
	assert.GreaterOrEqual(t, cap(b.Bytes()), maxCap)

	b.Push([]byte("y"))
	assert.GreaterOrEqual(t, cap(b.Bytes()), maxCap)
}

func TestBufferGrowthFloorAndDoubling(t *testing.T) {
	b := Get()
	defer b.Release()

	b.Push([]byte("a"))
	assert.GreaterOrEqual(t, cap(b.Bytes()), minCapacity)

	before := cap(b.Bytes())
	b.Push(bytes.Repeat([]byte("z"), before))
	assert.GreaterOrEqual(t, cap(b.Bytes()), before*2)
}

// Randomized push/pop sequence: the logical content always equals the
// concatenation of everything pushed, minus the sum of everything popped.
func TestBufferPushPopLaw(t *testing.T) {
	b := Get()
	defer b.Release()

	rng := rand.New(rand.NewSource(1))
	var model []byte

	for i := 0; i < 200; i++ {
		if len(model) == 0 || rng.Intn(2) == 0 {
			chunk := make([]byte, rng.Intn(40))
			rng.Read(chunk)
			b.Push(chunk)
			model = append(model, chunk...)
		} else {
			n := rng.Intn(len(model) + 1)
			b.PopFront(n)
			model = model[n:]
		}
		assert.Equal(t, model, b.Bytes())
	}
}

func TestPopFrontOutOfRangePanics(t *testing.T) {
	b := Get()
	defer b.Release()
	b.Push([]byte("abc"))

	assert.Panics(t, func() { b.PopFront(4) })
	assert.Panics(t, func() { b.PopFront(-1) })
}
