// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Single-producer single-consumer ring used to hand completions from a
// backend pump goroutine to the reactor goroutine without locking.

package pool

import (
	"sync/atomic"
)

// Ring is a fixed-capacity SPSC ring buffer. Exactly one goroutine may call
// Enqueue and exactly one (possibly different) goroutine may call Dequeue.
type Ring[T any] struct {
	data []T
	mask uint64
	_    [56]byte
	head atomic.Uint64 // next slot to read, owned by the consumer
	_    [56]byte
	tail atomic.Uint64 // next slot to write, owned by the producer
	_    [56]byte
}

// NewRing allocates a ring holding at least size items. The capacity is
// rounded up to a power of two.
func NewRing[T any](size int) *Ring[T] {
	n := uint64(1)
	for n < uint64(max(size, 1)) {
		n <<= 1
	}
	return &Ring[T]{
		data: make([]T, n),
		mask: n - 1,
	}
}

// Enqueue adds an item; returns false if full.
func (r *Ring[T]) Enqueue(val T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = val
	r.tail.Store(tail + 1)
	return true
}

// Dequeue removes and returns (item, ok); ok==false if empty.
func (r *Ring[T]) Dequeue() (res T, ok bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return res, false
	}
	idx := head & r.mask
	res = r.data[idx]
	var zero T
	r.data[idx] = zero
	r.head.Store(head + 1)
	return res, true
}

// Len returns number of items in the ring.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}
