// File: pool/slab_pool.go
// Package pool implements a generation-checked slab for long-lived records.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// SlabID addresses one slot of a Slab. The high 32 bits carry the slot
// generation, the low 32 bits the slot index. Zero is never issued.
type SlabID uint64

func makeSlabID(idx, gen uint32) SlabID { return SlabID(uint64(gen)<<32 | uint64(idx)) }

func (id SlabID) index() uint32 { return uint32(id) }
func (id SlabID) gen() uint32   { return uint32(id >> 32) }

type slabEntry[T any] struct {
	val  T
	gen  uint32
	used bool
}

// Slab stores values in stable slots and hands out ids that stay unique
// across reuse of a slot. A removed id never resolves again, which turns a
// double free or a use after free into a failed lookup.
//
// Slab is NOT thread-safe; it belongs to the goroutine that owns it.
type Slab[T any] struct {
	entries []slabEntry[T]
	free    []uint32
	live    int

	totalAlloc uint64
	totalFree  uint64
}

// NewSlab creates a slab with room for capacity values before growing.
func NewSlab[T any](capacity int) *Slab[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Slab[T]{
		entries: make([]slabEntry[T], 0, capacity),
		free:    make([]uint32, 0, capacity),
	}
}

// Insert stores v and returns its id.
func (s *Slab[T]) Insert(v T) SlabID {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.entries))
		s.entries = append(s.entries, slabEntry[T]{})
	}
	e := &s.entries[idx]
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	e.val = v
	e.used = true
	s.live++
	s.totalAlloc++
	return makeSlabID(idx, e.gen)
}

// Get resolves id. ok is false for ids that were never issued or were
// already removed.
func (s *Slab[T]) Get(id SlabID) (v T, ok bool) {
	idx := id.index()
	if int(idx) >= len(s.entries) {
		return v, false
	}
	e := &s.entries[idx]
	if !e.used || e.gen != id.gen() {
		return v, false
	}
	return e.val, true
}

// Remove frees id and returns the stored value. A second Remove of the same
// id reports ok == false and changes nothing.
func (s *Slab[T]) Remove(id SlabID) (v T, ok bool) {
	idx := id.index()
	if int(idx) >= len(s.entries) {
		return v, false
	}
	e := &s.entries[idx]
	if !e.used || e.gen != id.gen() {
		return v, false
	}
	v = e.val
	var zero T
	e.val = zero
	e.used = false
	s.free = append(s.free, idx)
	s.live--
	s.totalFree++
	return v, true
}

// Len returns the number of live values.
func (s *Slab[T]) Len() int { return s.live }

// Stats reports allocation accounting.
func (s *Slab[T]) Stats() SlabStats {
	return SlabStats{
		TotalAlloc: s.totalAlloc,
		TotalFree:  s.totalFree,
		InUse:      s.live,
		Slots:      len(s.entries),
	}
}

// SlabStats aggregates slab allocation counters.
type SlabStats struct {
	TotalAlloc uint64
	TotalFree  uint64
	InUse      int
	Slots      int
}
