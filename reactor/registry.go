// File: reactor/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection registry: the set of active handles and, per handle, the number
// of probe writes in flight.

package reactor

import (
	"iter"

	"github.com/momentics/hioload-probe/api"
)

// connState is the per-connection entry of the registry.
type connState struct {
	probes int
}

// Registry tracks active connections. It is owned by the reactor goroutine
// and is NOT thread-safe.
type Registry struct {
	conns map[api.Handle]*connState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[api.Handle]*connState)}
}

// Register adds h with a probe count of zero. Registering a live handle
// keeps its current count.
func (r *Registry) Register(h api.Handle) {
	if _, ok := r.conns[h]; ok {
		return
	}
	r.conns[h] = &connState{}
}

// Unregister removes h. It reports whether h was present, so the caller can
// run teardown side effects exactly once.
func (r *Registry) Unregister(h api.Handle) bool {
	if _, ok := r.conns[h]; !ok {
		return false
	}
	delete(r.conns, h)
	return true
}

// Has reports whether h is active.
func (r *Registry) Has(h api.Handle) bool {
	_, ok := r.conns[h]
	return ok
}

// Len returns the number of active handles.
func (r *Registry) Len() int { return len(r.conns) }

// IncrementProbe bumps the in-flight probe count of h. No-op if h is gone.
func (r *Registry) IncrementProbe(h api.Handle) {
	if c, ok := r.conns[h]; ok {
		c.probes++
	}
}

// DecrementProbe lowers the in-flight probe count of h. No-op if h is gone;
// the count never drops below zero.
func (r *Registry) DecrementProbe(h api.Handle) {
	if c, ok := r.conns[h]; ok && c.probes > 0 {
		c.probes--
	}
}

// InFlight returns the in-flight probe count of h.
func (r *Registry) InFlight(h api.Handle) (int, bool) {
	c, ok := r.conns[h]
	if !ok {
		return 0, false
	}
	return c.probes, true
}

// Handles yields every active handle once per iteration, in no particular
// order. The sequence is lazy and can be ranged over any number of times.
// Handles removed while iterating are not produced afterwards.
func (r *Registry) Handles() iter.Seq[api.Handle] {
	return func(yield func(api.Handle) bool) {
		for h := range r.conns {
			if !yield(h) {
				return
			}
		}
	}
}
