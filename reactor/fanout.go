// File: reactor/fanout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fan-out echo pipeline. A filled read buffer is written to every other
// active connection and back to its origin without copying. The origin's
// next read is armed only once every one of those writes has completed.

package reactor

import (
	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
)

// onRead handles a DataIO completion in the Reading state.
func (r *Reactor) onRead(id pool.SlabID, rec *record, c api.Completion) {
	h := rec.handle
	if !r.reg.Has(h) {
		r.ops.free(id)
		return
	}
	if failed(c) {
		r.teardown(h, "read", c.Err)
		r.ops.free(id)
		return
	}
	r.stats.Reads.Add(1)
	r.stats.BytesRead.Add(int64(c.Res))

	rec.n = c.Res
	rec.off = 0
	rec.writing = true
	data := rec.buf[:rec.n]

	for peer := range r.reg.Handles() {
		if peer == h {
			continue
		}
		rec.borrows++
		r.submit(r.ops.newEchoWrite(peer, id, data))
	}
	// the self echo is tagged with the DataIO record itself
	rec.borrows++
	r.submit(id)
}

// onSelfEcho handles a DataIO completion in the Writing state.
func (r *Reactor) onSelfEcho(id pool.SlabID, rec *record, c api.Completion) {
	h := rec.handle
	switch {
	case failed(c):
		r.teardown(h, "echo", c.Err)
	case rec.off+c.Res < rec.n:
		rec.off += c.Res
		r.stats.ShortWrites.Add(1)
		if r.reg.Has(h) {
			r.submit(id)
			return
		}
	default:
		rec.off = rec.n
		r.stats.EchoWrites.Add(1)
		r.stats.BytesEchoed.Add(int64(rec.n))
	}
	r.release(id, rec)
}

// onEchoWrite handles completion of a write to a peer other than the origin.
// A failure tears down the destination, never the origin.
func (r *Reactor) onEchoWrite(id pool.SlabID, rec *record, c api.Completion) {
	dst := rec.handle
	switch {
	case failed(c):
		r.teardown(dst, "broadcast", c.Err)
	case rec.off+c.Res < len(rec.buf):
		rec.off += c.Res
		r.stats.ShortWrites.Add(1)
		if r.reg.Has(dst) {
			r.submit(id)
			return
		}
	default:
		r.stats.EchoWrites.Add(1)
		r.stats.BytesEchoed.Add(int64(len(rec.buf)))
	}

	origin := rec.origin
	r.ops.free(id)
	if o, ok := r.ops.get(origin); ok {
		r.release(origin, o)
	}
}

// release drops one borrow of a DataIO buffer. The last release re-arms the
// read, or frees the record when its connection is already gone.
func (r *Reactor) release(id pool.SlabID, rec *record) {
	if rec.borrows > 0 {
		rec.borrows--
	}
	if rec.borrows > 0 {
		return
	}
	if !r.reg.Has(rec.handle) {
		r.ops.free(id)
		return
	}
	rec.writing = false
	rec.n = 0
	rec.off = 0
	r.submit(id)
}
