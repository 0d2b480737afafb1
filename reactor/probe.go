// File: reactor/probe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backpressure-gated probe broadcaster.

package reactor

import (
	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
	"github.com/momentics/hioload-probe/protocol"
)

// broadcastProbes submits one timestamp probe to every connection below the
// ceiling and returns how many were submitted. It is only called when no
// completion is ready. Nothing is generated while submissions are backed up.
func (r *Reactor) broadcastProbes() int {
	if r.backlog.Length() > 0 || r.reg.Len() == 0 {
		return 0
	}
	ceiling := int(r.ceiling.Load())
	ts := r.now()
	sent := 0
	for h := range r.reg.Handles() {
		if n, _ := r.reg.InFlight(h); n >= ceiling {
			continue
		}
		r.reg.IncrementProbe(h)
		r.submit(r.ops.newProbeWrite(h, ts))
		sent++
		if r.backlog.Length() > 0 {
			break
		}
	}
	r.stats.ProbesSent.Add(int64(sent))
	return sent
}

// onProbeWrite releases one slot of the destination's probe window. A failed
// probe is dropped, never retried, and tears the destination down.
func (r *Reactor) onProbeWrite(id pool.SlabID, rec *record, c api.Completion) {
	h := rec.handle
	switch {
	case failed(c):
		r.stats.ProbesDropped.Add(1)
		r.reg.DecrementProbe(h)
		r.teardown(h, "probe", c.Err)
	case rec.off+c.Res < protocol.ProbeSize:
		rec.off += c.Res
		r.stats.ShortWrites.Add(1)
		if r.reg.Has(h) {
			r.submit(id)
			return
		}
		r.stats.ProbesDropped.Add(1)
	default:
		r.reg.DecrementProbe(h)
		r.stats.ProbesDone.Add(1)
	}
	r.ops.free(id)
}
