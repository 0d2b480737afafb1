// File: reactor/stats.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters. Written by the reactor goroutine, readable from any
// goroutine for reporting.

package reactor

import "sync/atomic"

// Stats holds monotonically increasing reactor counters plus a few gauges.
type Stats struct {
	Accepted      atomic.Int64
	TornDown      atomic.Int64
	Active        atomic.Int64
	Reads         atomic.Int64
	BytesRead     atomic.Int64
	EchoWrites    atomic.Int64
	BytesEchoed   atomic.Int64
	ProbesSent    atomic.Int64
	ProbesDone    atomic.Int64
	ProbesDropped atomic.Int64
	ShortWrites   atomic.Int64
	QueueFull     atomic.Int64
	Stale         atomic.Int64
	Waits         atomic.Int64
	LiveRecords   atomic.Int64
}

// Snapshot is a plain copy of Stats suitable for logging or JSON.
type Snapshot struct {
	Accepted      int64 `json:"accepted"`
	TornDown      int64 `json:"torn_down"`
	Active        int64 `json:"active"`
	Reads         int64 `json:"reads"`
	BytesRead     int64 `json:"bytes_read"`
	EchoWrites    int64 `json:"echo_writes"`
	BytesEchoed   int64 `json:"bytes_echoed"`
	ProbesSent    int64 `json:"probes_sent"`
	ProbesDone    int64 `json:"probes_done"`
	ProbesDropped int64 `json:"probes_dropped"`
	ShortWrites   int64 `json:"short_writes"`
	QueueFull     int64 `json:"queue_full"`
	Stale         int64 `json:"stale"`
	Waits         int64 `json:"waits"`
	LiveRecords   int64 `json:"live_records"`
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Accepted:      s.Accepted.Load(),
		TornDown:      s.TornDown.Load(),
		Active:        s.Active.Load(),
		Reads:         s.Reads.Load(),
		BytesRead:     s.BytesRead.Load(),
		EchoWrites:    s.EchoWrites.Load(),
		BytesEchoed:   s.BytesEchoed.Load(),
		ProbesSent:    s.ProbesSent.Load(),
		ProbesDone:    s.ProbesDone.Load(),
		ProbesDropped: s.ProbesDropped.Load(),
		ShortWrites:   s.ShortWrites.Load(),
		QueueFull:     s.QueueFull.Load(),
		Stale:         s.Stale.Load(),
		Waits:         s.Waits.Load(),
		LiveRecords:   s.LiveRecords.Load(),
	}
}
