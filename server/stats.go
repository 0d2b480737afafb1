// File: server/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/hioload-probe/reactor"

type snapshot reactor.Snapshot

func (s snapshot) fields() map[string]any {
	return map[string]any{
		"accepted":       s.Accepted,
		"torn_down":      s.TornDown,
		"active":         s.Active,
		"reads":          s.Reads,
		"bytes_read":     s.BytesRead,
		"echo_writes":    s.EchoWrites,
		"bytes_echoed":   s.BytesEchoed,
		"probes_sent":    s.ProbesSent,
		"probes_done":    s.ProbesDone,
		"probes_dropped": s.ProbesDropped,
		"short_writes":   s.ShortWrites,
		"queue_full":     s.QueueFull,
		"stale":          s.Stale,
		"waits":          s.Waits,
		"live_records":   s.LiveRecords,
	}
}
