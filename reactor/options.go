// File: reactor/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/protocol"
)

// Config holds reactor tuning parameters.
type Config struct {
	Ceiling    int // max probe writes in flight per connection
	BufferSize int // DataIO read buffer size
	QueueDepth int // sizing hint for record storage
}

// DefaultConfig mirrors the reference server: ceiling 5, 100-byte buffers,
// 2048-entry queue.
func DefaultConfig() Config {
	return Config{
		Ceiling:    5,
		BufferSize: 100,
		QueueDepth: 2048,
	}
}

// Option customizes a Reactor.
type Option func(*Reactor)

// WithLogger sets the reactor logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reactor) {
		r.log = l.With().Str("component", "reactor").Logger()
	}
}

// WithClock replaces the probe timestamp source.
func WithClock(now func() int64) Option {
	return func(r *Reactor) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStats makes the reactor publish into an externally owned Stats.
func WithStats(s *Stats) Option {
	return func(r *Reactor) {
		if s != nil {
			r.stats = s
		}
	}
}

var defaultClock = protocol.MonotonicNow
