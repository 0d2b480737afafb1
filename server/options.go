// File: server/options.go
// Package server defines functional options for the Server facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/control"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger sets the root logger; components derive their own from it.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics publishes reactor snapshots into mr instead of a private
// registry.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(s *Server) {
		if mr != nil {
			s.metrics = mr
		}
	}
}

// WithDebugProbes registers the server's probes into dp.
func WithDebugProbes(dp *control.DebugProbes) Option {
	return func(s *Server) {
		if dp != nil {
			s.debug = dp
		}
	}
}

// WithClock replaces the probe timestamp source.
func WithClock(now func() int64) Option {
	return func(s *Server) {
		s.clock = now
	}
}
