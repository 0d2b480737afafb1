// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server facade: validates configuration, opens the completion-queue backend
// and wires the reactor to the control layer.

package server

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/control"
	"github.com/momentics/hioload-probe/internal/transport"
	"github.com/momentics/hioload-probe/reactor"
)

// New builds the server and binds its listening socket.
func New(cfg *control.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = control.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := transport.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:   control.NewConfigStore(cfg),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}

	q, err := transport.Open(backend, transport.Options{
		Port:   cfg.Port,
		Depth:  cfg.QueueDepth,
		Logger: s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", backend, err)
	}

	ropts := []reactor.Option{reactor.WithLogger(s.log)}
	if s.clock != nil {
		ropts = append(ropts, reactor.WithClock(s.clock))
	}
	r, err := reactor.New(q, reactor.Config{
		Ceiling:    cfg.Ceiling,
		BufferSize: cfg.BufferSize,
		QueueDepth: cfg.QueueDepth,
	}, ropts...)
	if err != nil {
		q.Shutdown()
		return nil, err
	}
	s.queue = q
	s.reactor = r

	s.store.OnReload(s.applyConfig)
	s.registerProbes()
	return s, nil
}

// applyConfig pushes live-tunable settings into the running reactor. The
// rest needs a restart.
func (s *Server) applyConfig(old, cur *control.Config) {
	if old.Ceiling != cur.Ceiling {
		if err := s.reactor.SetCeiling(cur.Ceiling); err != nil {
			s.log.Warn().Err(err).Msg("ceiling not applied")
			return
		}
		s.log.Info().Int("from", old.Ceiling).Int("to", cur.Ceiling).Msg("probe ceiling changed")
	}
	if old.Port != cur.Port || old.Backend != cur.Backend || old.QueueDepth != cur.QueueDepth || old.BufferSize != cur.BufferSize || old.CPU != cur.CPU {
		s.log.Warn().Msg("listener and queue settings take effect after restart")
	}
}

func (s *Server) registerProbes() {
	control.RegisterPlatformProbes(s.debug)
	if rs, err := control.NewResourceSampler(); err != nil {
		s.log.Warn().Err(err).Msg("process usage unavailable")
	} else {
		s.usage = rs
		rs.Register(s.debug)
	}
	s.debug.RegisterProbe("server.backend", func() any { return string(s.queue.Backend()) })
	s.debug.RegisterProbe("server.addr", func() any { return s.queue.Addr().String() })
	s.debug.RegisterProbe("reactor.ceiling", func() any { return s.reactor.Ceiling() })
	s.debug.RegisterProbe("reactor.active", func() any { return s.reactor.Stats().Active.Load() })
}

// Addr returns the bound listening address.
func (s *Server) Addr() net.Addr { return s.queue.Addr() }

// Backend returns the backend in use.
func (s *Server) Backend() transport.Backend { return s.queue.Backend() }

// Stats exposes the reactor counters.
func (s *Server) Stats() *reactor.Stats { return s.reactor.Stats() }

// Ceiling returns the probe ceiling in effect.
func (s *Server) Ceiling() int { return s.reactor.Ceiling() }

// Metrics returns the registry fed by the stats reporter.
func (s *Server) Metrics() *control.MetricsRegistry { return s.metrics }

// Debug returns the debug probe registry.
func (s *Server) Debug() *control.DebugProbes { return s.debug }

// Config returns a copy of the configuration in effect.
func (s *Server) Config() *control.Config { return s.store.Snapshot() }

// Reconfigure validates cfg and applies what can change at runtime.
func (s *Server) Reconfigure(cfg *control.Config) error {
	return s.store.Update(cfg)
}

// Reload rebuilds the configuration from the file at path (may be empty), the
// environment and the pinned overrides, then applies it.
func (s *Server) Reload(path string, getenv func(string) string, pinned func(*control.Config) error) error {
	return s.store.Reload(path, getenv, pinned)
}
