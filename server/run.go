// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor lifecycle, periodic stats reporting and shutdown.

package server

import (
	"context"
	"time"

	"github.com/momentics/hioload-probe/affinity"
	"github.com/momentics/hioload-probe/api"
)

// Run drives the reactor on the calling goroutine until ctx is cancelled,
// Shutdown is called or the reactor fails. The backend is released on
// return. A clean stop returns nil, as does Run after Shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return api.ErrAlreadyRunning
	}
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()
	defer func() {
		cancel()
		close(s.done)
		s.closeBackend()
	}()

	cfg := s.store.Snapshot()
	if cfg.CPU >= 0 {
		unpin, err := affinity.Pin(cfg.CPU)
		if err != nil {
			s.log.Warn().Err(err).Int("cpu", cfg.CPU).Msg("reactor not pinned")
		} else {
			defer unpin()
			s.log.Info().Int("cpu", cfg.CPU).Msg("reactor pinned")
		}
	}
	if cfg.StatsInterval.Duration > 0 {
		go s.report(ctx, cfg.StatsInterval.Duration)
	}
	s.log.Info().
		Str("addr", s.Addr().String()).
		Str("backend", string(s.Backend())).
		Int("ceiling", s.Ceiling()).
		Msg("probe server running")

	err := s.reactor.Run(ctx)
	s.publish()
	return err
}

// report publishes a stats snapshot every interval until ctx is done.
func (s *Server) report(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap := s.publish()
			ev := s.log.Info()
			if s.usage != nil {
				u := s.usage.Sample()
				s.metrics.Publish("process", u.Fields())
				ev = ev.Uint64("rss", u.RSS).Float64("cpu_pct", u.CPUPercent)
			}
			ev.
				Int64("active", snap.Active).
				Int64("probes_sent", snap.ProbesSent).
				Int64("probes_done", snap.ProbesDone).
				Int64("bytes_echoed", snap.BytesEchoed).
				Int64("queue_full", snap.QueueFull).
				Msg("stats")
		}
	}
}

func (s *Server) publish() (snap snapshot) {
	snap = snapshot(s.reactor.Stats().Snapshot())
	s.metrics.Publish("reactor", snap.fields())
	s.metrics.Set("reactor.ceiling", s.reactor.Ceiling())
	return snap
}

// Shutdown stops a running reactor, waits for it and releases the backend.
// It is idempotent.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	return s.closeBackend()
}

func (s *Server) closeBackend() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.stopErr = s.queue.Shutdown()
		s.log.Info().Msg("probe server stopped")
	})
	return s.stopErr
}
