// File: client/client.go
// Package client implements the probe load client: it opens many
// connections at once, measures the one-way latency of every timestamp probe
// it receives and reports per-connection statistics.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The client never writes to its connections, so the received stream holds
// nothing but back-to-back fixed-width probes.

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/protocol"
)

// Config holds the load client parameters.
type Config struct {
	Addr        string        // server host:port
	Connections int           // concurrent connections
	Messages    int           // probes to read per connection
	DialTimeout time.Duration // 0 means no timeout
	ReadTimeout time.Duration // per-probe read deadline, 0 means none
	Clock       func() int64  // must match the server's probe clock
	Logger      zerolog.Logger
}

// Result is the outcome of one connection.
type Result struct {
	ID      int // 1-based connection number
	Samples []time.Duration
	Stats   Stats
	Err     error // read failure that ended the connection early, if any
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty server address", api.ErrInvalidArgument)
	}
	if c.Connections <= 0 {
		return fmt.Errorf("%w: connections must be positive, got %d", api.ErrInvalidArgument, c.Connections)
	}
	if c.Messages <= 0 {
		return fmt.Errorf("%w: messages must be positive, got %d", api.ErrInvalidArgument, c.Messages)
	}
	return nil
}

// Run dials every connection after a common start barrier, reads the
// configured number of probes on each and stores the samples into sink
// (which may be nil). A dial failure aborts the whole run; a connection that
// ends early keeps the samples it collected and reports why in Result.Err.
func Run(ctx context.Context, cfg Config, sink Sink) ([]Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = protocol.MonotonicNow
	}
	log := cfg.Logger.With().Str("component", "client").Logger()

	results := make([]Result, cfg.Connections)
	start := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Connections {
		g.Go(func() error {
			<-start
			res, err := runConn(gctx, cfg, i+1, log)
			if err != nil {
				return err
			}
			if sink != nil {
				if err := sink.Store(gctx, res.ID, res.Samples, res.Stats); err != nil {
					log.Warn().Err(err).Int("client", res.ID).Msg("store samples failed")
				}
			}
			results[i] = res
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runConn(ctx context.Context, cfg Config, id int, log zerolog.Logger) (Result, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return Result{}, fmt.Errorf("client %d: dial %s: %w", id, cfg.Addr, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	res := Result{ID: id, Samples: make([]time.Duration, 0, cfg.Messages)}
	var buf [protocol.ProbeSize]byte
	for range cfg.Messages {
		if cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
		if _, err := io.ReadFull(conn, buf[:]); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			res.Err = err
			break
		}
		ts, _ := protocol.DecodeProbe(buf[:])
		res.Samples = append(res.Samples, time.Duration(cfg.Clock()-ts))
	}
	if res.Err != nil {
		ev := log.Warn()
		if errors.Is(res.Err, io.EOF) {
			ev = log.Info()
		}
		ev.Err(res.Err).Int("client", id).Int("samples", len(res.Samples)).Msg("connection ended early")
	}

	st, err := Compute(res.Samples)
	if err != nil && !errors.Is(err, ErrNoSamples) {
		return Result{}, err
	}
	res.Stats = st
	log.Debug().Int("client", id).Int("samples", len(res.Samples)).Msg("client done")
	return res, nil
}
