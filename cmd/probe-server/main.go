// File: cmd/probe-server/main.go
// Package main
// Broadcast/echo TCP server that streams timestamp probes to every client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/hioload-probe/control"
	"github.com/momentics/hioload-probe/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv))
}

func run(args []string, getenv func(string) string) int {
	fs := flag.NewFlagSet("probe-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON config file, re-read on SIGHUP")
	backend := fs.String("backend", "", "completion backend: auto, uring or proactor")
	depth := fs.Int("depth", 0, "submission queue depth")
	buffer := fs.Int("buffer", 0, "per-connection read buffer size in bytes")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	cpu := fs.Int("cpu", -1, "pin the reactor thread to this cpu, -1 disables")
	statsInterval := fs.Duration("stats-interval", 0, "stats report interval, 0 keeps the configured value")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: probe-server [flags] <port> [ceiling]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	// command line values win over the file and the environment, also on reload
	pinned := func(c *control.Config) error {
		if err := c.ParseServerArgs(fs.Args()); err != nil {
			return err
		}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "backend":
				c.Backend = *backend
			case "depth":
				c.QueueDepth = *depth
			case "buffer":
				c.BufferSize = *buffer
			case "log-level":
				c.LogLevel = *logLevel
			case "cpu":
				c.CPU = *cpu
			case "stats-interval":
				c.StatsInterval = control.Duration{Duration: *statsInterval}
			}
		})
		return nil
	}

	cfg, err := loadConfig(*configPath, getenv, pinned)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe-server: %v\n", err)
		fs.Usage()
		return 1
	}
	log, err := control.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe-server: %v\n", err)
		return 1
	}

	s, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := s.Reload(*configPath, getenv, pinned); err != nil {
					log.Warn().Err(err).Msg("reload rejected")
					continue
				}
				log.Info().Int("ceiling", s.Ceiling()).Msg("configuration reloaded")
			}
		}
	}()

	start := time.Now()
	if err := s.Run(ctx); err != nil {
		log.Error().Err(err).Msg("reactor stopped with error")
		return 1
	}
	snap := s.Stats().Snapshot()
	log.Info().
		Dur("uptime", time.Since(start)).
		Int64("accepted", snap.Accepted).
		Int64("probes_sent", snap.ProbesSent).
		Msg("bye")
	return 0
}

func loadConfig(path string, getenv func(string) string, pinned func(*control.Config) error) (*control.Config, error) {
	cfg := control.Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := pinned(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
