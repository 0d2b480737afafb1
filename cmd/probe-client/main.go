// File: cmd/probe-client/main.go
// Package main
// Load client: opens many connections to a probe server and reports the
// latency distribution of the probes it receives.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/momentics/hioload-probe/client"
	"github.com/momentics/hioload-probe/control"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("probe-client", flag.ContinueOnError)
	outDir := fs.String("out", ".", "directory for latency_data_client_<id>.txt files, empty disables")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	redisAddr := fs.String("redis", "", "also push samples to this Redis server")
	runID := fs.String("run", "", "run id used in Redis keys (default: start time)")
	redisTTL := fs.Duration("redis-ttl", 24*time.Hour, "expiry of Redis keys, 0 keeps them")
	dialTimeout := fs.Duration("dial-timeout", 5*time.Second, "connect timeout")
	readTimeout := fs.Duration("read-timeout", 0, "per-probe read timeout, 0 waits forever")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: probe-client [flags] <address> <port> <connections> <messages>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := parseArgs(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe-client: %v\n", err)
		fs.Usage()
		return 1
	}
	log, err := control.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe-client: %v\n", err)
		return 1
	}
	cfg.DialTimeout = *dialTimeout
	cfg.ReadTimeout = *readTimeout
	cfg.Logger = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks client.MultiSink
	if *outDir != "" {
		sinks = append(sinks, client.FileSink{Dir: *outDir})
	}
	if *redisAddr != "" {
		id := *runID
		if id == "" {
			id = time.Now().UTC().Format("20060102T150405")
		}
		rs, err := client.NewRedisSink(ctx, *redisAddr, id, *redisTTL)
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable")
			return 1
		}
		sinks = append(sinks, rs)
	}
	defer sinks.Close()

	results, err := client.Run(ctx, cfg, sinks)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return 1
	}

	if *asJSON {
		err = client.WriteJSON(os.Stdout, results)
	} else {
		err = client.WriteText(os.Stdout, results)
	}
	if err != nil {
		log.Error().Err(err).Msg("write report")
		return 1
	}
	return 0
}

func parseArgs(args []string) (client.Config, error) {
	if len(args) != 4 {
		return client.Config{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}
	nums := make([]int, 3)
	for i, name := range []string{"port", "connections", "messages"} {
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n <= 0 {
			return client.Config{}, fmt.Errorf("%s %q must be a positive number", name, args[i+1])
		}
		nums[i] = n
	}
	if nums[0] > control.MaxPort {
		return client.Config{}, fmt.Errorf("port %d out of range 1-%d", nums[0], control.MaxPort)
	}
	return client.Config{
		Addr:        net.JoinHostPort(args[0], strconv.Itoa(nums[0])),
		Connections: nums[1],
		Messages:    nums[2],
	}, nil
}
