//go:build !windows

package client_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/client"
	"github.com/momentics/hioload-probe/control"
	"github.com/momentics/hioload-probe/server"
)

func TestEndToEndAgainstServer(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := control.Default()
	cfg.Port = port
	cfg.Backend = "proactor"
	cfg.QueueDepth = 256
	s, err := server.New(cfg)
	require.NoError(t, err)
	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()
	defer func() {
		require.NoError(t, s.Shutdown())
		require.NoError(t, <-errc)
	}()

	results, err := client.Run(context.Background(), client.Config{
		Addr:        net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		Connections: 4,
		Messages:    200,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, 200, r.Stats.Count)
		assert.GreaterOrEqual(t, r.Stats.Min, time.Duration(0))
		assert.LessOrEqual(t, r.Stats.Median, r.Stats.P999)
		assert.LessOrEqual(t, r.Stats.P999, r.Stats.Max)
	}
}
