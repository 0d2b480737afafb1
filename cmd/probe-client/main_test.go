package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cfg, err := parseArgs([]string{"127.0.0.1", "8080", "10", "1000"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 10, cfg.Connections)
	assert.Equal(t, 1000, cfg.Messages)

	for _, args := range [][]string{
		{"127.0.0.1", "8080", "10"},
		{"127.0.0.1", "port", "10", "5"},
		{"127.0.0.1", "70000", "10", "5"},
		{"127.0.0.1", "8080", "0", "5"},
		{"127.0.0.1", "8080", "1", "-5"},
	} {
		_, err := parseArgs(args)
		assert.Error(t, err, args)
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	assert.Equal(t, 1, run([]string{"only-host"}))
	assert.Equal(t, 0, run([]string{"-h"}))
}
