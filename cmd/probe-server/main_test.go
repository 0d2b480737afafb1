package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/control"
)

func noPins(*control.Config) error { return nil }

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 1000, "ceiling": 2}`), 0o600))
	env := map[string]string{"PROBE_CEILING": "3"}

	cfg, err := loadConfig(path, func(k string) string { return env[k] }, noPins)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Port)
	assert.Equal(t, 3, cfg.Ceiling)

	pin := func(c *control.Config) error { return c.ParseServerArgs([]string{"2000", "4"}) }
	cfg, err = loadConfig(path, func(k string) string { return env[k] }, pin)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Port)
	assert.Equal(t, 4, cfg.Ceiling)
}

func TestRunRejectsInvalidPortAndCeiling(t *testing.T) {
	noEnv := func(string) string { return "" }
	assert.Equal(t, 1, run([]string{"0"}, noEnv))
	assert.Equal(t, 1, run([]string{"65536"}, noEnv))
	assert.Equal(t, 1, run([]string{"8080", "0"}, noEnv))
	assert.Equal(t, 1, run([]string{"8080", "70000"}, noEnv))
	assert.Equal(t, 1, run([]string{}, noEnv))
	assert.Equal(t, 1, run([]string{"-backend", "epoll", "8080"}, noEnv))
}
