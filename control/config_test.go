package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/api"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5, cfg.Ceiling)
	assert.Equal(t, 2048, cfg.QueueDepth)
	assert.Equal(t, 100, cfg.BufferSize)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, 10*time.Second, cfg.StatsInterval.Duration)
	assert.Equal(t, -1, cfg.CPU)
	// no port until one is given
	assert.ErrorIs(t, cfg.Validate(), api.ErrInvalidArgument)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9000, "ceiling": 8, "stats_interval": "2s", "backend": "proactor"}`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 8, cfg.Ceiling)
	assert.Equal(t, 2*time.Second, cfg.StatsInterval.Duration)
	assert.Equal(t, "proactor", cfg.Backend)
	assert.Equal(t, 2048, cfg.QueueDepth, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileMillisAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ms.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stats_interval": 1500}`), 0o600))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.StatsInterval.Duration)

	_, err = LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"port": `), 0o600))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"PROBE_PORT":        "7000",
		"PROBE_CEILING":     "3",
		"PROBE_BACKEND":     "uring",
		"PROBE_QUEUE_DEPTH": "512",
		"PROBE_CPU":         "0",
	})))
	assert.Equal(t, 0, cfg.CPU)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 3, cfg.Ceiling)
	assert.Equal(t, "uring", cfg.Backend)
	assert.Equal(t, 512, cfg.QueueDepth)

	err := cfg.ApplyEnv(envMap(map[string]string{"PROBE_PORT": "seven"}))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestParseServerArgs(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ParseServerArgs([]string{"8080"}))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.Ceiling)

	require.NoError(t, cfg.ParseServerArgs([]string{"8081", "12"}))
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 12, cfg.Ceiling)

	assert.ErrorIs(t, cfg.ParseServerArgs([]string{"x"}), api.ErrInvalidArgument)
	assert.ErrorIs(t, cfg.ParseServerArgs([]string{"1", "y"}), api.ErrInvalidArgument)
	assert.ErrorIs(t, cfg.ParseServerArgs([]string{"1", "2", "3"}), api.ErrInvalidArgument)
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		ok   bool
	}{
		{"valid", func(c *Config) {}, true},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port max", func(c *Config) { c.Port = 65535 }, true},
		{"port too big", func(c *Config) { c.Port = 65536 }, false},
		{"ceiling zero", func(c *Config) { c.Ceiling = 0 }, false},
		{"ceiling max", func(c *Config) { c.Ceiling = 65535 }, true},
		{"ceiling too big", func(c *Config) { c.Ceiling = 70000 }, false},
		{"bad backend", func(c *Config) { c.Backend = "epoll" }, false},
		{"zero depth", func(c *Config) { c.QueueDepth = 0 }, false},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, false},
		{"cpu pinned", func(c *Config) { c.CPU = 0 }, true},
		{"cpu negative", func(c *Config) { c.CPU = -2 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Port = 8080
			tc.mut(cfg)
			if tc.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.ErrorIs(t, cfg.Validate(), api.ErrInvalidArgument)
			}
		})
	}
}
