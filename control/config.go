// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Server configuration: defaults, JSON file, environment overrides,
// positional arguments and validation.

package control

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/momentics/hioload-probe/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Duration accepts either a Go duration string ("10s") or a number of
// milliseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		d.Duration = time.Duration(int64(val)) * time.Millisecond
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(val)
		return err
	default:
		return fmt.Errorf("%w: duration must be a string or milliseconds", api.ErrInvalidArgument)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// Config holds every server setting.
type Config struct {
	Port          int      `json:"port"`
	Ceiling       int      `json:"ceiling"`
	QueueDepth    int      `json:"queue_depth"`
	BufferSize    int      `json:"buffer_size"`
	Backend       string   `json:"backend"`
	LogLevel      string   `json:"log_level"`
	StatsInterval Duration `json:"stats_interval"`
	// CPU pins the reactor thread; -1 leaves scheduling to the runtime.
	CPU int `json:"cpu"`
}

// Limits of the listening endpoint.
const (
	MaxPort    = 65535
	MaxCeiling = 65535
)

// Default returns the stock configuration. Port is left unset and must come
// from the file, the environment or the command line.
func Default() *Config {
	return &Config{
		Ceiling:       5,
		QueueDepth:    2048,
		BufferSize:    100,
		Backend:       "auto",
		LogLevel:      "info",
		StatsInterval: Duration{10 * time.Second},
		CPU:           -1,
	}
}

// LoadFromFile reads a JSON config on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the keys present in the JSON file at path.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PROBE_* variables read through getenv. Malformed numbers
// are reported rather than ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"PROBE_PORT", &c.Port},
		{"PROBE_CEILING", &c.Ceiling},
		{"PROBE_QUEUE_DEPTH", &c.QueueDepth},
		{"PROBE_BUFFER_SIZE", &c.BufferSize},
		{"PROBE_CPU", &c.CPU},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", api.ErrInvalidArgument, e.key, v)
		}
		*e.dst = n
	}
	if v := getenv("PROBE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("PROBE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ParseServerArgs applies the positional arguments "<port> [ceiling]".
func (c *Config) ParseServerArgs(args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("%w: expected <port> [ceiling], got %d arguments", api.ErrInvalidArgument, len(args))
	}
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: port %q is not a number", api.ErrInvalidArgument, args[0])
		}
		c.Port = n
	}
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: ceiling %q is not a number", api.ErrInvalidArgument, args[1])
		}
		c.Ceiling = n
	}
	return nil
}

// Validate checks ranges. Port and ceiling must both lie in 1..65535.
func (c *Config) Validate() error {
	var errs []string
	if c.Port < 1 || c.Port > MaxPort {
		errs = append(errs, fmt.Sprintf("port %d out of range 1-%d", c.Port, MaxPort))
	}
	if c.Ceiling < 1 || c.Ceiling > MaxCeiling {
		errs = append(errs, fmt.Sprintf("ceiling %d out of range 1-%d", c.Ceiling, MaxCeiling))
	}
	if c.QueueDepth < 1 {
		errs = append(errs, fmt.Sprintf("queue depth %d must be positive", c.QueueDepth))
	}
	if c.BufferSize < 1 {
		errs = append(errs, fmt.Sprintf("buffer size %d must be positive", c.BufferSize))
	}
	switch c.Backend {
	case "", "auto", "uring", "proactor":
	default:
		errs = append(errs, fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.CPU < -1 {
		errs = append(errs, fmt.Sprintf("cpu %d must be -1 or a cpu index", c.CPU))
	}
	if c.StatsInterval.Duration < 0 {
		errs = append(errs, "stats interval must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", api.ErrInvalidArgument, strings.Join(errs, "; "))
	}
	return nil
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
