// File: internal/transport/feature_detect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backend selection and runtime io_uring detection.

package transport

import (
	"fmt"
	"net"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/api"
)

// Backend names a completion-queue implementation.
type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendUring    Backend = "uring"
	BackendProactor Backend = "proactor"
)

// ParseBackend validates a backend name. The empty string means auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendUring, BackendProactor:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown backend %q", api.ErrInvalidArgument, s)
	}
}

// Options configures a backend.
type Options struct {
	Port   int // 0 picks an ephemeral port
	Depth  int // submission queue depth
	Logger zerolog.Logger
}

// Queue is a listening completion queue.
type Queue interface {
	api.CompletionQueue
	Addr() net.Addr
	Backend() Backend
}

// HasIoUringSupport reports whether the running kernel accepts io_uring
// setup. The Linux build replaces it with a real probe.
var HasIoUringSupport = func() bool {
	return false
}

// RuntimeTransportSelector returns the best available backend for the
// current platform.
func RuntimeTransportSelector() Backend {
	if runtime.GOOS == "linux" && HasIoUringSupport() {
		return BackendUring
	}
	return BackendProactor
}

// Open binds the listening socket on all IPv4 interfaces and returns the
// selected backend. Auto prefers io_uring and falls back to the proactor;
// an explicit uring request fails instead.
func Open(b Backend, opts Options) (Queue, error) {
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", api.ErrInvalidArgument, opts.Port)
	}
	if opts.Depth <= 0 {
		return nil, fmt.Errorf("%w: queue depth must be positive, got %d", api.ErrInvalidArgument, opts.Depth)
	}
	log := opts.Logger.With().Str("component", "transport").Logger()
	opts.Logger = log

	if b == BackendAuto || b == "" {
		if RuntimeTransportSelector() == BackendUring {
			q, err := NewUring(opts)
			if err == nil {
				return q, nil
			}
			log.Warn().Err(err).Msg("io_uring setup failed, falling back to proactor")
		}
		b = BackendProactor
	}
	switch b {
	case BackendUring:
		q, err := NewUring(opts)
		if err != nil {
			return nil, err
		}
		return q, nil
	case BackendProactor:
		q, err := NewProactor(opts)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", api.ErrInvalidArgument, b)
	}
}
