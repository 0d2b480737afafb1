// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/control"
	"github.com/momentics/hioload-probe/internal/transport"
	"github.com/momentics/hioload-probe/reactor"
)

// Server is the facade over one backend, one reactor and the control layer.
type Server struct {
	store   *control.ConfigStore
	queue   transport.Queue
	reactor *reactor.Reactor

	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
	usage   *control.ResourceSampler
	log     zerolog.Logger
	clock   func() int64

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  bool // backend released; Run becomes a no-op
	stopOnce sync.Once
	stopErr  error
}
