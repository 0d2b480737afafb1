//go:build !linux

// File: internal/transport/uring_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"fmt"

	"github.com/momentics/hioload-probe/api"
)

// NewUring is unavailable outside Linux.
func NewUring(Options) (Queue, error) {
	return nil, fmt.Errorf("%w: io_uring requires linux", api.ErrNotSupported)
}
