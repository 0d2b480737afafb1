//go:build windows

// File: internal/transport/proactor_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"fmt"

	"github.com/momentics/hioload-probe/api"
)

// NewProactor is unavailable on Windows: gaio has no IOCP poller.
func NewProactor(Options) (Queue, error) {
	return nil, fmt.Errorf("%w: proactor backend requires a unix poller", api.ErrNotSupported)
}
