//go:build !windows

// File: internal/transport/errno.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-probe/api"
)

// IsTransientAccept reports whether an accept failure leaves the listener
// usable, so the accept should simply be submitted again.
func IsTransientAccept(errno unix.Errno) bool {
	switch errno {
	case unix.EINTR, unix.EAGAIN, unix.ECONNABORTED, unix.EPROTO,
		unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.ENOMEM:
		return true
	}
	return false
}

// classifyAccept wraps transient accept failures with api.ErrTemporary.
func classifyAccept(err error) error {
	if err == nil {
		return nil
	}
	var errno unix.Errno
	if errors.As(err, &errno) && IsTransientAccept(errno) {
		return fmt.Errorf("%w: %w", api.ErrTemporary, err)
	}
	return err
}
