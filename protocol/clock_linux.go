//go:build linux
// +build linux

// File: protocol/clock_linux.go
// Author: momentics <momentics@gmail.com>
//
// CLOCK_MONOTONIC shared by every process on the host, so the server's probe
// timestamps compare directly with the client's receive time.

package protocol

import (
	"time"

	"golang.org/x/sys/unix"
)

// MonotonicNow returns CLOCK_MONOTONIC in nanoseconds.
func MonotonicNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Now().UnixNano()
	}
	return ts.Nano()
}
