//go:build !linux
// +build !linux

// File: protocol/clock_other.go
// Author: momentics <momentics@gmail.com>

package protocol

import "time"

// MonotonicNow falls back to the wall clock, which is the only clock two
// processes can share portably. Latency stays meaningful on one host.
func MonotonicNow() int64 {
	return time.Now().UnixNano()
}
