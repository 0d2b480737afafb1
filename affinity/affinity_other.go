//go:build !linux

// File: affinity/affinity_other.go
// Author: momentics <momentics@gmail.com>

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-probe/api"
)

type mask struct{}

func setAffinityPlatform(cpuID int) (mask, error) {
	return mask{}, fmt.Errorf("affinity: %w on this platform", api.ErrNotSupported)
}

func restoreAffinityPlatform(mask) error { return api.ErrNotSupported }

func current() ([]int, error) { return nil, api.ErrNotSupported }
