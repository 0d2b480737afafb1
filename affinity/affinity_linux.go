//go:build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type mask = unix.CPUSet

// setAffinityPlatform binds the calling thread to cpuID and returns the mask
// it had before.
func setAffinityPlatform(cpuID int) (mask, error) {
	var prev, set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return prev, fmt.Errorf("affinity: sched_getaffinity: %w", err)
	}
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return prev, fmt.Errorf("affinity: sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return prev, nil
}

func restoreAffinityPlatform(prev mask) error {
	return unix.SchedSetaffinity(0, &prev)
}

// current reports the CPUs the calling thread may run on.
func current() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}
	var cpus []int
	for i := 0; i < len(set)*64; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
