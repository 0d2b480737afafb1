// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files guarded by build tags.

package affinity

import (
	"fmt"
	"runtime"

	"github.com/momentics/hioload-probe/api"
)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpuID. The returned function restores the previous mask and unlocks the
// thread; it must be called from the same goroutine.
func Pin(cpuID int) (func(), error) {
	if cpuID < 0 {
		return nil, fmt.Errorf("%w: cpu %d", api.ErrInvalidArgument, cpuID)
	}
	runtime.LockOSThread()
	prev, err := setAffinityPlatform(cpuID)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return func() {
		if restoreAffinityPlatform(prev) != nil {
			// leave the thread locked so the runtime discards it on exit
			return
		}
		runtime.UnlockOSThread()
	}, nil
}
