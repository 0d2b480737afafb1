package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-probe/api"
)

func TestPinRejectsOutOfRange(t *testing.T) {
	_, err := Pin(-1)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestPinAndRestore(t *testing.T) {
	if runtime.GOOS != "linux" {
		_, err := Pin(0)
		assert.ErrorIs(t, err, api.ErrNotSupported)
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		before, err := current()
		if !assert.NoError(t, err) || !assert.NotEmpty(t, before) {
			return
		}

		unpin, err := Pin(before[0])
		if !assert.NoError(t, err) {
			return
		}
		cpus, err := current()
		assert.NoError(t, err)
		assert.Equal(t, []int{before[0]}, cpus)

		unpin()
		after, err := current()
		assert.NoError(t, err)
		assert.Equal(t, before, after)
	}()
	<-done
}
