package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingRoundsUpCapacity(t *testing.T) {
	assert.Equal(t, 8, NewRing[int](5).Cap())
	assert.Equal(t, 1, NewRing[int](0).Cap())
	assert.Equal(t, 16, NewRing[int](16).Cap())
}

func TestRingFIFOAndFull(t *testing.T) {
	r := NewRing[int](4)
	for i := range 4 {
		require.True(t, r.Enqueue(i))
	}
	assert.False(t, r.Enqueue(99))
	assert.Equal(t, 4, r.Len())

	for i := range 4 {
		v, ok := r.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := r.Dequeue()
	assert.False(t, ok)
}

func TestRingSPSC(t *testing.T) {
	const n = 10000
	r := NewRing[int](64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if r.Enqueue(i) {
				i++
			}
		}
	}()

	for want := 0; want < n; {
		if v, ok := r.Dequeue(); ok {
			require.Equal(t, want, v)
			want++
		}
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}
