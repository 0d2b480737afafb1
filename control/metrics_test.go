package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistryPublish(t *testing.T) {
	mr := NewMetricsRegistry()
	assert.True(t, mr.Updated().IsZero())

	mr.Set("uptime", 3)
	mr.Publish("reactor", map[string]any{"active": 2, "probes_sent": 10})

	v, ok := mr.Get("reactor.active")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Len(t, mr.GetSnapshot(), 3)
	assert.False(t, mr.Updated().IsZero())

	out, err := mr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"uptime":3,"reactor.active":2,"reactor.probes_sent":10}`, string(out))
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("reactor.ceiling", func() any { return 5 })

	state := dp.DumpState()
	assert.Equal(t, 5, state["reactor.ceiling"])
	assert.Contains(t, state, "platform.cpus")
	assert.Contains(t, dp.Names(), "reactor.ceiling")
}
