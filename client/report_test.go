package client

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults(t *testing.T) []Result {
	t.Helper()
	a := ms(1, 2, 3)
	st, err := Compute(a)
	require.NoError(t, err)
	return []Result{
		{ID: 1, Samples: a, Stats: st},
		{ID: 2, Err: errors.New("connection reset by peer")},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleResults(t)))
	out := buf.String()
	assert.Contains(t, out, "Client 1 latency statistics:")
	assert.Contains(t, out, "  Median: 2ms")
	assert.Contains(t, out, "Client 2 latency statistics:\n  no samples\n  Ended early: connection reset by peer")
	assert.Contains(t, out, "All clients:")
	assert.Contains(t, out, "Histogram:")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults(t)))

	var rep jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))
	require.Len(t, rep.Clients, 2)
	require.NotNil(t, rep.Clients[0].Stats)
	assert.Equal(t, 3, rep.Clients[0].Stats.Count)
	assert.InDelta(t, 2000, rep.Clients[0].Stats.MedianUS, 1e-9)
	assert.Nil(t, rep.Clients[1].Stats)
	assert.Equal(t, "connection reset by peer", rep.Clients[1].Error)
	require.NotNil(t, rep.Overall)
	assert.InDelta(t, 3000, rep.Overall.MaxUS, 1e-9)
}

func TestOverallEmpty(t *testing.T) {
	_, err := Overall([]Result{{ID: 1}})
	assert.ErrorIs(t, err, ErrNoSamples)
}
