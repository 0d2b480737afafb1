package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/protocol"
)

func TestProbeRoundTrip(t *testing.T) {
	for _, ts := range []int64{0, 1, -1, 1 << 40, -(1 << 62)} {
		buf := make([]byte, protocol.ProbeSize)
		protocol.EncodeProbe(buf, ts)
		got, err := protocol.DecodeProbe(buf)
		require.NoError(t, err)
		assert.Equal(t, ts, got)
	}
}

func TestProbeIsLittleEndian(t *testing.T) {
	buf := protocol.AppendProbe(nil, 0x0102030405060708)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, buf)
}

func TestDecodeShortProbe(t *testing.T) {
	_, err := protocol.DecodeProbe([]byte{1, 2, 3})
	assert.ErrorIs(t, err, protocol.ErrShortProbe)
}

func TestMonotonicNowAdvances(t *testing.T) {
	a := protocol.MonotonicNow()
	b := protocol.MonotonicNow()
	assert.GreaterOrEqual(t, b, a)
}
