package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/internal/transport"
)

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]transport.Backend{
		"":         transport.BackendAuto,
		"auto":     transport.BackendAuto,
		"uring":    transport.BackendUring,
		"proactor": transport.BackendProactor,
	} {
		got, err := transport.ParseBackend(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := transport.ParseBackend("epoll")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestOpenRejectsBadOptions(t *testing.T) {
	_, err := transport.Open(transport.BackendAuto, transport.Options{Port: 70000, Depth: 8})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = transport.Open(transport.BackendAuto, transport.Options{Port: 0, Depth: 0})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = transport.Open("kqueue", transport.Options{Depth: 8})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestRuntimeTransportSelector(t *testing.T) {
	b := transport.RuntimeTransportSelector()
	if transport.HasIoUringSupport() {
		assert.Equal(t, transport.BackendUring, b)
	} else {
		assert.Equal(t, transport.BackendProactor, b)
	}
}
