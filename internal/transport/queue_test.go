//go:build !windows

package transport_test

import (
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/internal/transport"
)

func waitCompletion(t *testing.T, q transport.Queue) api.Completion {
	t.Helper()
	type result struct {
		c   api.Completion
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := q.Wait()
		ch <- result{c, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
		return api.Completion{}
	}
}

func dialQueue(t *testing.T, q transport.Queue) net.Conn {
	t.Helper()
	port := q.Addr().(*net.TCPAddr).Port
	conn, err := net.DialTimeout("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// exerciseQueue runs accept, read, write, EOF and close through q.
func exerciseQueue(t *testing.T, q transport.Queue) {
	require.NoError(t, q.Submit(api.Op{Kind: api.OpAccept, Tag: 1}))
	conn := dialQueue(t, q)

	acc := waitCompletion(t, q)
	require.NoError(t, acc.Err)
	require.Equal(t, uint64(1), acc.Tag)
	require.NotEqual(t, api.NoHandle, acc.Handle)
	h := acc.Handle

	buf := make([]byte, 16)
	require.NoError(t, q.Submit(api.Op{Kind: api.OpRead, Handle: h, Buf: buf, Tag: 2}))
	_, err := conn.Write([]byte("ping"))
	require.NoError(t, err)
	rd := waitCompletion(t, q)
	require.Equal(t, uint64(2), rd.Tag)
	require.NoError(t, rd.Err)
	assert.Equal(t, "ping", string(buf[:rd.Res]))

	require.NoError(t, q.Submit(api.Op{Kind: api.OpWrite, Handle: h, Buf: []byte("pong"), Tag: 3}))
	wr := waitCompletion(t, q)
	require.Equal(t, uint64(3), wr.Tag)
	require.NoError(t, wr.Err)
	assert.Equal(t, 4, wr.Res)

	got := make([]byte, 4)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(got))

	// orderly close from the peer reads as zero bytes
	require.NoError(t, q.Submit(api.Op{Kind: api.OpRead, Handle: h, Buf: buf, Tag: 4}))
	require.NoError(t, conn.Close())
	eof := waitCompletion(t, q)
	require.Equal(t, uint64(4), eof.Tag)
	assert.NoError(t, eof.Err)
	assert.Zero(t, eof.Res)

	require.NoError(t, q.Close(h))
	assert.ErrorIs(t, q.Close(h), api.ErrUnknownHandle)
	assert.ErrorIs(t, q.Submit(api.Op{Kind: api.OpRead, Handle: h, Buf: buf, Tag: 5}), api.ErrUnknownHandle)

	q.Wake()
	w := waitCompletion(t, q)
	assert.Equal(t, api.WakeTag, w.Tag)

	require.NoError(t, q.Shutdown())
	assert.ErrorIs(t, q.Submit(api.Op{Kind: api.OpAccept, Tag: 6}), api.ErrQueueClosed)
	assert.NoError(t, q.Shutdown())
}

func TestProactorQueue(t *testing.T) {
	q, err := transport.NewProactor(transport.Options{Depth: 64, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer q.Shutdown()
	assert.Equal(t, transport.BackendProactor, q.Backend())
	exerciseQueue(t, q)
}

func TestOpenProactorOnEphemeralPort(t *testing.T) {
	q, err := transport.Open(transport.BackendProactor, transport.Options{Depth: 8, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer q.Shutdown()
	assert.NotZero(t, q.Addr().(*net.TCPAddr).Port)
}
