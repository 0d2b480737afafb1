//go:build linux

// File: internal/transport/uring_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// io_uring completion queue. Accept, recv and send go straight into the
// submission ring; an eventfd read tagged api.WakeTag lets other goroutines
// interrupt a blocked Wait.

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"syscall"

	"github.com/godzie44/go-uring/uring"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-probe/api"
)

func init() {
	HasIoUringSupport = func() bool {
		r, err := uring.New(2)
		if err != nil {
			return false
		}
		r.Close()
		return true
	}
}

// Uring is the io_uring backend. Everything except Wake must be called from
// the reactor goroutine.
type Uring struct {
	ring  *uring.Ring
	lfd   int
	efd   int
	addr  net.Addr
	depth int
	log   zerolog.Logger

	wakeBuf [8]byte

	conns    map[api.Handle]int
	next     api.Handle
	inflight map[uint64]api.Op // also pins buffers the kernel writes into
	dirty    bool
	closed   atomic.Bool
}

// NewUring binds the listener and sets up a ring of opts.Depth entries.
func NewUring(opts Options) (*Uring, error) {
	lfd, addr, err := listenTCP(opts.Port)
	if err != nil {
		return nil, err
	}
	ring, err := uring.New(uint32(opts.Depth))
	if err != nil {
		unix.Close(lfd)
		return nil, fmt.Errorf("io_uring init: %w", err)
	}
	efd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		ring.Close()
		unix.Close(lfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	u := &Uring{
		ring:     ring,
		lfd:      lfd,
		efd:      efd,
		addr:     addr,
		depth:    opts.Depth,
		log:      opts.Logger,
		conns:    make(map[api.Handle]int),
		inflight: make(map[uint64]api.Op, opts.Depth),
	}
	if err := u.armWake(); err != nil {
		u.Shutdown()
		return nil, err
	}
	u.log.Info().Str("addr", addr.String()).Int("depth", opts.Depth).Msg("io_uring backend listening")
	return u, nil
}

// Addr returns the bound listening address.
func (u *Uring) Addr() net.Addr { return u.addr }

// Backend returns BackendUring.
func (u *Uring) Backend() Backend { return BackendUring }

func (u *Uring) armWake() error {
	return u.queue(uring.Read(uintptr(u.efd), u.wakeBuf[:], 0), api.WakeTag)
}

// queue places one SQE in the ring, flushing once if the ring is full.
func (u *Uring) queue(op uring.Operation, tag uint64) error {
	if err := u.ring.QueueSQE(op, 0, tag); err != nil {
		if _, ferr := u.ring.Submit(); ferr != nil {
			return fmt.Errorf("io_uring submit: %w", ferr)
		}
		if err = u.ring.QueueSQE(op, 0, tag); err != nil {
			return fmt.Errorf("%w: %w", api.ErrQueueFull, err)
		}
	}
	u.dirty = true
	return nil
}

// Submit implements api.CompletionQueue.
func (u *Uring) Submit(op api.Op) error {
	if u.closed.Load() {
		return api.ErrQueueClosed
	}
	// the completion ring holds twice the submission depth, one slot of
	// which belongs to the wake read
	if len(u.inflight) >= 2*u.depth-1 {
		return api.ErrQueueFull
	}

	var sqe uring.Operation
	switch op.Kind {
	case api.OpAccept:
		sqe = uring.Accept(uintptr(u.lfd), uint32(unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC))
	case api.OpRead, api.OpWrite:
		fd, ok := u.conns[op.Handle]
		if !ok {
			return api.ErrUnknownHandle
		}
		if op.Kind == api.OpRead {
			sqe = uring.Recv(uintptr(fd), op.Buf, 0)
		} else {
			sqe = uring.Send(uintptr(fd), op.Buf, uint32(unix.MSG_NOSIGNAL))
		}
	default:
		return fmt.Errorf("%w: op kind %d", api.ErrInvalidArgument, op.Kind)
	}

	if err := u.queue(sqe, op.Tag); err != nil {
		return err
	}
	u.inflight[op.Tag] = op
	return nil
}

func (u *Uring) flush() error {
	if !u.dirty {
		return nil
	}
	for {
		_, err := u.ring.Submit()
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("io_uring submit: %w", err)
		}
		u.dirty = false
		return nil
	}
}

// Peek implements api.CompletionQueue.
func (u *Uring) Peek() (api.Completion, bool, error) {
	if u.closed.Load() {
		return api.Completion{}, false, api.ErrQueueClosed
	}
	if err := u.flush(); err != nil {
		return api.Completion{}, false, err
	}
	cqe, err := u.ring.PeekCQE()
	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) || (err == nil && cqe == nil) {
		return api.Completion{}, false, nil
	}
	if err != nil {
		return api.Completion{}, false, fmt.Errorf("io_uring peek: %w", err)
	}
	return u.complete(cqe), true, nil
}

// Wait implements api.CompletionQueue.
func (u *Uring) Wait() (api.Completion, error) {
	for {
		if u.closed.Load() {
			return api.Completion{}, api.ErrQueueClosed
		}
		if err := u.flush(); err != nil {
			return api.Completion{}, err
		}
		cqe, err := u.ring.WaitCQEvents(1)
		if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) || (err == nil && cqe == nil) {
			continue
		}
		if err != nil {
			return api.Completion{}, fmt.Errorf("io_uring wait: %w", err)
		}
		return u.complete(cqe), nil
	}
}

func (u *Uring) complete(cqe *uring.CQEvent) api.Completion {
	tag, res, cerr := cqe.UserData, int(cqe.Res), cqe.Error()
	u.ring.SeenCQE(cqe)

	if tag == api.WakeTag {
		if err := u.armWake(); err != nil {
			u.log.Error().Err(err).Msg("re-arm wake read failed")
		}
		return api.Completion{Tag: api.WakeTag}
	}

	op, ok := u.inflight[tag]
	delete(u.inflight, tag)
	c := api.Completion{Tag: tag, Kind: op.Kind, Handle: op.Handle, Res: res, Err: cerr}
	if !ok || op.Kind != api.OpAccept {
		return c
	}
	if cerr != nil {
		c.Err = classifyAccept(cerr)
		return c
	}
	u.next++
	c.Handle = u.next
	u.conns[c.Handle] = res
	_ = unix.SetsockoptInt(res, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return c
}

// Wake implements api.CompletionQueue. Safe for concurrent use.
func (u *Uring) Wake() {
	if u.closed.Load() {
		return
	}
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	_, _ = unix.Write(u.efd, one[:])
}

// Close shuts the connection down, which fails its outstanding operations,
// and releases the descriptor.
func (u *Uring) Close(h api.Handle) error {
	fd, ok := u.conns[h]
	if !ok {
		return api.ErrUnknownHandle
	}
	delete(u.conns, h)
	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	return unix.Close(fd)
}

// Shutdown releases the ring, the listener and every open connection. It
// must not run concurrently with Wait.
func (u *Uring) Shutdown() error {
	if !u.closed.CompareAndSwap(false, true) {
		return nil
	}
	for h, fd := range u.conns {
		unix.Close(fd)
		delete(u.conns, h)
	}
	_ = unix.Shutdown(u.lfd, unix.SHUT_RDWR)
	err := unix.Close(u.lfd)
	if cerr := u.ring.Close(); err == nil {
		err = cerr
	}
	unix.Close(u.efd)
	clear(u.inflight)
	return err
}

var _ Queue = (*Uring)(nil)
