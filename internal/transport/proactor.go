//go:build !windows

// File: internal/transport/proactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable completion queue on top of gaio. A pump goroutine moves gaio
// results into an SPSC ring; a dedicated acceptor goroutine serves the single
// outstanding accept. Handles are assigned on the reactor goroutine.

package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xtaci/gaio"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
)

// opCtx travels through gaio as the request context.
type opCtx struct {
	tag    uint64
	handle api.Handle
}

type acceptResult struct {
	tag  uint64
	conn net.Conn
	err  error
}

// Proactor is the gaio backend. Submit, Peek, Wait and Close belong to the
// reactor goroutine; Wake and Shutdown may be called from anywhere.
type Proactor struct {
	w     *gaio.Watcher
	ln    net.Listener
	depth int
	log   zerolog.Logger

	ring   *pool.Ring[api.Completion]
	notify chan struct{}

	acceptReq chan uint64
	accepted  chan acceptResult

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	conns    map[api.Handle]net.Conn
	next     api.Handle
	inflight int
}

// NewProactor listens on opts.Port and starts the pump and acceptor.
func NewProactor(opts Options) (*Proactor, error) {
	ln, err := net.Listen("tcp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(opts.Port)))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", opts.Port, err)
	}
	w, err := gaio.NewWatcher()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("gaio watcher: %w", err)
	}
	p := &Proactor{
		w:         w,
		ln:        ln,
		depth:     opts.Depth,
		log:       opts.Logger,
		ring:      pool.NewRing[api.Completion](opts.Depth),
		notify:    make(chan struct{}, 1),
		acceptReq: make(chan uint64, 1),
		accepted:  make(chan acceptResult, 1),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		conns:     make(map[api.Handle]net.Conn),
	}
	p.wg.Add(2)
	go p.pump()
	go p.acceptLoop()
	p.log.Info().Str("addr", ln.Addr().String()).Int("depth", opts.Depth).Msg("proactor backend listening")
	return p, nil
}

// Addr returns the bound listening address.
func (p *Proactor) Addr() net.Addr { return p.ln.Addr() }

// Backend returns BackendProactor.
func (p *Proactor) Backend() Backend { return BackendProactor }

func (p *Proactor) pump() {
	defer p.wg.Done()
	for {
		results, err := p.w.WaitIO()
		if err != nil {
			return
		}
		for _, res := range results {
			ctx, ok := res.Context.(opCtx)
			if !ok {
				continue
			}
			c := api.Completion{Tag: ctx.tag, Handle: ctx.handle, Res: res.Size}
			if res.Operation == gaio.OpRead {
				c.Kind = api.OpRead
			} else {
				c.Kind = api.OpWrite
			}
			switch {
			case res.Error == nil:
			case errors.Is(res.Error, io.EOF):
				c.Res = 0
			default:
				c.Res = -1
				c.Err = res.Error
			}
			// in-flight operations never exceed the ring capacity
			for !p.ring.Enqueue(c) {
				select {
				case <-p.done:
					return
				default:
				}
			}
		}
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
}

func (p *Proactor) acceptLoop() {
	defer p.wg.Done()
	for {
		var tag uint64
		select {
		case tag = <-p.acceptReq:
		case <-p.done:
			return
		}
		conn, err := p.ln.Accept()
		select {
		case p.accepted <- acceptResult{tag: tag, conn: conn, err: err}:
		case <-p.done:
			if conn != nil {
				conn.Close()
			}
			return
		}
	}
}

// Submit implements api.CompletionQueue.
func (p *Proactor) Submit(op api.Op) error {
	select {
	case <-p.done:
		return api.ErrQueueClosed
	default:
	}
	if op.Kind == api.OpAccept {
		select {
		case p.acceptReq <- op.Tag:
			return nil
		default:
			return api.ErrQueueFull
		}
	}

	conn, ok := p.conns[op.Handle]
	if !ok {
		return api.ErrUnknownHandle
	}
	if p.inflight >= p.ring.Cap() {
		return api.ErrQueueFull
	}
	ctx := opCtx{tag: op.Tag, handle: op.Handle}
	var err error
	switch op.Kind {
	case api.OpRead:
		err = p.w.Read(ctx, conn, op.Buf)
	case api.OpWrite:
		err = p.w.Write(ctx, conn, op.Buf)
	default:
		return fmt.Errorf("%w: op kind %d", api.ErrInvalidArgument, op.Kind)
	}
	if err != nil {
		return fmt.Errorf("gaio %s: %w", op.Kind, err)
	}
	p.inflight++
	return nil
}

// Peek implements api.CompletionQueue.
func (p *Proactor) Peek() (api.Completion, bool, error) {
	if c, ok := p.ring.Dequeue(); ok {
		p.inflight--
		return c, true, nil
	}
	select {
	case a := <-p.accepted:
		return p.onAccepted(a), true, nil
	case <-p.done:
		return api.Completion{}, false, api.ErrQueueClosed
	default:
		return api.Completion{}, false, nil
	}
}

// Wait implements api.CompletionQueue.
func (p *Proactor) Wait() (api.Completion, error) {
	for {
		c, ok, err := p.Peek()
		if err != nil || ok {
			return c, err
		}
		select {
		case <-p.notify:
		case a := <-p.accepted:
			return p.onAccepted(a), nil
		case <-p.wake:
			return api.Completion{Tag: api.WakeTag}, nil
		case <-p.done:
			return api.Completion{}, api.ErrQueueClosed
		}
	}
}

func (p *Proactor) onAccepted(a acceptResult) api.Completion {
	c := api.Completion{Tag: a.tag, Kind: api.OpAccept}
	if a.err != nil {
		c.Res = -1
		c.Err = classifyAccept(a.err)
		return c
	}
	if tc, ok := a.conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	p.next++
	p.conns[p.next] = a.conn
	c.Handle = p.next
	c.Res = 1
	return c
}

// Wake implements api.CompletionQueue.
func (p *Proactor) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close releases the connection; gaio fails its pending requests.
func (p *Proactor) Close(h api.Handle) error {
	conn, ok := p.conns[h]
	if !ok {
		return api.ErrUnknownHandle
	}
	delete(p.conns, h)
	return p.w.Free(conn)
}

// Shutdown stops the goroutines and releases the listener, every open
// connection and the watcher. It must not run concurrently with Wait.
func (p *Proactor) Shutdown() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.ln.Close()
		for h, conn := range p.conns {
			_ = p.w.Free(conn)
			delete(p.conns, h)
		}
		if werr := p.w.Close(); err == nil {
			err = werr
		}
		p.wg.Wait()
		p.log.Debug().Msg("proactor backend stopped")
	})
	return err
}

var _ Queue = (*Proactor)(nil)
