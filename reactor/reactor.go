// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion reactor: one goroutine drains the completion queue, interprets
// each completion through its operation record and submits follow-up work.
// When nothing is ready it manufactures probe writes before blocking.

package reactor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
)

// Reactor owns the connection registry and every operation record. All of
// that state is touched only by the goroutine running Run (or Tick).
type Reactor struct {
	q        api.CompletionQueue
	reg      *Registry
	ops      *records
	acceptID pool.SlabID

	ceiling atomic.Int64
	now     func() int64
	log     zerolog.Logger
	stats   *Stats

	// backlog holds record ids whose submission hit ErrQueueFull.
	backlog *queue.Queue
	// synthetic holds completions produced locally for failed submissions.
	synthetic *queue.Queue

	running atomic.Bool
	armed   bool
	// closed is set once a submission reports api.ErrQueueClosed.
	closed bool
}

// New builds a reactor on top of q.
func New(q api.CompletionQueue, cfg Config, opts ...Option) (*Reactor, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil completion queue", api.ErrInvalidArgument)
	}
	if cfg.Ceiling <= 0 {
		return nil, fmt.Errorf("%w: ceiling must be positive, got %d", api.ErrInvalidArgument, cfg.Ceiling)
	}
	if cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("%w: buffer size must be positive, got %d", api.ErrInvalidArgument, cfg.BufferSize)
	}
	r := &Reactor{
		q:         q,
		reg:       NewRegistry(),
		ops:       newRecords(cfg.BufferSize, cfg.QueueDepth),
		now:       defaultClock,
		log:       zerolog.Nop(),
		stats:     &Stats{},
		backlog:   queue.New(),
		synthetic: queue.New(),
	}
	r.ceiling.Store(int64(cfg.Ceiling))
	r.acceptID = r.ops.newAccept()
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// SetCeiling changes the per-connection probe ceiling. Safe for concurrent
// use; takes effect on the next probe pass. Connections already above a
// lowered ceiling drain down without receiving new probes.
func (r *Reactor) SetCeiling(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: ceiling must be positive, got %d", api.ErrInvalidArgument, n)
	}
	r.ceiling.Store(int64(n))
	return nil
}

// Ceiling returns the current probe ceiling.
func (r *Reactor) Ceiling() int { return int(r.ceiling.Load()) }

// Stats exposes the reactor counters.
func (r *Reactor) Stats() *Stats { return r.stats }

// Registry exposes the connection registry. It must only be read from the
// reactor goroutine or while the reactor is not running.
func (r *Reactor) Registry() *Registry { return r.reg }

// Run drives the reactor until ctx is done, the completion queue is closed
// or a fatal error occurs. The first two are clean stops and return nil.
func (r *Reactor) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return api.ErrAlreadyRunning
	}
	defer r.running.Store(false)

	stop := context.AfterFunc(ctx, r.q.Wake)
	defer stop()

	r.log.Info().Int("ceiling", r.Ceiling()).Msg("reactor started")
	for {
		if ctx.Err() != nil {
			r.log.Info().Int("active", r.reg.Len()).Msg("reactor stopped")
			return nil
		}
		if err := r.tick(); err != nil {
			if errors.Is(err, api.ErrQueueClosed) {
				r.log.Info().Int("active", r.reg.Len()).Msg("completion queue closed, reactor stopped")
				return nil
			}
			r.log.Error().Err(err).Msg("reactor failed")
			return err
		}
	}
}

// Tick runs a single scheduling pass: retry the backlog, then dispatch one
// ready completion, or generate probes, or block for the next completion.
// It must not be called while Run is active. A closed queue is reported as
// api.ErrQueueClosed.
func (r *Reactor) Tick() error {
	if !r.running.CompareAndSwap(false, true) {
		return api.ErrAlreadyRunning
	}
	defer r.running.Store(false)
	return r.tick()
}

func (r *Reactor) tick() error {
	if !r.armed {
		r.armed = true
		r.submit(r.acceptID)
	}
	r.flushBacklog()
	if r.closed {
		return api.ErrQueueClosed
	}

	c, ok, err := r.poll()
	if err != nil {
		return fmt.Errorf("reactor: poll: %w", err)
	}
	if !ok {
		if r.broadcastProbes() > 0 {
			r.stats.LiveRecords.Store(int64(r.ops.live()))
			return nil
		}
		r.stats.Waits.Add(1)
		if c, err = r.q.Wait(); err != nil {
			return fmt.Errorf("reactor: wait: %w", err)
		}
	}
	if err := r.dispatch(c); err != nil {
		return err
	}
	if r.closed {
		return api.ErrQueueClosed
	}
	return nil
}

// poll returns locally produced completions first, then asks the queue.
func (r *Reactor) poll() (api.Completion, bool, error) {
	if r.synthetic.Length() > 0 {
		return r.synthetic.Remove().(api.Completion), true, nil
	}
	return r.q.Peek()
}

func (r *Reactor) dispatch(c api.Completion) error {
	if c.Tag == api.WakeTag {
		return nil
	}
	id := pool.SlabID(c.Tag)
	rec, ok := r.ops.get(id)
	if !ok {
		r.stats.Stale.Add(1)
		r.log.Debug().Uint64("tag", c.Tag).Msg("completion for unknown record")
		return nil
	}

	switch rec.kind {
	case kindAccept:
		if err := r.onAccept(id, c); err != nil {
			return err
		}
	case kindDataIO:
		if rec.writing {
			r.onSelfEcho(id, rec, c)
		} else {
			r.onRead(id, rec, c)
		}
	case kindEchoWrite:
		r.onEchoWrite(id, rec, c)
	case kindProbeWrite:
		r.onProbeWrite(id, rec, c)
	}
	r.stats.LiveRecords.Store(int64(r.ops.live()))
	return nil
}

// submit hands the record's next operation to the queue. Submissions queue
// up behind an existing backlog so per-connection order is kept.
func (r *Reactor) submit(id pool.SlabID) {
	rec, ok := r.ops.get(id)
	if !ok {
		return
	}
	if r.backlog.Length() > 0 || !r.trySubmit(id, rec) {
		r.backlog.Add(id)
	}
}

// trySubmit reports false only when the queue is full. A closed queue marks
// the reactor stopped. Any other submission error is turned into a synthetic
// completion and dispatched like a real one.
func (r *Reactor) trySubmit(id pool.SlabID, rec *record) bool {
	op := rec.op(id)
	err := r.q.Submit(op)
	switch {
	case err == nil:
		return true
	case errors.Is(err, api.ErrQueueFull):
		r.stats.QueueFull.Add(1)
		return false
	case errors.Is(err, api.ErrQueueClosed):
		r.closed = true
		return true
	default:
		r.synthetic.Add(api.Completion{Tag: op.Tag, Kind: op.Kind, Handle: op.Handle, Err: err})
		return true
	}
}

func (r *Reactor) flushBacklog() {
	for r.backlog.Length() > 0 {
		id := r.backlog.Peek().(pool.SlabID)
		rec, ok := r.ops.get(id)
		if ok && !r.trySubmit(id, rec) {
			return
		}
		r.backlog.Remove()
	}
}

// teardown unregisters h and closes its socket. Only the first call for a
// handle has any effect; records still in flight free themselves when their
// completions arrive.
func (r *Reactor) teardown(h api.Handle, cause string, err error) {
	if !r.reg.Unregister(h) {
		return
	}
	if cerr := r.q.Close(h); cerr != nil {
		r.log.Debug().Err(cerr).Uint64("handle", uint64(h)).Msg("close failed")
	}
	r.stats.TornDown.Add(1)
	r.stats.Active.Store(int64(r.reg.Len()))
	r.log.Debug().
		Uint64("handle", uint64(h)).
		Str("cause", cause).
		AnErr("error", err).
		Msg("client disconnected")
}

// failed reports whether c ends its connection: an error or a zero-byte
// transfer.
func failed(c api.Completion) bool {
	return c.Err != nil || c.Res <= 0
}
