// Package fake
// Author: momentics <momentics@gmail.com>
//
// Deterministic completion queue for driving the reactor in tests.

package fake

import (
	"errors"
	"slices"
	"sync"

	"github.com/momentics/hioload-probe/api"
)

// ErrWouldBlock is returned by Wait on a non-blocking Queue with nothing ready.
var ErrWouldBlock = errors.New("fake: no completion ready")

// Queue is an in-memory api.CompletionQueue. Submitted operations stay
// pending until the test completes them.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending []api.Op
	ready   []api.Completion
	closed  map[api.Handle]int

	capacity  int
	submitErr func(api.Op) error
	blocking  bool
	woken     bool
	shut      bool

	submits int
	waits   int
}

// NewQueue creates an unbounded, non-blocking fake queue.
func NewQueue() *Queue {
	q := &Queue{closed: make(map[api.Handle]int)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// SetCapacity bounds the number of pending operations. Zero means unbounded.
func (q *Queue) SetCapacity(n int) {
	q.mu.Lock()
	q.capacity = n
	q.mu.Unlock()
}

// SetBlocking makes Wait block until a completion, Wake or Shutdown.
func (q *Queue) SetBlocking(b bool) {
	q.mu.Lock()
	q.blocking = b
	q.mu.Unlock()
}

// FailSubmit installs a hook that can reject submissions.
func (q *Queue) FailSubmit(fn func(api.Op) error) {
	q.mu.Lock()
	q.submitErr = fn
	q.mu.Unlock()
}

// Submit implements api.CompletionQueue.
func (q *Queue) Submit(op api.Op) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shut {
		return api.ErrQueueClosed
	}
	if q.submitErr != nil {
		if err := q.submitErr(op); err != nil {
			return err
		}
	}
	if q.capacity > 0 && len(q.pending) >= q.capacity {
		return api.ErrQueueFull
	}
	q.pending = append(q.pending, op)
	q.submits++
	return nil
}

// Peek implements api.CompletionQueue.
func (q *Queue) Peek() (api.Completion, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ready) == 0 {
		return api.Completion{}, false, nil
	}
	return q.pop(), true, nil
}

// Wait implements api.CompletionQueue.
func (q *Queue) Wait() (api.Completion, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waits++
	for {
		switch {
		case len(q.ready) > 0:
			return q.pop(), nil
		case q.woken:
			q.woken = false
			return api.Completion{Tag: api.WakeTag}, nil
		case q.shut:
			return api.Completion{}, api.ErrQueueClosed
		case !q.blocking:
			return api.Completion{}, ErrWouldBlock
		}
		q.cond.Wait()
	}
}

// Wake implements api.CompletionQueue.
func (q *Queue) Wake() {
	q.mu.Lock()
	q.woken = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Close implements api.CompletionQueue. Pending operations stay pending; the
// test decides how they complete.
func (q *Queue) Close(h api.Handle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed[h]++
	return nil
}

// Shutdown implements api.CompletionQueue.
func (q *Queue) Shutdown() error {
	q.mu.Lock()
	q.shut = true
	q.mu.Unlock()
	q.cond.Broadcast()
	return nil
}

func (q *Queue) pop() api.Completion {
	c := q.ready[0]
	q.ready = q.ready[1:]
	return c
}

// Pending returns a copy of the operations not yet completed, in submission
// order.
func (q *Queue) Pending() []api.Op {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.pending)
}

// Find returns the pending operations matching fn.
func (q *Queue) Find(fn func(api.Op) bool) []api.Op {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []api.Op
	for _, op := range q.pending {
		if fn(op) {
			out = append(out, op)
		}
	}
	return out
}

// Writes returns the pending writes to h.
func (q *Queue) Writes(h api.Handle) []api.Op {
	return q.Find(func(op api.Op) bool { return op.Kind == api.OpWrite && op.Handle == h })
}

// ReadPending reports whether a read is outstanding for h.
func (q *Queue) ReadPending(h api.Handle) bool {
	return len(q.Find(func(op api.Op) bool { return op.Kind == api.OpRead && op.Handle == h })) > 0
}

// Complete retires the pending op with the given result. It reports false if
// no such op is pending.
func (q *Queue) Complete(op api.Op, res int, err error) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.IndexFunc(q.pending, func(p api.Op) bool { return p.Tag == op.Tag && p.Kind == op.Kind })
	if i < 0 {
		return false
	}
	q.pending = slices.Delete(q.pending, i, i+1)
	q.ready = append(q.ready, api.Completion{Tag: op.Tag, Kind: op.Kind, Handle: op.Handle, Res: res, Err: err})
	q.cond.Broadcast()
	return true
}

// Accept completes the pending accept with a new connection h.
func (q *Queue) Accept(h api.Handle) bool {
	ops := q.Find(func(op api.Op) bool { return op.Kind == api.OpAccept })
	if len(ops) == 0 {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.IndexFunc(q.pending, func(p api.Op) bool { return p.Tag == ops[0].Tag })
	q.pending = slices.Delete(q.pending, i, i+1)
	q.ready = append(q.ready, api.Completion{Tag: ops[0].Tag, Kind: api.OpAccept, Handle: h, Res: int(h)})
	q.cond.Broadcast()
	return true
}

// Feed completes the pending read of h as if data arrived.
func (q *Queue) Feed(h api.Handle, data []byte) bool {
	ops := q.Find(func(op api.Op) bool { return op.Kind == api.OpRead && op.Handle == h })
	if len(ops) == 0 {
		return false
	}
	n := copy(ops[0].Buf, data)
	return q.Complete(ops[0], n, nil)
}

// CompleteWrites fully completes every pending write to h and returns how
// many were retired.
func (q *Queue) CompleteWrites(h api.Handle) int {
	n := 0
	for _, op := range q.Writes(h) {
		if q.Complete(op, len(op.Buf), nil) {
			n++
		}
	}
	return n
}

// Inject queues an arbitrary completion.
func (q *Queue) Inject(c api.Completion) {
	q.mu.Lock()
	q.ready = append(q.ready, c)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Closed returns how many times h was closed.
func (q *Queue) Closed(h api.Handle) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed[h]
}

// Waits returns how many times Wait was entered.
func (q *Queue) Waits() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waits
}

// Submits returns how many submissions were accepted.
func (q *Queue) Submits() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submits
}

var _ api.CompletionQueue = (*Queue)(nil)
