// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the completion-queue contract used by the reactor. Backends
// (io_uring, proactor, fake) accept operation submissions and hand back
// completions carrying the caller-supplied tag.

package api

import "math"

// Handle identifies one accepted connection. Handles are process-unique and
// never reused, so a late completion can never be attributed to a newer peer.
type Handle uint64

// NoHandle is the zero value and never names a live connection.
const NoHandle Handle = 0

// WakeTag is reserved for completions produced by CompletionQueue.Wake.
const WakeTag uint64 = math.MaxUint64

// OpKind enumerates the asynchronous operations a backend must support.
type OpKind uint8

const (
	OpAccept OpKind = iota + 1
	OpRead
	OpWrite
)

func (k OpKind) String() string {
	switch k {
	case OpAccept:
		return "accept"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Op describes one submission. Buf must stay untouched by the caller until
// the matching completion has been observed.
type Op struct {
	Kind   OpKind
	Handle Handle // ignored for OpAccept
	Buf    []byte // read target or write source
	Tag    uint64 // echoed back in Completion.Tag
}

// Completion is the result of one submitted Op.
//
// For OpRead and OpWrite, Res is the number of bytes transferred; a read
// with Res == 0 and Err == nil means the peer closed the stream. For
// OpAccept, Handle names the newly accepted connection.
type Completion struct {
	Tag    uint64
	Kind   OpKind
	Handle Handle
	Res    int
	Err    error
}

// CompletionQueue is a bounded submission/completion interface.
//
// All methods except Wake must be called from a single goroutine.
type CompletionQueue interface {
	// Submit queues op. It returns ErrQueueFull when the submission side
	// is momentarily saturated; the caller retries later.
	Submit(op Op) error

	// Peek returns a ready completion without blocking. ok is false when
	// nothing is ready.
	Peek() (c Completion, ok bool, err error)

	// Wait blocks until the next completion is available.
	Wait() (Completion, error)

	// Wake makes a blocked Wait return a completion tagged WakeTag.
	// Safe for concurrent use.
	Wake()

	// Close shuts down and releases the socket behind h. Operations still
	// in flight for h complete with an error.
	Close(h Handle) error

	// Shutdown releases the queue and the listening socket.
	Shutdown() error
}
