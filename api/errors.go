// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared by the reactor, its backends and the client.

package api

import "errors"

// Common errors used across the module.
var (
	ErrQueueFull       = errors.New("submission queue full")
	ErrQueueClosed     = errors.New("completion queue is closed")
	ErrUnknownHandle   = errors.New("unknown connection handle")
	ErrAlreadyRunning  = errors.New("reactor already running")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
	ErrConnClosed      = errors.New("connection closed")
)

// ErrTemporary marks failures a backend classified as transient. Backends
// wrap the underlying cause: fmt.Errorf("%w: %w", ErrTemporary, errno).
var ErrTemporary = errors.New("temporary failure")
