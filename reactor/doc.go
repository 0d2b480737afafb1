// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements the single-threaded completion reactor of
// hioload-probe: the connection registry, operation records, the fan-out echo
// pipeline and the backpressure-gated probe broadcaster.
//
// One goroutine owns all reactor state. Each pass first retries submissions
// that found the queue full, then dispatches one ready completion; when none
// is ready it submits probes to connections below the ceiling, and only when
// there is nothing to submit either does it block for the next completion.
package reactor
