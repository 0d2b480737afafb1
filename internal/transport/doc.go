// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion-queue backends for the probe reactor. On Linux the io_uring
// backend submits accept, recv and send straight to the kernel; everywhere
// else (and as the Linux fallback) a proactor built on gaio turns readiness
// events into completions. Both hand out process-unique connection handles
// that are never reused, so a late completion can never be attributed to a
// newer connection that happens to get the same file descriptor.

package transport
