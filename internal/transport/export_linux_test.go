//go:build linux

package transport

import "github.com/momentics/hioload-probe/api"

// FD exposes the descriptor behind h.
func (u *Uring) FD(h api.Handle) (int, bool) {
	fd, ok := u.conns[h]
	return fd, ok
}
