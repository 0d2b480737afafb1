// File: reactor/accept.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
)

// onAccept registers the new connection, arms its first read and resubmits
// the singleton accept record. Accept failures are fatal unless the backend
// classified them as temporary.
func (r *Reactor) onAccept(id pool.SlabID, c api.Completion) error {
	if c.Err != nil {
		if errors.Is(c.Err, api.ErrTemporary) {
			r.log.Warn().Err(c.Err).Msg("accept failed, retrying")
			r.submit(id)
			return nil
		}
		return fmt.Errorf("reactor: accept: %w", c.Err)
	}

	h := c.Handle
	r.reg.Register(h)
	r.stats.Accepted.Add(1)
	r.stats.Active.Store(int64(r.reg.Len()))
	r.log.Debug().Uint64("handle", uint64(h)).Msg("accepted connection")

	r.submit(r.ops.newDataIO(h))
	r.submit(id)
	return nil
}
