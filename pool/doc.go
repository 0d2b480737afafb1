// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-probe. Slab keeps operation records in stable,
// generation-checked slots so that completion tags can be resolved safely;
// BytePool recycles the fixed-size read buffers owned by those records, and
// Ring carries completions from a backend goroutine to the reactor.
package pool
