// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync/atomic"

// BytePool hands out fixed-size byte slices backed by a SyncPool.
type BytePool struct {
	pool *SyncPool[*[]byte]
	size int

	gets atomic.Int64
	puts atomic.Int64
}

// NewBytePool returns a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		panic("pool: buffer size must be positive")
	}
	return &BytePool{
		pool: NewSyncPool(func() *[]byte {
			b := make([]byte, size)
			return &b
		}),
		size: size,
	}
}

// Size returns the length of every buffer served by the pool.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a buffer of exactly Size bytes.
func (b *BytePool) GetBuffer() []byte {
	b.gets.Add(1)
	return (*b.pool.Get())[:b.size]
}

// PutBuffer returns buf to the pool. Buffers of a foreign size are dropped.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	b.puts.Add(1)
	buf = buf[:b.size]
	b.pool.Put(&buf)
}

// InUse returns the number of buffers handed out and not yet returned.
func (b *BytePool) InUse() int64 {
	return b.gets.Load() - b.puts.Load()
}
