// File: reactor/records.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operation records: one tagged record per outstanding asynchronous
// operation, stored in a slab and addressed by the slab id, which doubles as
// the completion tag.

package reactor

import (
	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/pool"
	"github.com/momentics/hioload-probe/protocol"
)

type recordKind uint8

const (
	kindAccept recordKind = iota + 1
	kindDataIO
	kindEchoWrite
	kindProbeWrite
)

func (k recordKind) String() string {
	switch k {
	case kindAccept:
		return "accept"
	case kindDataIO:
		return "data"
	case kindEchoWrite:
		return "echo"
	case kindProbeWrite:
		return "probe"
	default:
		return "unknown"
	}
}

// record is the state of one outstanding operation.
//
// DataIO records own buf for the lifetime of the connection. While writing,
// borrows counts the writes (fan-out plus the self echo) that still read
// from buf; the record neither re-arms its read nor is freed until it drops
// to zero.
type record struct {
	kind   recordKind
	handle api.Handle

	buf []byte // DataIO: owned read buffer; EchoWrite: borrowed from origin
	n   int    // DataIO: bytes filled by the last read
	off int    // bytes of the current write already transferred

	writing bool // DataIO: false while a read is pending
	borrows int  // DataIO: outstanding writes of buf

	origin pool.SlabID // EchoWrite: the DataIO record it borrows from

	probe [protocol.ProbeSize]byte // ProbeWrite: encoded timestamp
}

// writeBuf returns the unwritten tail of the current write.
func (rec *record) writeBuf() []byte {
	switch rec.kind {
	case kindDataIO:
		return rec.buf[rec.off:rec.n]
	case kindEchoWrite:
		return rec.buf[rec.off:]
	case kindProbeWrite:
		return rec.probe[rec.off:]
	default:
		return nil
	}
}

// op builds the submission for the record's current state.
func (rec *record) op(id pool.SlabID) api.Op {
	o := api.Op{Handle: rec.handle, Tag: uint64(id)}
	switch {
	case rec.kind == kindAccept:
		o.Kind = api.OpAccept
	case rec.kind == kindDataIO && !rec.writing:
		o.Kind = api.OpRead
		o.Buf = rec.buf
	default:
		o.Kind = api.OpWrite
		o.Buf = rec.writeBuf()
	}
	return o
}

// records wraps the slab with the buffer pool so that DataIO buffers are
// recycled exactly when their record is freed.
type records struct {
	slab *pool.Slab[*record]
	bufs *pool.BytePool
}

func newRecords(bufSize, capacity int) *records {
	return &records{
		slab: pool.NewSlab[*record](capacity),
		bufs: pool.NewBytePool(bufSize),
	}
}

func (rs *records) newAccept() pool.SlabID {
	return rs.slab.Insert(&record{kind: kindAccept})
}

func (rs *records) newDataIO(h api.Handle) pool.SlabID {
	return rs.slab.Insert(&record{
		kind:   kindDataIO,
		handle: h,
		buf:    rs.bufs.GetBuffer(),
	})
}

func (rs *records) newEchoWrite(h api.Handle, origin pool.SlabID, data []byte) pool.SlabID {
	return rs.slab.Insert(&record{
		kind:   kindEchoWrite,
		handle: h,
		buf:    data,
		origin: origin,
	})
}

func (rs *records) newProbeWrite(h api.Handle, ts int64) pool.SlabID {
	rec := &record{kind: kindProbeWrite, handle: h}
	protocol.EncodeProbe(rec.probe[:], ts)
	return rs.slab.Insert(rec)
}

func (rs *records) get(id pool.SlabID) (*record, bool) {
	return rs.slab.Get(id)
}

// free releases id exactly once. DataIO buffers go back to the pool.
func (rs *records) free(id pool.SlabID) bool {
	rec, ok := rs.slab.Remove(id)
	if !ok {
		return false
	}
	if rec.kind == kindDataIO {
		rs.bufs.PutBuffer(rec.buf)
	}
	rec.buf = nil
	return true
}

func (rs *records) live() int { return rs.slab.Len() }
