// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-probe components.

package benchmarks

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/momentics/hioload-probe/api"
	"github.com/momentics/hioload-probe/client"
	"github.com/momentics/hioload-probe/fake"
	"github.com/momentics/hioload-probe/pool"
	"github.com/momentics/hioload-probe/protocol"
	"github.com/momentics/hioload-probe/reactor"
)

// BenchmarkBytePool measures read buffer recycling.
func BenchmarkBytePool(b *testing.B) {
	bp := pool.NewBytePool(100)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bp.PutBuffer(bp.GetBuffer())
		}
	})
}

// BenchmarkRingThroughput measures the SPSC completion ring with one
// producer and one consumer.
func BenchmarkRingThroughput(b *testing.B) {
	ring := pool.NewRing[api.Completion](1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; {
			if _, ok := ring.Dequeue(); ok {
				i++
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; {
		if ring.Enqueue(api.Completion{Tag: uint64(i)}) {
			i++
		}
	}
	<-done
}

// BenchmarkSlabChurn inserts and removes operation records.
func BenchmarkSlabChurn(b *testing.B) {
	s := pool.NewSlab[int](1024)
	ids := make([]pool.SlabID, 0, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ids = append(ids, s.Insert(i))
		if len(ids) == cap(ids) {
			for _, id := range ids {
				s.Remove(id)
			}
			ids = ids[:0]
		}
	}
}

// BenchmarkProbeCodec round-trips one timestamp.
func BenchmarkProbeCodec(b *testing.B) {
	var buf [protocol.ProbeSize]byte
	for i := 0; i < b.N; i++ {
		protocol.EncodeProbe(buf[:], protocol.MonotonicNow())
		if _, err := protocol.DecodeProbe(buf[:]); err != nil {
			b.Fatal(err)
		}
	}
}

func drain(b *testing.B, r *reactor.Reactor) {
	for {
		err := r.Tick()
		if errors.Is(err, fake.ErrWouldBlock) {
			return
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkFanOut(b *testing.B, clients int) {
	q := fake.NewQueue()
	r, err := reactor.New(q, reactor.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	drain(b, r)
	for h := api.Handle(1); h <= api.Handle(clients); h++ {
		q.Accept(h)
		drain(b, r)
	}
	payload := []byte("0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Feed(1, payload)
		drain(b, r)
		for h := api.Handle(1); h <= api.Handle(clients); h++ {
			q.CompleteWrites(h)
		}
		drain(b, r)
	}
	b.ReportMetric(float64(r.Stats().ProbesSent.Load())/float64(b.N), "probes/op")
}

// BenchmarkFanOut16 drives one read through the reactor into 16 writes,
// probes included.
func BenchmarkFanOut16(b *testing.B) { benchmarkFanOut(b, 16) }

// BenchmarkFanOut256 is BenchmarkFanOut16 with a larger registry.
func BenchmarkFanOut256(b *testing.B) { benchmarkFanOut(b, 256) }

// BenchmarkStatsCompute summarizes one client's worth of samples.
func BenchmarkStatsCompute(b *testing.B) {
	samples := make([]time.Duration, 100000)
	for i := range samples {
		samples[i] = time.Duration(rand.IntN(5000)) * time.Microsecond
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := client.Compute(samples); err != nil {
			b.Fatal(err)
		}
	}
}
