// File: client/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Latency statistics over one connection's samples.

package client

import (
	"errors"
	"math"
	"slices"
	"time"
)

// ErrNoSamples is returned when statistics are requested for an empty set.
var ErrNoSamples = errors.New("client: no latency samples")

// Stats summarizes a set of latency samples.
type Stats struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
	Stdev  time.Duration // population standard deviation
	P999   time.Duration // 99.9th percentile
	P9999  time.Duration // 99.99th percentile
}

// Compute derives Stats from samples without modifying them. The median of
// an even-sized set is the mean of the two middle values; percentiles take
// the sorted sample at index ceil(p*n)-1.
func Compute(samples []time.Duration) (Stats, error) {
	n := len(samples)
	if n == 0 {
		return Stats{}, ErrNoSamples
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, s := range sorted {
		sum += float64(s)
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range sorted {
		d := float64(s) - mean
		sq += d * d
	}

	st := Stats{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Mean:  time.Duration(math.Round(mean)),
		Stdev: time.Duration(math.Round(math.Sqrt(sq / float64(n)))),
		P999:  sorted[percentileIndex(9990, n)],
		P9999: sorted[percentileIndex(9999, n)],
	}
	if n%2 == 1 {
		st.Median = sorted[n/2]
	} else {
		st.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return st, nil
}

// percentileIndex returns ceil(n*perMyriad/10000)-1 using integer math, so
// 99.9% of 1000 samples is exactly index 998.
func percentileIndex(perMyriad, n int) int {
	idx := (n*perMyriad+9999)/10000 - 1
	return min(max(idx, 0), n-1)
}

// Bucket is one histogram bin: samples with Lo <= s < Hi.
type Bucket struct {
	Lo, Hi time.Duration
	Count  int
}

// Histogram bins samples into power-of-two microsecond buckets, skipping
// leading and trailing empty bins.
func Histogram(samples []time.Duration) []Bucket {
	if len(samples) == 0 {
		return nil
	}
	var counts [64]int
	for _, s := range samples {
		us := max(int64(s/time.Microsecond), 0)
		b := 0
		for us > 0 {
			us >>= 1
			b++
		}
		counts[b]++
	}
	first, last := -1, -1
	for i, c := range counts {
		if c == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	out := make([]Bucket, 0, last-first+1)
	for i := first; i <= last; i++ {
		lo := time.Duration(0)
		if i > 0 {
			lo = bucketEdge(i - 1)
		}
		out = append(out, Bucket{Lo: lo, Hi: bucketEdge(i), Count: counts[i]})
	}
	return out
}

// bucketEdge returns 2^i microseconds, saturating at the largest Duration.
func bucketEdge(i int) time.Duration {
	if i >= 63 || int64(1)<<i > math.MaxInt64/int64(time.Microsecond) {
		return math.MaxInt64
	}
	return time.Duration(int64(1)<<i) * time.Microsecond
}
