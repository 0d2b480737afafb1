// File: client/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Destinations for raw latency samples.

package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink persists the samples and statistics of one connection.
type Sink interface {
	Store(ctx context.Context, id int, samples []time.Duration, st Stats) error
	Close() error
}

// SampleFileName is the per-connection file written by FileSink.
func SampleFileName(id int) string {
	return fmt.Sprintf("latency_data_client_%d.txt", id)
}

// FileSink writes one integer per line, in microseconds, to
// Dir/latency_data_client_<id>.txt.
type FileSink struct {
	Dir string
}

// Store implements Sink.
func (fs FileSink) Store(_ context.Context, id int, samples []time.Duration, _ Stats) error {
	path := filepath.Join(fs.Dir, SampleFileName(id))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, s := range samples {
		w.WriteString(strconv.FormatInt(s.Microseconds(), 10))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Close implements Sink.
func (FileSink) Close() error { return nil }

// RedisSink pushes samples to probe:samples:<run>:<id> and statistics to the
// hash probe:stats:<run>:<id>.
type RedisSink struct {
	client *redis.Client
	run    string
	ttl    time.Duration
}

// NewRedisSink connects to addr and verifies the connection.
func NewRedisSink(ctx context.Context, addr, run string, ttl time.Duration) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisSink{client: client, run: run, ttl: ttl}, nil
}

// SamplesKey returns the list key for connection id.
func (rs *RedisSink) SamplesKey(id int) string {
	return fmt.Sprintf("probe:samples:%s:%d", rs.run, id)
}

// StatsKey returns the hash key for connection id.
func (rs *RedisSink) StatsKey(id int) string {
	return fmt.Sprintf("probe:stats:%s:%d", rs.run, id)
}

// Store implements Sink.
func (rs *RedisSink) Store(ctx context.Context, id int, samples []time.Duration, st Stats) error {
	pipe := rs.client.TxPipeline()
	if len(samples) > 0 {
		vals := make([]any, len(samples))
		for i, s := range samples {
			vals[i] = s.Microseconds()
		}
		pipe.RPush(ctx, rs.SamplesKey(id), vals...)
	}
	pipe.HSet(ctx, rs.StatsKey(id), map[string]any{
		"count":     st.Count,
		"min_us":    st.Min.Microseconds(),
		"max_us":    st.Max.Microseconds(),
		"mean_us":   st.Mean.Microseconds(),
		"median_us": st.Median.Microseconds(),
		"stdev_us":  st.Stdev.Microseconds(),
		"p999_us":   st.P999.Microseconds(),
		"p9999_us":  st.P9999.Microseconds(),
	})
	if rs.ttl > 0 {
		pipe.Expire(ctx, rs.SamplesKey(id), rs.ttl)
		pipe.Expire(ctx, rs.StatsKey(id), rs.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store client %d: %w", id, err)
	}
	return nil
}

// Close implements Sink.
func (rs *RedisSink) Close() error {
	return rs.client.Close()
}

// MultiSink fans Store out to every sink and joins the errors.
type MultiSink []Sink

// Store implements Sink.
func (ms MultiSink) Store(ctx context.Context, id int, samples []time.Duration, st Stats) error {
	var errs []error
	for _, s := range ms {
		if err := s.Store(ctx, id, samples, st); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (ms MultiSink) Close() error {
	var errs []error
	for _, s := range ms {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
