package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis tests require a running Redis instance.
// Set REDIS_TEST_ADDR env var to enable, e.g. REDIS_TEST_ADDR=localhost:6379

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("skipping redis test: set REDIS_TEST_ADDR to enable")
	}
	return addr
}

func TestFileSinkWritesMicroseconds(t *testing.T) {
	dir := t.TempDir()
	samples := []time.Duration{1500 * time.Nanosecond, 2 * time.Millisecond}
	require.NoError(t, FileSink{Dir: dir}.Store(context.Background(), 7, samples, Stats{}))

	data, err := os.ReadFile(filepath.Join(dir, "latency_data_client_7.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n2000\n", string(data))
}

func TestFileSinkMissingDir(t *testing.T) {
	err := FileSink{Dir: filepath.Join(t.TempDir(), "nope")}.Store(context.Background(), 1, nil, Stats{})
	assert.Error(t, err)
}

func TestRedisSinkBadAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisSink(ctx, "localhost:59999", "run", 0)
	assert.Error(t, err)
}

func TestRedisSinkStore(t *testing.T) {
	addr := skipIfNoRedis(t)
	ctx := context.Background()
	run := "test-" + time.Now().Format("150405.000000")

	rs, err := NewRedisSink(ctx, addr, run, time.Minute)
	require.NoError(t, err)
	defer rs.Close()

	samples := ms(1, 2, 3)
	st, err := Compute(samples)
	require.NoError(t, err)
	require.NoError(t, rs.Store(ctx, 1, samples, st))

	vals, err := rs.client.LRange(ctx, rs.SamplesKey(1), 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"1000", "2000", "3000"}, vals)

	median, err := rs.client.HGet(ctx, rs.StatsKey(1), "median_us").Result()
	require.NoError(t, err)
	assert.Equal(t, "2000", median)

	rs.client.Del(ctx, rs.SamplesKey(1), rs.StatsKey(1))
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	bad := FileSink{Dir: filepath.Join(dir, "missing")}
	multi := MultiSink{FileSink{Dir: dir}, bad}
	err := multi.Store(context.Background(), 3, []time.Duration{time.Microsecond}, Stats{})
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, SampleFileName(3)))
	assert.NoError(t, statErr)
	assert.NoError(t, multi.Close())
}
