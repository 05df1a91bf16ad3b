package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, clock *fakeClock, logger *log.Logger) (*FileLimiter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rate_limit.json")
	opts := []Option{WithClock(clock.Now)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return NewFileLimiter(path, 10, time.Minute, opts...), path
}

func TestFileLimiterSlidingWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, path := newTestLimiter(t, clock, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Allow(ctx), "request %d should be allowed", i+1)
		clock.Advance(time.Second)
	}

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Len(t, rec.Timestamps, 10)

	err = limiter.Allow(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var rlErr *RateLimitedError
	require.True(t, errors.As(err, &rlErr))
	// Oldest entry was recorded 10s ago.
	assert.Equal(t, 50*time.Second, rlErr.RetryAfter)
	assert.Equal(t, 50, rlErr.RetryAfterSeconds())
	assert.Equal(t, 10, rlErr.Limit)

	rec, err = LoadRecord(path)
	require.NoError(t, err)
	assert.Len(t, rec.Timestamps, 10, "denied request must not be recorded")

	clock.Advance(50 * time.Second)
	require.NoError(t, limiter.Allow(ctx), "oldest entry aged out of the window")

	rec, err = LoadRecord(path)
	require.NoError(t, err)
	assert.Len(t, rec.Timestamps, 10)
}

func TestFileLimiterPersistsAcrossInstances(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	path := filepath.Join(t.TempDir(), "nested", "rate_limit.json")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l := NewFileLimiter(path, 3, time.Minute, WithClock(clock.Now))
		require.NoError(t, l.Allow(ctx))
	}

	l := NewFileLimiter(path, 3, time.Minute, WithClock(clock.Now))
	assert.ErrorIs(t, l.Allow(ctx), ErrRateLimited)

	left, err := l.Remaining()
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

func TestFileLimiterPrunesExpiredEntries(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, path := newTestLimiter(t, clock, nil)

	now := toSeconds(clock.Now())
	stale := &Record{Timestamps: []float64{now - 600, now - 120, now - 60, now - 30}}
	require.NoError(t, SaveRecord(path, stale))

	require.NoError(t, limiter.Allow(context.Background()))

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{now - 30, now}, rec.Timestamps)

	left, err := limiter.Remaining()
	require.NoError(t, err)
	assert.Equal(t, 8, left)
}

func TestFileLimiterFailsOpenOnCorruptRecord(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, path := newTestLimiter(t, clock, log.New(&buf, "", 0))

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	assert.NoError(t, limiter.Allow(context.Background()))
	assert.Contains(t, buf.String(), "Warning: rate limit check failed")
}

func TestFileLimiterFailsOpenOnUnwritableLocation(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	// Parent of the record path is a regular file, so nothing can be created there.
	limiter := NewFileLimiter(filepath.Join(blocker, "rate_limit.json"), 1, time.Minute,
		WithLogger(log.New(&buf, "", 0)))

	assert.NoError(t, limiter.Allow(context.Background()))
	assert.NoError(t, limiter.Allow(context.Background()))
	assert.Contains(t, buf.String(), "Warning")
}

func TestLoadRecordMissingFile(t *testing.T) {
	rec, err := LoadRecord(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, rec.Timestamps)
}

func TestSaveRecordWritesTimestampsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limit.json")
	require.NoError(t, SaveRecord(path, &Record{Timestamps: []float64{1.5, 2.5}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamps":[1.5,2.5]}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not be left behind")
	}
}

func TestRecordOldest(t *testing.T) {
	assert.Equal(t, 0.0, (&Record{}).Oldest())
	assert.Equal(t, 3.0, (&Record{Timestamps: []float64{7, 3, 9}}).Oldest())
}
