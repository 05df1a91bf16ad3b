// Package ratelimit implements a sliding-window send limit persisted in a small
// JSON file so it holds across separate invocations of the tool.
package ratelimit

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout    = 2 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

// FileLimiter allows at most limit sends per window, counted from a record file.
// Storage failures never block a send.
type FileLimiter struct {
	path   string
	limit  int
	window time.Duration
	now    func() time.Time
	logger *log.Logger
}

// Option configures a FileLimiter
type Option func(*FileLimiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *FileLimiter) { l.now = now }
}

// WithLogger sets the logger used for warnings
func WithLogger(logger *log.Logger) Option {
	return func(l *FileLimiter) { l.logger = logger }
}

// NewFileLimiter creates a limiter backed by the record file at path
func NewFileLimiter(path string, limit int, window time.Duration, opts ...Option) *FileLimiter {
	l := &FileLimiter{
		path:   path,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a send attempt and returns nil, or a *RateLimitedError when the
// window is already full. Lock, read and write failures are logged and allowed.
func (l *FileLimiter) Allow(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		l.logger.Printf("Warning: rate limit check failed, allowing request: %v", err)
		return nil
	}

	lock := flock.New(l.path + ".lock")
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		l.logger.Printf("Warning: could not lock rate limit file %s, allowing request: %v", l.path, err)
		return nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			l.logger.Printf("Warning: failed to unlock rate limit file: %v", err)
		}
	}()

	now := toSeconds(l.now())
	windowSecs := l.window.Seconds()

	rec, err := LoadRecord(l.path)
	if err != nil {
		l.logger.Printf("Warning: rate limit check failed, allowing request: %v", err)
		return nil
	}

	rec.Prune(now - windowSecs)

	if len(rec.Timestamps) >= l.limit {
		wait := rec.Oldest() + windowSecs - now
		if wait < 0 {
			wait = 0
		}
		return &RateLimitedError{
			Limit:      l.limit,
			Window:     l.window,
			RetryAfter: time.Duration(wait * float64(time.Second)),
		}
	}

	rec.Timestamps = append(rec.Timestamps, now)
	if err := SaveRecord(l.path, rec); err != nil {
		l.logger.Printf("Warning: rate limit check failed, allowing request: %v", err)
	}
	return nil
}

// Remaining reports how many sends the current window still permits without
// recording an attempt.
func (l *FileLimiter) Remaining() (int, error) {
	rec, err := LoadRecord(l.path)
	if err != nil {
		return 0, err
	}
	rec.Prune(toSeconds(l.now()) - l.window.Seconds())
	if left := l.limit - len(rec.Timestamps); left > 0 {
		return left, nil
	}
	return 0, nil
}
