package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrRateLimited is matched by every *RateLimitedError
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitedError carries how long the caller has to wait before the oldest
// recorded send leaves the window.
type RateLimitedError struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %v, retry after %d seconds",
		e.Limit, e.Window, e.RetryAfterSeconds())
}

// Is lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (e *RateLimitedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
