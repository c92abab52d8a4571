package httpretry

import (
	"math"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
	DefaultTimeout    = 10 * time.Second

	// jitterFactor splits the exponential delay into a guaranteed half and a
	// random half ("equal jitter").
	jitterFactor = 0.5
)

// Policy bounds a single logical request.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so a call
	// makes at most MaxRetries+1 attempts.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Timeout applies to each attempt. Zero or negative disables it.
	Timeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Timeout:    DefaultTimeout,
	}
}

// Backoff returns the delay to wait after the failed attempt numbered attempt
// (0-based). rnd must be in [0,1). The result lies in
// [BaseDelay*2^attempt/2, BaseDelay*2^attempt], capped at MaxDelay.
func (p Policy) Backoff(attempt int, rnd float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	exp := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	d := exp*jitterFactor + rnd*exp*jitterFactor

	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}
