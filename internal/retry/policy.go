package retry

import (
	"math"
	"time"

	"github.com/five82/abwalk/internal/config"
)

// Policy bounds retries of transient failures at an unchanged target.
// A negative MaxTransientRetries retries without limit.
type Policy struct {
	MaxTransientRetries int
	Delay               time.Duration
	Multiplier          float64
	MaxDelay            time.Duration
}

// PolicyFromConfig converts the configured transient retry settings.
func PolicyFromConfig(t config.TransientRetry) Policy {
	return Policy{
		MaxTransientRetries: t.MaxRetries,
		Delay:               t.Delay,
		Multiplier:          t.Multiplier,
		MaxDelay:            t.MaxDelay,
	}
}

// Unlimited reports whether transient retries are uncapped.
func (p Policy) Unlimited() bool {
	return p.MaxTransientRetries < 0
}

// Allows reports whether another retry is permitted after used retries.
func (p Policy) Allows(used int) bool {
	return p.Unlimited() || used < p.MaxTransientRetries
}

// maxBackoff bounds an uncapped delay so it never overflows time.Duration.
const maxBackoff = time.Duration(math.MaxInt64)

// Backoff returns the wait before retry number n, counting from zero.
// The delay grows by Multiplier each time and is capped at MaxDelay, or
// at the largest Duration when MaxDelay is zero.
func (p Policy) Backoff(n int) time.Duration {
	limit := p.MaxDelay
	if limit <= 0 {
		limit = maxBackoff
	}
	delay := float64(p.Delay)
	for i := 0; i < n && delay < float64(limit); i++ {
		delay *= p.Multiplier
	}
	if delay >= float64(limit) {
		return limit
	}
	return time.Duration(delay)
}
