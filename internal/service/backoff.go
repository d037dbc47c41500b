package service

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// BackoffConfig configures the reconnect delay: exponential from Base, capped
// at Cap, with JitterPercent of random spread.
type BackoffConfig struct {
	Base          time.Duration
	Cap           time.Duration
	JitterPercent uint64
}

// DefaultBackoff is 1s, 2s, 4s... capped at 30s with 20% jitter.
var DefaultBackoff = BackoffConfig{Base: time.Second, Cap: 30 * time.Second, JitterPercent: 20}

func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.Base <= 0 {
		c.Base = DefaultBackoff.Base
	}
	if c.Cap < c.Base {
		c.Cap = max(c.Base, DefaultBackoff.Cap)
	}
	if c.JitterPercent >= 100 {
		c.JitterPercent = DefaultBackoff.JitterPercent
	}
	return c
}

// newBackoff returns a fresh, unbounded backoff sequence.
func (c BackoffConfig) newBackoff() retry.Backoff {
	b := retry.NewExponential(c.Base)
	b = retry.WithCappedDuration(c.Cap, b)
	if c.JitterPercent > 0 {
		b = retry.WithJitterPercent(c.JitterPercent, b)
	}
	return b
}

// nextDelay draws the next delay from b. It never returns zero: the
// unbounded sequence never stops and exponential delays start at Base.
func (c BackoffConfig) nextDelay(b retry.Backoff) time.Duration {
	d, stop := b.Next()
	if stop || d <= 0 {
		return c.Base
	}
	return d
}
