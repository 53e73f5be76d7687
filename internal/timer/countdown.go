// Package timer drives the per-session countdown of timed attempts.
package timer

import (
	"context"
	"time"
)

// Countdown decrements Remaining once per Interval. OnTick receives each new
// value; when it reaches zero OnExpire runs once and Run returns.
type Countdown struct {
	Remaining int
	Interval  time.Duration
	OnTick    func(ctx context.Context, remaining int)
	OnExpire  func(ctx context.Context)
}

// Run blocks until the countdown expires or ctx is cancelled. It reports
// whether the countdown reached zero.
func (c *Countdown) Run(ctx context.Context) bool {
	if c.Remaining <= 0 {
		c.expire(ctx)
		return true
	}

	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			// A ready tick can win the select after cancellation.
			if ctx.Err() != nil {
				return false
			}
			c.Remaining--
			if c.OnTick != nil {
				c.OnTick(ctx, c.Remaining)
			}
			if ctx.Err() != nil {
				return false
			}
			if c.Remaining <= 0 {
				c.expire(ctx)
				return true
			}
		}
	}
}

func (c *Countdown) expire(ctx context.Context) {
	if c.OnExpire != nil {
		c.OnExpire(ctx)
	}
}
