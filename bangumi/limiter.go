package bangumi

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMinInterval is the minimum spacing between two request starts
	DefaultMinInterval = 1100 * time.Millisecond

	// delayStep is the granularity waits are rounded up to, so the spacing
	// never drops below the interval
	delayStep = time.Millisecond
)

// Limiter spaces request dispatches at least interval apart across every
// caller sharing it. A caller arriving inside the window waits only the
// remainder of it.
type Limiter struct {
	limiter  *rate.Limiter
	clock    Clock
	interval time.Duration
}

// NewLimiter creates a limiter releasing one dispatch per interval
func NewLimiter(interval time.Duration, clock Clock) *Limiter {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		clock:    clock,
		interval: interval,
	}
}

// Interval returns the configured spacing
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the caller may dispatch. The slot is booked before
// sleeping so concurrent callers queue behind each other; a cancelled
// context hands the slot back.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clock.Now()
	r := l.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("rate limiter refused reservation")
	}

	delay := roundUp(r.DelayFrom(now), delayStep)
	if delay <= 0 {
		return nil
	}

	select {
	case <-l.clock.After(delay):
		return nil
	case <-ctx.Done():
		r.CancelAt(l.clock.Now())
		return ctx.Err()
	}
}

// roundUp rounds d up to a multiple of step
func roundUp(d, step time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	if rem := d % step; rem != 0 {
		d += step - rem
	}
	return d
}
