package bench

import "time"

// Clock provides the time source used for run timings.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// lap starts a stopwatch on c.
func lap(c Clock) func() time.Duration {
	t0 := c.Now()
	return func() time.Duration { return c.Since(t0) }
}
