// Package clock is the wall-clock seam shared by the controller and the chain client.
package clock

import "time"

// SystemClock is backed by the standard library timers
type SystemClock struct{}

// After waits for d and then sends the current time on the returned channel
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Now returns the current local time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Since reports the time elapsed since t
func (c SystemClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}
