package policy

import "time"

// Clock supplies the current time. Injected so tests and backdated
// corrections can run against a fixed instant instead of the wall clock.
type Clock func() time.Time

// SystemClock is the wall-clock implementation used in production wiring.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
