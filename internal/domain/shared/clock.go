package shared

import "time"

// Clock supplies the current time. Pricing and alert computations take their
// time from a Clock so they can be evaluated against fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.T
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}
