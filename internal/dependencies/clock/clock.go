package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC. Timestamps are stored as JSON and
// compared across backends, so everything runs on one zone.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
