package domain

import "time"

// Clock produces microsecond timestamps. Successive calls never go
// backwards but may return equal values.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// Now calls f.
func (f ClockFunc) Now() int64 { return f() }

// MonotonicClock reports wall-clock microseconds derived from the
// monotonic reading taken at construction, so wall-clock adjustments
// never make it step backwards.
type MonotonicClock struct {
	start time.Time
	base  int64
}

// NewMonotonicClock creates a clock anchored at the current time.
func NewMonotonicClock() *MonotonicClock {
	now := time.Now()
	return &MonotonicClock{start: now, base: now.UnixMicro()}
}

// Now returns the current timestamp in microseconds.
func (c *MonotonicClock) Now() int64 {
	return c.base + time.Since(c.start).Microseconds()
}
