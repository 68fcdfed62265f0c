package util

import "time"

// A Clock provides the current time as nanoseconds. Policies read time
// through a Clock so that tests can supply a controlled time source.
type Clock interface {
	CurrentUnixNano() int64
}

// NewClock returns a Clock backed by the system wall clock.
func NewClock() Clock {
	return &wallClock{}
}

// WallClock is a shared system clock.
var WallClock = NewClock()

type wallClock struct{}

func (c *wallClock) CurrentUnixNano() int64 {
	return time.Now().UnixNano()
}
