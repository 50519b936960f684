package trace

import "sync/atomic"

// Clock counts graph nodes constructed by a Tracer.
//
// Every root and interior node takes the next sequence number. Since a
// node's parents are always built before it, a parent's seq is strictly
// smaller than its child's; logs carry the seq so this can be checked from
// a debug trace.
//
// Thread-safety: Clock is safe for concurrent reads. Only the tracing call
// chain advances it.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
