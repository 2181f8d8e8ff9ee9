package reasoner

import "sync/atomic"

// Clock is the reasoner's logical time. Every cycle advances it by one;
// input events may move it forward to their occurrence time. It never
// moves backwards.
//
// Clock is safe for concurrent use, but only the engine's single writer
// advances it in practice.
type Clock struct {
	now atomic.Int64
}

// NewClock creates a clock at time 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at a specific time.
// Used to resume a session from its last journaled cycle.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.now.Store(start)
	return c
}

// Next advances the clock by one and returns the new time.
func (c *Clock) Next() int64 {
	return c.now.Add(1)
}

// Current returns the current time without advancing.
func (c *Clock) Current() int64 {
	return c.now.Load()
}

// AdvanceTo moves the clock to t if t is later than the current time and
// returns the resulting time.
func (c *Clock) AdvanceTo(t int64) int64 {
	for {
		cur := c.now.Load()
		if t <= cur {
			return cur
		}
		if c.now.CompareAndSwap(cur, t) {
			return t
		}
	}
}
