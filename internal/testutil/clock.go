package testutil

import "sync"

// SerialCounter hands out evidence serials for test tasks.
//
// Unlike the reasoner, which owns its serials, SerialCounter can be reset
// so the same test scenario produces identical stamps on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SerialCounter struct {
	mu     sync.Mutex
	serial int64
}

// NewSerialCounter creates a counter whose first serial is 1.
func NewSerialCounter() *SerialCounter {
	return &SerialCounter{}
}

// Next increments and returns the next serial.
func (c *SerialCounter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial++
	return c.serial
}

// Current returns the last serial handed out.
func (c *SerialCounter) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serial
}

// Reset restarts the counter. The next call to Next returns 1.
func (c *SerialCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial = 0
}
