package matrix

import "sync/atomic"

// Tracker observes buffer allocation and release. It replaces process-wide
// allocation counters: callers that want diagnostics inject one.
type Tracker interface {
	Allocated(bytes int)
	Released(bytes int)
}

type nopTracker struct{}

func (nopTracker) Allocated(int) {}
func (nopTracker) Released(int)  {}

// Counter is a Tracker that counts live buffers and bytes.
type Counter struct {
	allocs   atomic.Int64
	releases atomic.Int64
	bytes    atomic.Int64
}

// Allocated implements Tracker.
func (c *Counter) Allocated(bytes int) {
	c.allocs.Add(1)
	c.bytes.Add(int64(bytes))
}

// Released implements Tracker.
func (c *Counter) Released(bytes int) {
	c.releases.Add(1)
	c.bytes.Add(-int64(bytes))
}

// Live returns the number of buffers allocated and not yet released.
func (c *Counter) Live() int64 {
	return c.allocs.Load() - c.releases.Load()
}

// Allocations returns the total number of buffers allocated.
func (c *Counter) Allocations() int64 {
	return c.allocs.Load()
}

// Bytes returns the number of bytes currently held.
func (c *Counter) Bytes() int64 {
	return c.bytes.Load()
}
