package counters

import (
	"go.uber.org/atomic"
)

// StrictMonotonicCounter is a thread-safe counter that only ever increases.
// Used for tracking delivered finalized heights: a stale update loses the
// race and reports false instead of rewinding.
type StrictMonotonicCounter struct {
	value *atomic.Uint64
}

// NewMonotonicCounter creates a counter starting at the given value.
func NewMonotonicCounter(initial uint64) StrictMonotonicCounter {
	return StrictMonotonicCounter{
		value: atomic.NewUint64(initial),
	}
}

// Set updates the counter to the given value if it is strictly higher than
// the current one. Returns false otherwise.
func (c StrictMonotonicCounter) Set(v uint64) bool {
	for {
		cur := c.value.Load()
		if v <= cur {
			return false
		}
		if c.value.CompareAndSwap(cur, v) {
			return true
		}
	}
}

// Value reads the current value.
func (c StrictMonotonicCounter) Value() uint64 {
	return c.value.Load()
}
