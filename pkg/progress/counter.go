package progress

import "sync/atomic"

const (
	// PageWeight is added for every page written to disk.
	PageWeight = 10
	// AssetWeight is added for every asset written to disk.
	AssetWeight = 5
	// EstimatedTotal is a static placeholder; it is reported, never used for control flow.
	EstimatedTotal = 100
)

// Counter is a monotonic, lock-free tally of downloaded work.
type Counter struct {
	current atomic.Int64
}

// Increment adds amount and returns the new total.
func (c *Counter) Increment(amount int64) int64 {
	return c.current.Add(amount)
}

// Report returns the current tally and the estimated total.
func (c *Counter) Report() (current, estimatedTotal int64) {
	return c.current.Load(), EstimatedTotal
}
