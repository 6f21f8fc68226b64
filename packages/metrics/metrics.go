// Package metrics aggregates request latencies across repeated runs.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector aggregates request latencies. Safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
}

// NewCollector creates a collector covering 1µs to 60s with 3
// significant digits.
func NewCollector() *Collector {
	return &Collector{
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Record adds one request latency. Values outside the histogram range
// are clamped.
func (c *Collector) Record(d time.Duration) {
	latencyUs := d.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	c.mu.Lock()
	_ = c.histogram.RecordValue(latencyUs)
	c.mu.Unlock()
}

// Snapshot is a point-in-time summary of the collected latencies.
type Snapshot struct {
	Count int64
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

// Snapshot returns the current summary.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Count: c.histogram.TotalCount(),
		P50:   time.Duration(c.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P90:   time.Duration(c.histogram.ValueAtQuantile(90)) * time.Microsecond,
		P99:   time.Duration(c.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(c.histogram.Max()) * time.Microsecond,
		Mean:  time.Duration(c.histogram.Mean()) * time.Microsecond,
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("count=%d p50=%s p90=%s p99=%s max=%s mean=%s",
		s.Count, s.P50, s.P90, s.P99, s.Max, s.Mean)
}
