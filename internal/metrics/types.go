// Package metrics provides activity metrics for the leaderboard service.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is a monotonically increasing value.
type Counter struct {
	name string
	help string
	v    atomic.Int64
}

// NewCounter creates a counter.
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc adds 1.
func (c *Counter) Inc() {
	c.v.Add(1)
}

// Add adds delta. Negative deltas are ignored, counters only grow.
func (c *Counter) Add(delta int64) {
	if delta > 0 {
		c.v.Add(delta)
	}
}

// Value returns the current value.
func (c *Counter) Value() int64 {
	return c.v.Load()
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	c.v.Store(0)
}

// Name returns the metric name.
func (c *Counter) Name() string {
	return c.name
}

// Gauge is a value that moves in both directions.
type Gauge struct {
	name string
	help string
	v    atomic.Int64
}

// NewGauge creates a gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Set replaces the value.
func (g *Gauge) Set(value int64) {
	g.v.Store(value)
}

// Inc adds 1.
func (g *Gauge) Inc() {
	g.v.Add(1)
}

// Dec subtracts 1.
func (g *Gauge) Dec() {
	g.v.Add(-1)
}

// Value returns the current value.
func (g *Gauge) Value() int64 {
	return g.v.Load()
}

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	name   string
	help   string
	bounds []float64

	mu     sync.Mutex
	counts []int64
	sum    float64
	count  int64
}

// NewHistogram creates a histogram with the given bucket upper bounds.
// With no bounds a default millisecond-latency spread is used.
func NewHistogram(name, help string, bounds []float64) *Histogram {
	if len(bounds) == 0 {
		bounds = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	}
	sort.Float64s(bounds)

	return &Histogram{
		name:   name,
		help:   help,
		bounds: bounds,
		counts: make([]int64, len(bounds)+1),
	}
}

// Observe records one value.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++

	idx := len(h.bounds)
	for i, b := range h.bounds {
		if value <= b {
			idx = i
			break
		}
	}
	for ; idx < len(h.counts); idx++ {
		h.counts[idx]++
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// Buckets returns the bucket upper bounds.
func (h *Histogram) Buckets() []float64 {
	out := make([]float64, len(h.bounds))
	copy(out, h.bounds)
	return out
}

// BucketCounts returns the cumulative count per bucket, the last entry
// covering values above every bound.
func (h *Histogram) BucketCounts() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int64, len(h.counts))
	copy(out, h.counts)
	return out
}

// CounterVec is a family of counters split by label values.
type CounterVec struct {
	name   string
	help   string
	labels []string

	mu    sync.RWMutex
	items map[string]*Counter
}

// NewCounterVec creates a counter family with the given label names.
func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{
		name:   name,
		help:   help,
		labels: labels,
		items:  make(map[string]*Counter),
	}
}

// WithLabels returns the counter for the given label values, creating
// it on first use. The number of values must match the label names.
func (cv *CounterVec) WithLabels(values ...string) *Counter {
	if len(values) != len(cv.labels) {
		panic(fmt.Sprintf("metric %s: expected %d label values, got %d",
			cv.name, len(cv.labels), len(values)))
	}

	key := strings.Join(values, "\x1f")

	cv.mu.RLock()
	c, ok := cv.items[key]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.items[key]; ok {
		return c
	}
	c = NewCounter(cv.name, cv.help)
	cv.items[key] = c
	return c
}

// GetAll returns every counter in the family.
func (cv *CounterVec) GetAll() []*Counter {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make([]*Counter, 0, len(cv.items))
	for _, c := range cv.items {
		out = append(out, c)
	}
	return out
}
