// Package calibration estimates a person's typical distance from the sensor
// while their presence is being confirmed.
package calibration

import (
	"sort"
	"sync"
)

// DefaultDistance is used when no samples were collected.
const DefaultDistance = 2.0

// Calibrator collects trunk distance samples for one person.
type Calibrator struct {
	mu       sync.Mutex
	samples  []float64
	fallback float64
}

// New creates a calibrator that reports DefaultDistance when empty.
func New() *Calibrator {
	return NewWithDefault(DefaultDistance)
}

// NewWithDefault creates a calibrator with a custom empty-sample fallback.
func NewWithDefault(fallback float64) *Calibrator {
	return &Calibrator{fallback: fallback}
}

// AddSample records one distance measurement in meters.
func (c *Calibrator) AddSample(meters float64) {
	c.mu.Lock()
	c.samples = append(c.samples, meters)
	c.mu.Unlock()
}

// Len returns the number of samples collected.
func (c *Calibrator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Median returns the element at index n/2 of the sorted samples, so an even
// count yields the upper middle. Samples are not modified.
func (c *Calibrator) Median() float64 {
	c.mu.Lock()
	sorted := append([]float64(nil), c.samples...)
	c.mu.Unlock()

	if len(sorted) == 0 {
		return c.fallback
	}
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
