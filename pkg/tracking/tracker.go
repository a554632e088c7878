// Package tracking selects one primary person from the sensor's body slots
// and keeps following them by tracking id.
package tracking

import (
	"sync"

	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/presence"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Observation is the tracker's verdict for one frame.
type Observation struct {
	Signal Signal

	// Slot and Subject describe the primary person in this frame. Subject is
	// only valid while the frame is being processed.
	Slot    int
	Subject *skeleton.Subject

	// Present is true when the primary person satisfied presence this frame;
	// Distance is then their trunk distance in meters.
	Present  bool
	Distance float64
}

// Tracker follows the primary person across frames.
type Tracker struct {
	config Config

	mu      sync.RWMutex
	primary *PrimaryPerson
}

// New creates a tracker with no primary person
func New(config Config) *Tracker {
	return &Tracker{config: config}
}

// Config returns the tracker configuration
func (t *Tracker) Config() Config {
	return t.config
}

// Update evaluates one frame.
func (t *Tracker) Update(f *skeleton.Frame) Observation {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.primary == nil {
		return t.acquire(f)
	}
	return t.follow(f)
}

// acquire picks the first present subject in ascending slot order.
func (t *Tracker) acquire(f *skeleton.Frame) Observation {
	if f == nil {
		return Observation{Slot: -1}
	}
	for slot, s := range f.Subjects {
		if s == nil || !s.Tracked {
			continue
		}
		if !presence.IsPresent(s, t.config.Area, t.config.DefaultDistance) {
			continue
		}

		t.primary = &PrimaryPerson{Slot: slot, TrackingID: s.TrackingID}
		log.Debug("primary person acquired", "slot", slot, "tracking_id", s.TrackingID)
		return Observation{
			Signal:   Entered,
			Slot:     slot,
			Subject:  s,
			Present:  true,
			Distance: s.Distance(),
		}
	}
	return Observation{Slot: -1}
}

// follow re-reads the primary's slot and checks identity then presence.
func (t *Tracker) follow(f *skeleton.Frame) Observation {
	p := t.primary
	s := f.Subject(p.Slot)

	if s == nil || !s.Tracked || s.TrackingID != p.TrackingID {
		log.Debug("primary person lost", "slot", p.Slot, "tracking_id", p.TrackingID)
		t.primary = nil
		return Observation{Signal: Left, Slot: p.Slot}
	}

	ceiling := p.MaxDistance(t.config.DefaultDistance, t.config.VariationMargin)
	if !presence.IsPresent(s, t.config.Area, ceiling) {
		// The record stays until the session resets the tracker.
		return Observation{Signal: Left, Slot: p.Slot, Subject: s}
	}

	return Observation{
		Signal:   None,
		Slot:     p.Slot,
		Subject:  s,
		Present:  true,
		Distance: s.Distance(),
	}
}

// Primary returns a copy of the current primary person
func (t *Tracker) Primary() (PrimaryPerson, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.primary == nil {
		return PrimaryPerson{}, false
	}
	return *t.primary, true
}

// Reset forgets the primary person
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.primary = nil
	t.mu.Unlock()
}

// SetCalibratedDistance stores the calibrated distance on the current primary.
// It applies once per primary; later calls and calls without a primary return false.
func (t *Tracker) SetCalibratedDistance(meters float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.primary == nil || t.primary.Calibrated {
		return false
	}
	t.primary.CalibratedDistance = meters
	t.primary.Calibrated = true
	log.Debug("primary person calibrated", "tracking_id", t.primary.TrackingID, "distance", meters)
	return true
}

// MaxDistance returns the ceiling currently applied to the primary person
func (t *Tracker) MaxDistance() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.primary == nil {
		return t.config.DefaultDistance
	}
	return t.primary.MaxDistance(t.config.DefaultDistance, t.config.VariationMargin)
}
