package skeleton

import "time"

// Frame is one body frame: a fixed, positional array of subject slots.
// A nil slot means the sensor has no body there.
type Frame struct {
	Seq       uint64     `json:"seq" msgpack:"seq"`
	Timestamp time.Time  `json:"timestamp" msgpack:"timestamp"`
	Subjects  []*Subject `json:"subjects" msgpack:"subjects"`
}

// Subject returns the subject in a slot, or nil if the slot is empty or out of range.
func (f *Frame) Subject(slot int) *Subject {
	if f == nil || slot < 0 || slot >= len(f.Subjects) {
		return nil
	}
	return f.Subjects[slot]
}

// Clone returns a deep copy that outlives the sensor's buffers.
func (f *Frame) Clone() Frame {
	c := Frame{Seq: f.Seq, Timestamp: f.Timestamp, Subjects: make([]*Subject, len(f.Subjects))}
	for i, s := range f.Subjects {
		c.Subjects[i] = s.Clone()
	}
	return c
}

// Rect is an axis-aligned rectangle in projected (pixel) space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectFromRatios computes the detection area from frame size and edge ratios.
func RectFromRatios(width, height int, left, top, right, bottom float64) Rect {
	w, h := float64(width), float64(height)
	return Rect{Left: left * w, Top: top * h, Right: right * w, Bottom: bottom * h}
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.Bottom - r.Top }
