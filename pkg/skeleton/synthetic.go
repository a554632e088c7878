package skeleton

import "github.com/golang/geo/r3"

// shoulderHalfWidth is the projected half distance between shoulders of a
// synthetic body standing about two meters away.
const shoulderHalfWidth = 150

// Synthetic builds a fully tracked upper body centered on chest (projected
// pixels) with its trunk at distance meters straight ahead of the sensor.
// The right hand is placed at hand. Used by the demo source and by tests.
func Synthetic(trackingID uint64, chest Point, distance float64, hand Point) *Subject {
	joint := func(t JointType, p Point, cam r3.Vector) Joint {
		return Joint{Type: t, Projected: p, Camera: cam, State: Tracked}
	}
	return &Subject{
		TrackingID: trackingID,
		Tracked:    true,
		Joints: []Joint{
			joint(SpineMid, chest, r3.Vector{Z: distance}),
			joint(SpineShoulder, Point{X: chest.X, Y: chest.Y - 60}, r3.Vector{Y: 0.3, Z: distance}),
			joint(Head, Point{X: chest.X, Y: chest.Y - 200}, r3.Vector{Y: 0.6, Z: distance}),
			joint(ShoulderLeft, Point{X: chest.X - shoulderHalfWidth, Y: chest.Y - 60}, r3.Vector{X: -0.2, Y: 0.3, Z: distance}),
			joint(ShoulderRight, Point{X: chest.X + shoulderHalfWidth, Y: chest.Y - 60}, r3.Vector{X: 0.2, Y: 0.3, Z: distance}),
			joint(HandRight, hand, r3.Vector{X: 0.4, Y: 0.2, Z: distance - 0.3}),
			joint(HandTipRight, Point{X: hand.X, Y: hand.Y - 20}, r3.Vector{X: 0.4, Y: 0.25, Z: distance - 0.3}),
		},
	}
}

// NewFrame builds a frame with MaxSubjects slots, placing subjects by slot index.
func NewFrame(seq uint64, slots map[int]*Subject) *Frame {
	f := &Frame{Seq: seq, Subjects: make([]*Subject, MaxSubjects)}
	for i, s := range slots {
		if i >= 0 && i < MaxSubjects {
			f.Subjects[i] = s
		}
	}
	return f
}
