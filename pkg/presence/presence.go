// Package presence decides whether a tracked body counts as a person standing
// at the kiosk: framed inside the detection area and close enough to the sensor.
package presence

import (
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Reference joints used to judge framing, and the trunk joint used for distance.
const (
	FrameJointA = skeleton.ShoulderLeft
	FrameJointB = skeleton.ShoulderRight
	TrunkJoint  = skeleton.SpineMid
)

// IsPresent reports whether the subject is in frame and within maxDistance meters.
func IsPresent(s *skeleton.Subject, area skeleton.Rect, maxDistance float64) bool {
	return IsInFrame(s, area) && IsWithinDistance(s, maxDistance)
}

// IsInFrame reports whether both shoulders are tracked (or inferred), have
// finite projections and lie inside area.
func IsInFrame(s *skeleton.Subject, area skeleton.Rect) bool {
	if s == nil {
		return false
	}

	a := s.Joint(FrameJointA)
	b := s.Joint(FrameJointB)
	if a.State == skeleton.NotTracked || b.State == skeleton.NotTracked {
		return false
	}

	if !a.Projected.IsFinite() || !b.Projected.IsFinite() {
		return false
	}

	return area.Contains(a.Projected) && area.Contains(b.Projected)
}

// IsWithinDistance reports whether the trunk joint is strictly closer than
// maxDistance. An untracked trunk has no usable depth and is never within.
func IsWithinDistance(s *skeleton.Subject, maxDistance float64) bool {
	if s == nil {
		return false
	}
	trunk := s.Joint(TrunkJoint)
	if trunk.State == skeleton.NotTracked {
		return false
	}
	return trunk.Camera.Norm() < maxDistance
}
