// Package skeleton defines the per-frame body data delivered by the skeletal sensor.
package skeleton

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxSubjects is the number of body slots the sensor reports per frame.
// Slots are positional and get reused for different people over time.
const MaxSubjects = 6

// TrackingState is the sensor's confidence in a joint position.
type TrackingState int

const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

var trackingStateNames = [...]string{"NotTracked", "Inferred", "Tracked"}

func (s TrackingState) String() string {
	if s < 0 || int(s) >= len(trackingStateNames) {
		return fmt.Sprintf("TrackingState(%d)", int(s))
	}
	return trackingStateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s TrackingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TrackingState) UnmarshalText(b []byte) error {
	for i, name := range trackingStateNames {
		if name == string(b) {
			*s = TrackingState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tracking state %q", b)
}

// Point is a projected (color space) position in pixels.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// IsFinite reports whether both coordinates are usable. The sensor reports
// -Inf for joints it cannot map into color space.
func (p Point) IsFinite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y)
}

// wirePoint carries non-finite coordinates as null, which JSON cannot express.
type wirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func orNegInf(v *float64) float64 {
	if v == nil {
		return math.Inf(-1)
	}
	return *v
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePoint{X: finiteOrNil(p.X), Y: finiteOrNil(p.Y)})
}

// UnmarshalJSON implements json.Unmarshaler. Null coordinates decode to -Inf.
func (p *Point) UnmarshalJSON(b []byte) error {
	var w wirePoint
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p.X, p.Y = orNegInf(w.X), orNegInf(w.Y)
	return nil
}

// Joint is one skeletal joint.
type Joint struct {
	Type      JointType     `json:"type" msgpack:"type"`
	Camera    r3.Vector     `json:"camera" msgpack:"camera"` // meters, sensor at origin
	Projected Point         `json:"projected" msgpack:"projected"`
	State     TrackingState `json:"state" msgpack:"state"`
}

// Subject is one tracked body in a frame. It is owned by the frame source
// and only valid while the frame is being processed.
type Subject struct {
	TrackingID uint64  `json:"trackingId" msgpack:"trackingId"`
	Tracked    bool    `json:"tracked" msgpack:"tracked"`
	Joints     []Joint `json:"joints" msgpack:"joints"`
}

// Joint returns the joint of the given type, or a NotTracked zero joint.
func (s *Subject) Joint(t JointType) Joint {
	if s == nil {
		return Joint{Type: t}
	}
	for _, j := range s.Joints {
		if j.Type == t {
			return j
		}
	}
	return Joint{Type: t}
}

// Distance returns the trunk (SpineMid) distance from the sensor in meters.
func (s *Subject) Distance() float64 {
	return s.Joint(SpineMid).Camera.Norm()
}

// TrackedJoints counts joints with state Tracked.
func (s *Subject) TrackedJoints() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, j := range s.Joints {
		if j.State == Tracked {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *Subject) Clone() *Subject {
	if s == nil {
		return nil
	}
	c := *s
	c.Joints = append([]Joint(nil), s.Joints...)
	return &c
}
