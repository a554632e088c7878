package skeleton

import "fmt"

// JointType names a skeletal joint in sensor order.
type JointType int

const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight

	JointCount int = iota
)

var jointNames = [...]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

func (t JointType) String() string {
	if t < 0 || int(t) >= len(jointNames) {
		return fmt.Sprintf("JointType(%d)", int(t))
	}
	return jointNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t JointType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *JointType) UnmarshalText(b []byte) error {
	for i, name := range jointNames {
		if name == string(b) {
			*t = JointType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown joint type %q", b)
}
