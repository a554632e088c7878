package presence

import (
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// DetectionState is one debug-view row describing a tracked body slot.
type DetectionState struct {
	Slot          int     `json:"slot"`
	TrackingID    uint64  `json:"tracking_id"`
	Primary       bool    `json:"primary"`
	InFrame       bool    `json:"in_frame"`
	Distance      float64 `json:"distance"`
	TrackedJoints int     `json:"tracked_joints"`
}

// Inspect builds debug rows for every tracked slot in the frame.
// primarySlot is -1 when nobody is primary.
func Inspect(f *skeleton.Frame, area skeleton.Rect, primarySlot int) []DetectionState {
	if f == nil {
		return nil
	}
	rows := make([]DetectionState, 0, len(f.Subjects))
	for i, s := range f.Subjects {
		if s == nil || !s.Tracked {
			continue
		}
		rows = append(rows, DetectionState{
			Slot:          i,
			TrackingID:    s.TrackingID,
			Primary:       i == primarySlot,
			InFrame:       IsInFrame(s, area),
			Distance:      s.Distance(),
			TrackedJoints: s.TrackedJoints(),
		})
	}
	return rows
}
