package presence

import (
	"math"
	"testing"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

var area = skeleton.Rect{Left: 500, Top: 200, Right: 1400, Bottom: 1000}

func standing(distance float64) *skeleton.Subject {
	return skeleton.Synthetic(1, skeleton.Point{X: 950, Y: 600}, distance, skeleton.Point{X: 1100, Y: 500})
}

func setJoint(s *skeleton.Subject, t skeleton.JointType, update func(*skeleton.Joint)) {
	for i := range s.Joints {
		if s.Joints[i].Type == t {
			update(&s.Joints[i])
		}
	}
}

func TestIsPresent_StandingInArea(t *testing.T) {
	if !IsPresent(standing(1.5), area, 2.0) {
		t.Error("Expected subject inside area at 1.5m to be present")
	}
}

func TestIsPresent_ReferenceJointsNotTracked(t *testing.T) {
	s := standing(1.5)
	setJoint(s, skeleton.ShoulderLeft, func(j *skeleton.Joint) { j.State = skeleton.NotTracked })
	setJoint(s, skeleton.ShoulderRight, func(j *skeleton.Joint) { j.State = skeleton.NotTracked })

	// Everything else about the subject is ideal
	if IsPresent(s, area, 100) {
		t.Error("Expected untracked shoulders to never count as present")
	}
}

func TestIsPresent_InferredShouldersCount(t *testing.T) {
	s := standing(1.5)
	setJoint(s, skeleton.ShoulderLeft, func(j *skeleton.Joint) { j.State = skeleton.Inferred })

	if !IsPresent(s, area, 2.0) {
		t.Error("Expected inferred shoulder to still allow presence")
	}
}

func TestIsPresent_NonFiniteProjection(t *testing.T) {
	tests := []struct {
		name  string
		joint skeleton.JointType
		x, y  float64
	}{
		{"left +inf x", skeleton.ShoulderLeft, math.Inf(1), 600},
		{"right +inf y", skeleton.ShoulderRight, 900, math.Inf(1)},
		{"left -inf x", skeleton.ShoulderLeft, math.Inf(-1), 600},
		{"right NaN", skeleton.ShoulderRight, math.NaN(), 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := standing(1.5)
			setJoint(s, tt.joint, func(j *skeleton.Joint) { j.Projected = skeleton.Point{X: tt.x, Y: tt.y} })
			if IsPresent(s, skeleton.Rect{Left: math.Inf(-1), Top: math.Inf(-1), Right: math.Inf(1), Bottom: math.Inf(1)}, 2.0) {
				t.Error("Expected non-finite projection to force absence")
			}
		})
	}
}

func TestIsPresent_OutsideArea(t *testing.T) {
	s := skeleton.Synthetic(1, skeleton.Point{X: 560, Y: 600}, 1.5, skeleton.Point{})

	// left shoulder lands at x=410, outside the area
	if IsInFrame(s, area) {
		t.Error("Expected shoulder outside area to fail framing")
	}
	if IsPresent(s, area, 2.0) {
		t.Error("Expected subject partially outside area to be absent")
	}
}

func TestIsWithinDistance_Strict(t *testing.T) {
	if IsWithinDistance(standing(2.0), 2.0) {
		t.Error("Expected distance equal to ceiling to be rejected")
	}
	if !IsWithinDistance(standing(1.99), 2.0) {
		t.Error("Expected distance below ceiling to be accepted")
	}
	if IsPresent(nil, area, 2.0) {
		t.Error("Expected nil subject to be absent")
	}
}

func TestIsWithinDistance_TrunkState(t *testing.T) {
	missing := standing(9.0)
	kept := missing.Joints[:0]
	for _, j := range missing.Joints {
		if j.Type != skeleton.SpineMid {
			kept = append(kept, j)
		}
	}
	missing.Joints = kept

	untracked := standing(1.5)
	setJoint(untracked, skeleton.SpineMid, func(j *skeleton.Joint) { j.State = skeleton.NotTracked })

	inferred := standing(1.5)
	setJoint(inferred, skeleton.SpineMid, func(j *skeleton.Joint) { j.State = skeleton.Inferred })

	tests := []struct {
		name    string
		subject *skeleton.Subject
		want    bool
	}{
		{"trunk joint missing", missing, false},
		{"trunk joint not tracked", untracked, false},
		{"trunk joint inferred", inferred, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithinDistance(tt.subject, 2.0); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got := IsPresent(tt.subject, area, 2.0); got != tt.want {
				t.Errorf("Expected presence %v, got %v", tt.want, got)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	untracked := standing(1.0)
	untracked.Tracked = false
	f := skeleton.NewFrame(1, map[int]*skeleton.Subject{
		1: standing(1.5),
		3: untracked,
		4: skeleton.Synthetic(2, skeleton.Point{X: 100, Y: 100}, 3, skeleton.Point{}),
	})

	rows := Inspect(f, area, 1)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Primary || !rows[0].InFrame || rows[0].Slot != 1 {
		t.Errorf("Unexpected primary row %+v", rows[0])
	}
	if rows[1].Primary || rows[1].InFrame || rows[1].Slot != 4 {
		t.Errorf("Unexpected secondary row %+v", rows[1])
	}
}
