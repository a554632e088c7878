package skeleton

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
)

func TestPoint_JSONNonFinite(t *testing.T) {
	p := Point{X: math.Inf(1), Y: 12.5}

	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"x":null`) {
		t.Errorf("Expected null x, got %s", data)
	}

	var back Point
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if back.IsFinite() {
		t.Error("Expected decoded point to stay non-finite")
	}
	if back.Y != 12.5 {
		t.Errorf("Expected y=12.5, got %v", back.Y)
	}
}

func TestRect_FromRatiosAndContains(t *testing.T) {
	r := RectFromRatios(1000, 500, 0.25, 0.2, 0.75, 1.0)

	if r.Left != 250 || r.Top != 100 || r.Right != 750 || r.Bottom != 500 {
		t.Fatalf("Unexpected rect %+v", r)
	}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{500, 300}, true},
		{"left edge", Point{250, 300}, true},
		{"left of area", Point{249.9, 300}, false},
		{"below area", Point{500, 500.1}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestSubject_DistanceUsesSpineMid(t *testing.T) {
	s := Synthetic(7, Point{X: 900, Y: 500}, 1.75, Point{X: 1000, Y: 400})

	if d := s.Distance(); math.Abs(d-1.75) > 1e-9 {
		t.Errorf("Expected distance 1.75, got %v", d)
	}

	var missing *Subject
	if missing.Joint(Head).State != NotTracked {
		t.Error("Expected nil subject joints to be NotTracked")
	}
}

func TestFrame_CloneIsIndependent(t *testing.T) {
	f := NewFrame(1, map[int]*Subject{2: Synthetic(9, Point{X: 900, Y: 500}, 2, Point{})})

	c := f.Clone()
	f.Subjects[2].Joints[0].State = NotTracked
	f.Subjects[2].TrackingID = 1

	if c.Subjects[2].TrackingID != 9 {
		t.Errorf("Expected clone tracking id 9, got %d", c.Subjects[2].TrackingID)
	}
	if c.Subjects[2].Joints[0].State != Tracked {
		t.Error("Expected clone joints to be unaffected")
	}
	if c.Subject(0) != nil {
		t.Error("Expected empty slot to stay nil")
	}
}

func TestRecording_CSVAndJSON(t *testing.T) {
	rec := NewRecorder()
	rec.Record(NewFrame(1, map[int]*Subject{0: Synthetic(3, Point{X: 900, Y: 500}, 2, Point{X: 1, Y: 2})}))
	rec.Record(NewFrame(2, nil))

	snap := rec.Snapshot()
	if len(snap.Frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(snap.Frames))
	}

	var csvBuf bytes.Buffer
	if err := snap.WriteCSV(&csvBuf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	rows, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("csv read failed: %v", err)
	}
	// header + one tracked subject
	if len(rows) != 2 {
		t.Fatalf("Expected 2 csv rows, got %d", len(rows))
	}
	if len(rows[0]) != 4+6*JointCount {
		t.Errorf("Expected %d columns, got %d", 4+6*JointCount, len(rows[0]))
	}

	var jsonBuf bytes.Buffer
	if err := snap.WriteJSON(&jsonBuf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	back, err := ReadRecording(&jsonBuf)
	if err != nil {
		t.Fatalf("ReadRecording failed: %v", err)
	}
	if got := back.Frames[0].Subjects[0].Joint(HandRight).Projected; got.X != 1 || got.Y != 2 {
		t.Errorf("Expected hand at (1,2), got %+v", got)
	}
}
