package skeleton

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Recording is an ordered list of body frames captured during a painting session.
type Recording struct {
	Frames []Frame `json:"frames"`
}

// WriteJSON encodes the recording as JSON.
func (r *Recording) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// ReadRecording decodes a JSON recording.
func ReadRecording(rd io.Reader) (*Recording, error) {
	var rec Recording
	if err := json.NewDecoder(rd).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	return &rec, nil
}

// CSVHeader returns the column names used by WriteCSV.
func CSVHeader() []string {
	header := []string{"seq", "timestamp", "slot", "trackingId"}
	for t := JointType(0); int(t) < JointCount; t++ {
		header = append(header,
			t.String()+"_X",
			t.String()+"_Y",
			t.String()+"_CameraX",
			t.String()+"_CameraY",
			t.String()+"_CameraZ",
			t.String()+"_TrackingState",
		)
	}
	return header
}

// WriteCSV writes one row per tracked subject per frame.
func (r *Recording) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	for _, f := range r.Frames {
		for slot, s := range f.Subjects {
			if s == nil || !s.Tracked {
				continue
			}
			row := []string{
				strconv.FormatUint(f.Seq, 10),
				f.Timestamp.Format("2006-01-02T15:04:05.000"),
				strconv.Itoa(slot),
				strconv.FormatUint(s.TrackingID, 10),
			}
			for t := JointType(0); int(t) < JointCount; t++ {
				j := s.Joint(t)
				row = append(row,
					formatFloat(j.Projected.X),
					formatFloat(j.Projected.Y),
					formatFloat(j.Camera.X),
					formatFloat(j.Camera.Y),
					formatFloat(j.Camera.Z),
					j.State.String(),
				)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Recorder accumulates frames. Frames are cloned on entry.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a copy of the frame.
func (r *Recorder) Record(f *Frame) {
	c := f.Clone()
	r.mu.Lock()
	r.frames = append(r.frames, c)
	r.mu.Unlock()
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Snapshot returns a recording that shares no state with the recorder.
func (r *Recorder) Snapshot() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Recording{Frames: append([]Frame(nil), r.frames...)}
}
