// Package painting turns the primary person's hand motion into brush strokes
// and renders them over the frozen snapshot.
package painting

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// testModeStrokeEvery starts a new trail every N recorded frames in test mode,
// so a replay shows separate segments.
const testModeStrokeEvery = 50

// Stroke is one continuous trail of projected points.
type Stroke struct {
	Points []skeleton.Point `json:"points"`
}

// canvas is the ordered list of strokes a session has drawn.
type canvas struct {
	strokes []Stroke
}

func (c *canvas) add(s Stroke) { c.strokes = append(c.strokes, s) }

func (c *canvas) len() int { return len(c.strokes) }

// extend appends to the most recent stroke.
func (c *canvas) extend(p skeleton.Point) {
	last := &c.strokes[len(c.strokes)-1]
	last.Points = append(last.Points, p)
}

// Options configure the sessions a Factory creates.
type Options struct {
	Algorithm Algorithm
	TestMode  bool
	Thickness float64
	Width     int
	Height    int
}

// Factory creates painting sessions with the algorithm resolved once.
type Factory struct {
	opts       Options
	newStroker func() stroker

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFactory resolves the algorithm. rng picks brush colors; nil seeds from time.
func NewFactory(opts Options, rng *rand.Rand) (*Factory, error) {
	ns, err := strokerFor(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	if opts.Thickness <= 0 {
		opts.Thickness = DefaultThickness
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Factory{opts: opts, newStroker: ns, rng: rng}, nil
}

// Options returns the factory options
func (f *Factory) Options() Options {
	return f.opts
}

// New starts a session with a random brush.
func (f *Factory) New() *Session {
	f.mu.Lock()
	brush := RandomBrush(f.rng, f.opts.Thickness)
	f.mu.Unlock()

	s := &Session{
		ID:      uuid.New(),
		Brush:   brush,
		Started: time.Now(),
		width:   f.opts.Width,
		height:  f.opts.Height,
		stroker: f.newStroker(),
	}
	if f.opts.TestMode {
		s.recorder = skeleton.NewRecorder()
	}
	return s
}

// Session is one person's painting. It is used from the kiosk loop only.
type Session struct {
	ID      uuid.UUID
	Brush   Brush
	Started time.Time

	width, height int
	stroker       stroker
	canvas        canvas
	recorder      *skeleton.Recorder
}

// Paint feeds one frame of the primary person into the algorithm.
// In test mode the frame is also recorded.
func (s *Session) Paint(subject *skeleton.Subject, f *skeleton.Frame) {
	newStroke := false
	if s.recorder != nil && f != nil {
		newStroke = s.recorder.Len()%testModeStrokeEvery == 0
		s.recorder.Record(f)
	}
	s.stroker.paint(&s.canvas, subject, newStroke)
}

// Strokes returns a copy of the strokes drawn so far
func (s *Session) Strokes() []Stroke {
	out := make([]Stroke, len(s.canvas.strokes))
	for i, st := range s.canvas.strokes {
		out[i] = Stroke{Points: append([]skeleton.Point(nil), st.Points...)}
	}
	return out
}

// Clear wipes the canvas
func (s *Session) Clear() {
	s.canvas.strokes = nil
}

// TestMode reports whether frames are being recorded
func (s *Session) TestMode() bool {
	return s.recorder != nil
}

// Recording returns the frames recorded in test mode, or nil.
func (s *Session) Recording() *skeleton.Recording {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Snapshot()
}

// Size returns the canvas size in pixels
func (s *Session) Size() (int, int) {
	return s.width, s.height
}
