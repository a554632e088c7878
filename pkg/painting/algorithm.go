package painting

import (
	"fmt"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Algorithm selects how hand motion turns into strokes.
type Algorithm int

const (
	// HandRightLine draws a segment from the previous right hand position to the current one.
	HandRightLine Algorithm = iota
	// HandRightPolyline extends one continuous trail with each right hand position.
	HandRightPolyline
	// HandTipRightLine is HandRightLine driven by the right hand tip.
	HandTipRightLine
)

var algorithmNames = map[Algorithm]string{
	HandRightLine:     "hand_right_line",
	HandRightPolyline: "hand_right_polyline",
	HandTipRightLine:  "hand_tip_right_line",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm resolves a configured algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// stroker is the per-session state of an algorithm.
type stroker interface {
	paint(c *canvas, s *skeleton.Subject, newStroke bool)
}

// strokerFor returns a constructor so each session gets fresh state.
func strokerFor(a Algorithm) (func() stroker, error) {
	switch a {
	case HandRightLine:
		return func() stroker { return &lineStroker{joint: skeleton.HandRight} }, nil
	case HandTipRightLine:
		return func() stroker { return &lineStroker{joint: skeleton.HandTipRight} }, nil
	case HandRightPolyline:
		return func() stroker { return &polylineStroker{joint: skeleton.HandRight} }, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, a)
	}
}

// usablePoint returns the projected joint position if the joint can be drawn.
func usablePoint(s *skeleton.Subject, t skeleton.JointType) (skeleton.Point, bool) {
	j := s.Joint(t)
	if j.State == skeleton.NotTracked || !j.Projected.IsFinite() {
		return skeleton.Point{}, false
	}
	return j.Projected, true
}

type lineStroker struct {
	joint skeleton.JointType
	last  *skeleton.Point
}

func (l *lineStroker) paint(c *canvas, s *skeleton.Subject, _ bool) {
	p, ok := usablePoint(s, l.joint)
	if !ok {
		return
	}
	if l.last != nil {
		c.add(Stroke{Points: []skeleton.Point{*l.last, p}})
	}
	l.last = &p
}

type polylineStroker struct {
	joint skeleton.JointType
}

func (pl *polylineStroker) paint(c *canvas, s *skeleton.Subject, newStroke bool) {
	p, ok := usablePoint(s, pl.joint)
	if !ok {
		return
	}
	if newStroke || c.len() == 0 {
		c.add(Stroke{})
	}
	c.extend(p)
}
