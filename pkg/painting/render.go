package painting

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// capSides is the polygon resolution of round stroke caps.
const capSides = 16

type vec struct{ x, y float64 }

// Render draws the session's strokes onto dst.
func (s *Session) Render(dst draw.Image) {
	b := dst.Bounds()
	if b.Empty() || len(s.canvas.strokes) == 0 {
		return
	}

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	half := s.Brush.Thickness / 2
	off := vec{float64(b.Min.X), float64(b.Min.Y)}

	for _, st := range s.canvas.strokes {
		pts := st.Points
		for i, p := range pts {
			addCircle(r, vec{p.X - off.x, p.Y - off.y}, half)
			if i > 0 {
				q := pts[i-1]
				addSegment(r, vec{q.X - off.x, q.Y - off.y}, vec{p.X - off.x, p.Y - off.y}, half)
			}
		}
	}

	r.Draw(dst, b, image.NewUniform(s.Brush.Color), image.Point{})
}

// Composite returns a new image of the session size with background
// underneath and the strokes on top. background is not modified.
func (s *Session) Composite(background image.Image) *image.RGBA {
	w, h := s.width, s.height
	if background != nil && (w == 0 || h == 0) {
		w, h = background.Bounds().Dx(), background.Bounds().Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if background != nil {
		draw.Draw(out, out.Bounds(), background, background.Bounds().Min, draw.Src)
	} else {
		draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	s.Render(out)
	return out
}

// addSegment adds the body of a thick line from a to b.
func addSegment(r *vector.Rasterizer, a, b vec, half float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	addPolygon(r, []vec{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

// addCircle adds a round cap centered on c.
func addCircle(r *vector.Rasterizer, c vec, radius float64) {
	pts := make([]vec, capSides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSides
		pts[i] = vec{c.x + radius*math.Cos(a), c.y + radius*math.Sin(a)}
	}
	addPolygon(r, pts)
}

// addPolygon adds a closed path. Every polygon is wound the same way so
// overlapping shapes union instead of cancelling.
func addPolygon(r *vector.Rasterizer, pts []vec) {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	r.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.x), float32(p.y))
	}
	r.ClosePath()
}

func signedArea(pts []vec) float64 {
	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.x*q.y - q.x*p.y
	}
	return sum / 2
}

// Bounds returns the box around all stroke points, or an empty rectangle.
func (s *Session) Bounds() image.Rectangle {
	var pts []skeleton.Point
	for _, st := range s.canvas.strokes {
		pts = append(pts, st.Points...)
	}
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}
