package sensor

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Demo script, in frames at DefaultFrameInterval.
const (
	demoAbsentFrames  = 90  // 3s nobody in view
	demoPresentFrames = 540 // 18s: confirm, countdown, snapshot, paint, save
	demoSlot          = 1
	demoDistance      = 1.6
	demoHandRadius    = 180.0
	demoColorEvery    = 15
)

// Demo generates a visitor who steps in, paints circles with the right hand
// and walks away, over and over. It lets the kiosk run without hardware.
type Demo struct {
	feed   *LiveFeed
	width  int
	height int
	chest  skeleton.Point
}

// NewDemo creates a demo source. If feed is set it also receives a
// synthetic color frame.
func NewDemo(feed *LiveFeed, width, height int) *Demo {
	return &Demo{
		feed:   feed,
		width:  width,
		height: height,
		chest:  skeleton.Point{X: float64(width) / 2, Y: float64(height) * 0.55},
	}
}

// Frame returns the body frame for a frame index of the script.
func (d *Demo) Frame(i uint64) *skeleton.Frame {
	cycle := uint64(demoAbsentFrames + demoPresentFrames)
	pos := i % cycle
	visitor := i/cycle + 1

	slots := map[int]*skeleton.Subject{}
	if pos >= demoAbsentFrames {
		angle := float64(pos-demoAbsentFrames) / 30 * math.Pi
		hand := skeleton.Point{
			X: d.chest.X + 250 + demoHandRadius*math.Cos(angle),
			Y: d.chest.Y - 200 + demoHandRadius*math.Sin(angle),
		}
		slots[demoSlot] = skeleton.Synthetic(1000+visitor, d.chest, demoDistance, hand)
	}
	f := skeleton.NewFrame(i, slots)
	f.Timestamp = time.Now()
	return f
}

// Run emits script frames until ctx is done.
func (d *Demo) Run(ctx context.Context, out chan<- *skeleton.Frame) error {
	ticker := time.NewTicker(DefaultFrameInterval)
	defer ticker.Stop()

	for i := uint64(0); ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if d.feed != nil && i%demoColorEvery == 0 {
			d.feed.Update(d.backdrop(i))
		}
		select {
		case out <- d.Frame(i):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// backdrop is a slowly shifting vertical gradient.
func (d *Demo) backdrop(i uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	shift := uint8(i / demoColorEvery)
	for y := 0; y < d.height; y++ {
		c := color.RGBA{R: uint8(y * 255 / max(d.height, 1)), G: 80 + shift, B: 140, A: 255}
		for x := 0; x < d.width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
