package sensor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"sync"
)

// LiveFeed holds the latest color frame. While frozen, updates are
// discarded so the frozen frame stays on screen.
type LiveFeed struct {
	width, height int

	mu      sync.RWMutex
	current *image.RGBA
	frozen  bool
	updates uint64
}

// NewLiveFeed creates a feed whose blank frame is width x height.
func NewLiveFeed(width, height int) *LiveFeed {
	return &LiveFeed{width: width, height: height}
}

// UpdateJPEG decodes a JPEG color frame into the feed.
func (f *LiveFeed) UpdateJPEG(data []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode color frame: %w", err)
	}
	f.Update(img)
	return nil
}

// Update replaces the current frame unless the feed is frozen.
func (f *LiveFeed) Update(img image.Image) {
	f.mu.RLock()
	frozen := f.frozen
	f.mu.RUnlock()
	if frozen {
		return
	}

	rgba := toRGBA(img)

	f.mu.Lock()
	if !f.frozen {
		f.current = rgba
		f.updates++
	}
	f.mu.Unlock()
}

// ResumeFeed lets updates through again.
func (f *LiveFeed) ResumeFeed() {
	f.mu.Lock()
	f.frozen = false
	f.mu.Unlock()
}

// FreezeFeed stops updates and returns a private copy of the current frame,
// or a blank frame if none has arrived yet.
func (f *LiveFeed) FreezeFeed() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frozen = true
	return f.copyLocked()
}

// Snapshot returns a copy of the current frame without freezing.
func (f *LiveFeed) Snapshot() *image.RGBA {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.copyLocked()
}

// Frozen reports whether updates are being discarded
func (f *LiveFeed) Frozen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frozen
}

// Updates returns how many frames were accepted
func (f *LiveFeed) Updates() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updates
}

func (f *LiveFeed) copyLocked() *image.RGBA {
	if f.current == nil {
		return image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	}
	c := image.NewRGBA(f.current.Bounds())
	copy(c.Pix, f.current.Pix)
	return c
}

// toRGBA converts img to a fresh RGBA image anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
