package sensor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// DefaultFrameInterval paces frames that carry no timestamps (30 fps).
const DefaultFrameInterval = time.Second / 30

// OpenRecording loads a recording written by a test mode session
// (sensor_data.json) or a msgpack capture (.msgpack).
func OpenRecording(path string) (*skeleton.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	switch filepath.Ext(path) {
	case ".msgpack", ".mp":
		var rec skeleton.Recording
		if err := msgpack.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode recording %s: %w", path, err)
		}
		return &rec, nil
	default:
		return skeleton.ReadRecording(bytes.NewReader(data))
	}
}

// Player replays a recording with its original pacing.
type Player struct {
	rec   *skeleton.Recording
	speed float64

	// OnFrame is called after each frame is delivered with the 1-based index.
	OnFrame func(i, total int)
}

// NewPlayer creates a player. speed scales playback; values <= 0 mean
// realtime.
func NewPlayer(rec *skeleton.Recording, speed float64) *Player {
	if speed <= 0 {
		speed = 1
	}
	return &Player{rec: rec, speed: speed}
}

// Len returns the number of frames in the recording
func (p *Player) Len() int {
	if p.rec == nil {
		return 0
	}
	return len(p.rec.Frames)
}

// Run delivers every frame in order and returns nil at the end of the
// recording. Unlike the bridge, the player never drops frames.
func (p *Player) Run(ctx context.Context, out chan<- *skeleton.Frame) error {
	n := p.Len()
	var prev time.Time
	for i := 0; i < n; i++ {
		f := p.rec.Frames[i].Clone()
		if i > 0 {
			if err := sleep(ctx, p.gap(prev, f.Timestamp)); err != nil {
				return err
			}
		}
		prev = f.Timestamp
		normalize(&f)

		select {
		case out <- &f:
		case <-ctx.Done():
			return ctx.Err()
		}
		if p.OnFrame != nil {
			p.OnFrame(i+1, n)
		}
	}
	return nil
}

func (p *Player) gap(prev, next time.Time) time.Duration {
	d := DefaultFrameInterval
	if !prev.IsZero() && !next.IsZero() && next.After(prev) {
		d = next.Sub(prev)
	}
	return time.Duration(float64(d) / p.speed)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
