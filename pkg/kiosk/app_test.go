package kiosk

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/pkg/painting"
	"github.com/teslashibe/go-virtualpainting/pkg/sensor"
	"github.com/teslashibe/go-virtualpainting/pkg/session"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.ImagesDir = filepath.Join(t.TempDir(), "images")
	cfg.Output.BackgroundDir = filepath.Join(t.TempDir(), "backgrounds")
	cfg.Phases = config.PhaseConfig{
		ConfirmPresence:   30 * time.Millisecond,
		CountdownFrom:     3,
		CountdownInterval: 20 * time.Millisecond,
		SnapshotDelay:     20 * time.Millisecond,
		Painting:          10 * time.Second,
		SavingDisplay:     20 * time.Millisecond,
	}
	cfg.Dashboard.Enabled = false
	cfg.Log.Level = "error"
	return cfg
}

// visitRecording is one visitor standing in view for n frames 10ms apart.
func visitRecording(n int) *skeleton.Recording {
	base := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	rec := &skeleton.Recording{}
	for i := 0; i < n; i++ {
		hand := skeleton.Point{X: 1200 + 4*float64(i), Y: 400}
		f := skeleton.NewFrame(uint64(i), map[int]*skeleton.Subject{
			0: skeleton.Synthetic(11, skeleton.Point{X: 950, Y: 600}, 1.5, hand),
		})
		f.Timestamp = base.Add(time.Duration(i) * 10 * time.Millisecond)
		rec.Frames = append(rec.Frames, f.Clone())
	}
	return rec
}

func TestConfigMapping(t *testing.T) {
	cfg := config.Default()

	tc := TrackingConfig(cfg)
	if tc.DefaultDistance != 2.0 || tc.VariationMargin != 0.5 {
		t.Errorf("Unexpected distances %+v", tc)
	}
	if math.Abs(tc.Area.Left-537.6) > 1e-9 || math.Abs(tc.Area.Bottom-1047.6) > 1e-9 {
		t.Errorf("Unexpected area %+v", tc.Area)
	}

	sc := SessionConfig(cfg)
	if sc.SnapshotDelay != 750*time.Millisecond || sc.CountdownFrom != 3 || sc.Painting != 10*time.Second {
		t.Errorf("Unexpected session config %+v", sc)
	}

	cfg.Painting.Algorithm = "hand_tip_right_line"
	po, err := PaintingOptions(cfg)
	if err != nil || po.Algorithm != painting.HandTipRightLine || po.Width != 1920 {
		t.Errorf("Unexpected painting options %+v (%v)", po, err)
	}
	cfg.Painting.Algorithm = "spray"
	if _, err := PaintingOptions(cfg); !errors.Is(err, painting.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestLoopTimer(t *testing.T) {
	ticks := make(chan uint64, 1)
	done := make(chan struct{})
	defer close(done)
	lt := newLoopTimer(ticks, done)

	lt.Start(time.Hour, 1)
	lt.Start(5*time.Millisecond, 2)
	select {
	case gen := <-ticks:
		if gen != 2 {
			t.Errorf("Expected generation 2, got %d", gen)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for tick")
	}

	lt.Start(20*time.Millisecond, 3)
	lt.Stop()
	select {
	case gen := <-ticks:
		t.Errorf("Expected no tick after Stop, got %d", gen)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Frame.Width = 0
	if _, err := New(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestApp_RunBeforeInit(t *testing.T) {
	app, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Run(context.Background()); err == nil {
		t.Error("Expected error when Run is called before Init")
	}
	app.Shutdown()
}

func TestApp_ReplaySavesInterruptedPainting(t *testing.T) {
	cfg := testConfig(t)
	player := sensor.NewPlayer(visitRecording(60), 1)

	app, err := New(cfg, WithSource(player), WithRand(rand.New(rand.NewPCG(1, 1))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := app.Machine().Phase(); got != session.WaitingForPresence {
		t.Errorf("Expected WaitingForPresence after the recording, got %s", got)
	}
	app.Shutdown()

	stats := app.Stats()
	if stats.Saved != 1 || stats.Failed != 0 {
		t.Fatalf("Expected exactly one saved painting, got %+v", stats)
	}

	images, _ := os.ReadDir(cfg.Output.ImagesDir)
	backgrounds, _ := os.ReadDir(cfg.Output.BackgroundDir)
	if len(images) != 1 || !strings.HasSuffix(images[0].Name(), ".png") {
		t.Errorf("Expected one composite, got %v", images)
	}
	if len(backgrounds) != 1 || !strings.HasSuffix(backgrounds[0].Name(), "_original.png") {
		t.Errorf("Expected one background, got %v", backgrounds)
	}
}

// endlessVisitor keeps one visitor in view until its context ends.
type endlessVisitor struct{}

func (endlessVisitor) Run(ctx context.Context, out chan<- *skeleton.Frame) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for i := uint64(0); ; i++ {
		hand := skeleton.Point{X: 1200 + float64(i%100), Y: 400}
		f := skeleton.NewFrame(i, map[int]*skeleton.Subject{
			0: skeleton.Synthetic(12, skeleton.Point{X: 950, Y: 600}, 1.5, hand),
		})
		f.Timestamp = time.Now()
		select {
		case out <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func TestApp_ShutdownSavesPaintingInProgress(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(cfg, WithSource(endlessVisitor{}), WithRand(rand.New(rand.NewPCG(2, 2))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for app.Machine().Phase() != session.Painting {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("Timed out waiting for Painting, phase is %s", app.Machine().Phase())
		}
		time.Sleep(2 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := app.Machine().Phase(); got != session.WaitingForPresence {
		t.Errorf("Expected WaitingForPresence after shutdown, got %s", got)
	}
	if app.Machine().HasPainting() {
		t.Error("Expected the painting session to be released")
	}
	app.Shutdown()

	stats := app.Stats()
	if stats.Saved != 1 || stats.Failed != 0 {
		t.Fatalf("Expected the interrupted painting to be saved, got %+v", stats)
	}
	images, _ := os.ReadDir(cfg.Output.ImagesDir)
	if len(images) != 1 {
		t.Errorf("Expected one composite, got %v", images)
	}
}
