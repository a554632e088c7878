// Package kiosk wires the painting kiosk together and runs its event loop.
//
// One goroutine owns the session machine: it selects over sensor frames,
// timer ticks and shutdown. The image store worker, the dashboard and the
// event publishers run beside it and only see copies.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/events"
	"github.com/teslashibe/go-virtualpainting/pkg/gallery"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
	"github.com/teslashibe/go-virtualpainting/pkg/painting"
	"github.com/teslashibe/go-virtualpainting/pkg/presence"
	"github.com/teslashibe/go-virtualpainting/pkg/sensor"
	"github.com/teslashibe/go-virtualpainting/pkg/session"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
	"github.com/teslashibe/go-virtualpainting/pkg/tracking"
	"github.com/teslashibe/go-virtualpainting/pkg/upload"
	"github.com/teslashibe/go-virtualpainting/pkg/web"
)

const (
	frameBuffer  = 4
	drainTimeout = 15 * time.Second
	recentSaves  = 20
)

// App is the kiosk orchestrator.
type App struct {
	config config.Config
	area   skeleton.Rect

	source  sensor.Source
	demo    bool
	rng     *rand.Rand
	started time.Time

	feed      *sensor.LiveFeed
	tracker   *tracking.Tracker
	machine   *session.Machine
	store     *imagestore.Store
	bus       *events.Bus
	publisher events.Publisher
	gallery   *gallery.Gallery
	dashboard *web.Server
	timer     *loopTimer

	frames chan *skeleton.Frame
	ticks  chan uint64
	done   chan struct{}

	storeCancel context.CancelFunc
}

// Option customizes an App
type Option func(*App)

// WithSource replaces the sensor bridge, e.g. with a recording player.
func WithSource(src sensor.Source) Option {
	return func(a *App) { a.source = src }
}

// WithDemo drives the kiosk with a scripted visitor instead of a sensor.
func WithDemo() Option {
	return func(a *App) { a.demo = true }
}

// WithRand fixes the brush color sequence.
func WithRand(rng *rand.Rand) Option {
	return func(a *App) { a.rng = rng }
}

// New validates cfg and creates an App. Call Init before Run.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	a := &App{
		config: cfg,
		area:   DetectionArea(cfg),
		frames: make(chan *skeleton.Frame, frameBuffer),
		ticks:  make(chan uint64, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Init builds every component. Optional integrations that fail to come up
// are logged and left out; the kiosk itself only needs the sensor.
func (a *App) Init(ctx context.Context) error {
	cfg := a.config

	popts, err := PaintingOptions(cfg)
	if err != nil {
		return fmt.Errorf("painting: %w", err)
	}
	painter, err := painting.NewFactory(popts, a.rng)
	if err != nil {
		return fmt.Errorf("painting: %w", err)
	}

	a.feed = sensor.NewLiveFeed(cfg.Frame.Width, cfg.Frame.Height)
	if a.source == nil {
		if a.demo {
			a.source = sensor.NewDemo(a.feed, cfg.Frame.Width, cfg.Frame.Height)
		} else {
			bridge, err := sensor.NewBridge(cfg.Sensor, a.feed)
			if err != nil {
				return fmt.Errorf("sensor: %w", err)
			}
			a.source = bridge
		}
	}

	a.bus = events.NewBus()
	sinks := []imagestore.Sink{events.NewSaveSink(a.bus)}

	if cfg.Gallery.Enabled {
		a.gallery = gallery.New(cfg.Gallery)
		sinks = append(sinks, a.gallery)
	}

	uploader, err := upload.Open(ctx, cfg.Upload)
	if err != nil {
		log.Warn("uploads disabled", "backend", cfg.Upload.Backend, "error", err)
	} else if uploader != nil {
		sinks = append(sinks, upload.NewSink(uploader, cfg.Upload.Prefix))
	}

	a.publisher, err = events.Open(cfg.Events)
	if err != nil {
		log.Warn("event publishing disabled", "backend", cfg.Events.Backend, "error", err)
		a.publisher = nil
	}

	a.store = imagestore.New(imagestore.WithSinks(sinks...))
	a.tracker = tracking.New(TrackingConfig(cfg))
	a.timer = newLoopTimer(a.ticks, a.done)
	a.machine = session.New(SessionConfig(cfg), session.Deps{
		Tracker:  a.tracker,
		Timer:    a.timer,
		Stage:    a.feed,
		Saver:    a.store,
		Painter:  painter,
		Notifier: a.bus,
	})

	if cfg.Dashboard.Enabled {
		a.dashboard = web.NewServer(cfg.Dashboard)
		a.dashboard.OnSaves = a.saves
	}

	log.Info("kiosk initialized",
		"algorithm", cfg.Painting.Algorithm,
		"test_mode", cfg.Painting.TestMode,
		"images", cfg.Output.ImagesDir,
		"backgrounds", cfg.Output.BackgroundDir,
		"sinks", len(sinks))
	return nil
}

// Run starts the background workers and runs the event loop until ctx is
// done or the source ends. Either way the visitor is treated as gone, so an
// unfinished painting is still saved.
func (a *App) Run(ctx context.Context) error {
	if a.machine == nil {
		return errors.New("kiosk: Run called before Init")
	}
	a.started = time.Now()

	storeCtx, cancel := context.WithCancel(context.Background())
	a.storeCancel = cancel
	go a.store.Run(storeCtx)

	if a.publisher != nil {
		go events.Forward(ctx, a.bus.Subscribe(), a.publisher)
	}
	if a.dashboard != nil {
		go a.dashboard.ForwardEvents(ctx, a.bus.Subscribe())
		go func() {
			if err := a.dashboard.Start(ctx); err != nil {
				log.Error("dashboard stopped", "error", err)
			}
		}()
	}

	srcCtx, stopSource := context.WithCancel(ctx)
	defer stopSource()
	srcDone := make(chan error, 1)
	go func() { srcDone <- a.source.Run(srcCtx, a.frames) }()

	log.Info("kiosk running", "phase", a.machine.Phase().String())
	for {
		select {
		case <-ctx.Done():
			a.endVisit("shutdown")
			return nil

		case f := <-a.frames:
			a.handleFrame(f)

		case gen := <-a.ticks:
			if err := a.machine.Tick(gen); err != nil && !errors.Is(err, session.ErrStaleTick) {
				log.Debug("tick ignored", "error", err)
			}
			a.publishStatus()

		case err := <-srcDone:
			if ctx.Err() != nil {
				a.endVisit("shutdown")
				return nil
			}
			if err != nil {
				a.endVisit("source failed")
				return fmt.Errorf("sensor source: %w", err)
			}
			a.drainFrames()
			a.endVisit("source ended")
			return nil
		}
	}
}

// endVisit treats the visitor as gone, so a painting in progress is queued
// before the loop stops.
func (a *App) endVisit(reason string) {
	if err := a.machine.Fire(session.PersonLeaves); err == nil {
		log.Info("visit ended by kiosk", "reason", reason, "saves", a.machine.SavesRequested())
	}
	a.publishStatus()
}

// drainFrames handles frames the source delivered before it ended.
func (a *App) drainFrames() {
	for {
		select {
		case f := <-a.frames:
			a.handleFrame(f)
		default:
			return
		}
	}
}

func (a *App) handleFrame(f *skeleton.Frame) {
	a.machine.HandleFrame(f)

	if a.dashboard == nil {
		return
	}
	a.publishStatus()
	if a.config.Painting.DebugView {
		primary := -1
		if p, ok := a.machine.Primary(); ok {
			primary = p.Slot
		}
		a.dashboard.UpdateDetections(presence.Inspect(f, a.area, primary))
	}
}

func (a *App) publishStatus() {
	if a.dashboard != nil {
		a.dashboard.UpdateStatus(a.machine.Status())
	}
}

// saves feeds /api/saves
func (a *App) saves(ctx context.Context) web.SavesView {
	v := web.SavesView{Stats: a.store.Stats()}
	if a.gallery == nil {
		return v
	}
	recent, err := a.gallery.Recent(ctx, recentSaves)
	if err != nil {
		v.GalleryError = err.Error()
		return v
	}
	v.Recent = recent
	return v
}

// Machine returns the session machine
func (a *App) Machine() *session.Machine {
	return a.machine
}

// Stats returns the image store counters
func (a *App) Stats() imagestore.Stats {
	return a.store.Stats()
}

// Shutdown stops the timer, lets queued saves finish and closes the
// integrations. It is safe to call after a failed Init.
func (a *App) Shutdown() {
	select {
	case <-a.done:
		return
	default:
		close(a.done)
	}

	if a.timer != nil {
		a.timer.Stop()
	}
	if a.store != nil {
		a.store.Close()
		if a.storeCancel != nil {
			select {
			case <-a.store.Drained():
			case <-time.After(drainTimeout):
				log.Warn("save queue did not drain in time", "pending", a.store.Stats().Pending)
			}
			a.storeCancel()
		}
	}
	if a.bus != nil {
		a.bus.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Warn("event publisher close failed", "error", err)
		}
	}
	if a.gallery != nil {
		if err := a.gallery.Close(); err != nil {
			log.Debug("gallery close failed", "error", err)
		}
	}
	if a.dashboard != nil {
		a.dashboard.Shutdown()
	}

	if a.store != nil {
		stats := a.store.Stats()
		log.Info("kiosk stopped", "uptime", time.Since(a.started).Round(time.Second).String(),
			"saved", stats.Saved, "failed", stats.Failed)
	}
}
