// Package web serves the kiosk dashboard: phase and countdown, the debug
// detection view, save statistics and a live event stream.
package web

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/events"
	"github.com/teslashibe/go-virtualpainting/pkg/gallery"
	"github.com/teslashibe/go-virtualpainting/pkg/hub"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
	"github.com/teslashibe/go-virtualpainting/pkg/presence"
	"github.com/teslashibe/go-virtualpainting/pkg/session"
)

// SavesView is the /api/saves payload
type SavesView struct {
	Stats        imagestore.Stats `json:"stats"`
	Recent       []gallery.Entry  `json:"recent,omitempty"`
	GalleryError string           `json:"gallery_error,omitempty"`
}

// Server is the dashboard server
type Server struct {
	app  *fiber.App
	port string

	status   session.Status
	statusMu sync.RWMutex

	detections   []presence.DetectionState
	detectionsMu sync.RWMutex

	// limiter throttles status broadcasts that do not change the phase or countdown
	limiter *rate.Limiter

	statusHub *hub.Hub
	eventsHub *hub.Hub

	// OnSaves reports save statistics; nil serves an empty view
	OnSaves func(ctx context.Context) SavesView
}

// NewServer creates the dashboard
func NewServer(cfg config.DashboardConfig) *Server {
	limit := rate.Limit(cfg.StatusRate)
	if cfg.StatusRate <= 0 {
		limit = rate.Inf
	}
	s := &Server{
		port:      cfg.Port,
		limiter:   rate.NewLimiter(limit, 1),
		statusHub: hub.New("status", hub.RetainLast()),
		eventsHub: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Virtual Painting Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/detections", s.handleDetections)
	api.Get("/saves", s.handleSaves)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleHubWS(s.statusHub)))
	app.Get("/ws/events", websocket.New(s.handleHubWS(s.eventsHub)))

	s.app = app
	return s
}

// Start runs the hubs and serves until ctx is done or Listen fails.
func (s *Server) Start(ctx context.Context) error {
	go s.statusHub.Run(ctx)
	go s.eventsHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.Warn("dashboard shutdown failed", "error", err)
		}
	}()

	log.Info("dashboard listening", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// UpdateStatus stores the latest status. Phase and countdown changes are
// broadcast at once; other changes are throttled.
func (s *Server) UpdateStatus(st session.Status) {
	s.statusMu.Lock()
	changed := st.Phase != s.status.Phase || st.Countdown != s.status.Countdown
	s.status = st
	s.statusMu.Unlock()

	if changed || s.limiter.Allow() {
		if err := s.statusHub.BroadcastJSON(st); err != nil {
			log.Debug("status broadcast failed", "error", err)
		}
	}
}

// UpdateDetections replaces the debug detection rows
func (s *Server) UpdateDetections(rows []presence.DetectionState) {
	s.detectionsMu.Lock()
	s.detections = rows
	s.detectionsMu.Unlock()
}

// ForwardEvents streams events to /ws/events clients until sub closes or
// ctx is done.
func (s *Server) ForwardEvents(ctx context.Context, sub <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			data, err := e.Marshal()
			if err != nil {
				log.Debug("event encode failed", "type", string(e.Type), "error", err)
				continue
			}
			s.eventsHub.Broadcast(hub.NewJSONMessage(data))
		}
	}
}

// App returns the fiber app for tests and embedding
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
