package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-virtualpainting/pkg/hub"
	"github.com/teslashibe/go-virtualpainting/pkg/presence"
)

// handleStatus returns the latest session status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.statusMu.RLock()
	st := s.status
	s.statusMu.RUnlock()
	return c.JSON(st)
}

// handleDetections returns the debug view rows
func (s *Server) handleDetections(c *fiber.Ctx) error {
	s.detectionsMu.RLock()
	rows := s.detections
	s.detectionsMu.RUnlock()
	if rows == nil {
		rows = []presence.DetectionState{}
	}
	return c.JSON(rows)
}

// handleSaves returns image store counters and the recent gallery
func (s *Server) handleSaves(c *fiber.Ctx) error {
	if s.OnSaves == nil {
		return c.JSON(SavesView{})
	}
	return c.JSON(s.OnSaves(c.UserContext()))
}

// handleHubWS attaches a websocket to a hub until it disconnects
func (s *Server) handleHubWS(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		hub.NewClient(h, conn).Run()
	}
}
