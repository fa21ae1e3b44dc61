package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/breathlab/breathcam/pkg/hub"
	"github.com/breathlab/breathcam/pkg/videoio"
)

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Detecting bool              `json:"detecting"`
	Session   string            `json:"session"`
	Device    *DeviceInfo       `json:"device,omitempty"`
	Backends  []videoio.Backend `json:"backends"`
	Preview   PreviewClients    `json:"preview"`
}

// DeviceInfo describes the bound capture device, if any.
type DeviceInfo struct {
	Backend string               `json:"backend"`
	Facing  videoio.Facing       `json:"facing"`
	Stats   *videoio.DeviceStats `json:"stats,omitempty"`
}

// PreviewClients reports websocket client counts.
type PreviewClients struct {
	Preview int `json:"preview"`
	Status  int `json:"status"`
}

// handleStatus returns the controller's current state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		Detecting: s.controller.Detecting(),
		Session:   s.controller.Session().ID(),
		Backends:  videoio.AvailableBackends(),
		Preview: PreviewClients{
			Preview: s.previewHub.ClientCount(),
			Status:  s.statusHub.ClientCount(),
		},
	}

	if dev := s.controller.Session().Input(); dev != nil {
		info := &DeviceInfo{
			Backend: dev.Name(),
			Facing:  dev.Facing(),
		}
		if ds, ok := dev.(videoio.DeviceWithStats); ok {
			stats := ds.Stats()
			info.Stats = &stats
		}
		resp.Device = info
	}

	return c.JSON(resp)
}

// handleStart queues a session start. The response acknowledges the
// request; the detecting flag flips once the start completes and is
// pushed over /ws/status.
func (s *Server) handleStart(c *fiber.Ctx) error {
	s.controller.Start()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued": "start",
		"at":     time.Now().Format(time.RFC3339),
	})
}

// handleStop queues a session stop, symmetric to handleStart.
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.controller.Stop()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued": "stop",
		"at":     time.Now().Format(time.RFC3339),
	})
}

// handleStatusWS streams state transitions to a websocket client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send the current state first so the UI renders immediately.
	if err := c.WriteJSON(fiber.Map{"detecting": s.controller.Detecting(), "at": time.Now()}); err != nil {
		c.Close()
		return
	}

	hub.NewClient(s.statusHub, c).Run()
}

// handlePreviewWS streams binary JPEG frames to a websocket client.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.NewClient(s.previewHub, c).Run()
}
