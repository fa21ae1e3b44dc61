// Package web serves the breathcam UI: a live preview with start and
// stop controls over the capture session.
package web

import (
	_ "embed"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/breathlab/breathcam/pkg/capture"
	"github.com/breathlab/breathcam/pkg/hub"
	"github.com/breathlab/breathcam/pkg/videoio"
)

//go:embed index.html
var indexHTML []byte

// Server exposes the capture controller over HTTP and websockets.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	controller *capture.Controller

	statusHub  *hub.Hub
	previewHub *hub.Hub

	states      <-chan capture.State
	unsubscribe func()
	closeOnce   sync.Once
}

// NewServer creates the web server bound to a capture controller.
func NewServer(port string, controller *capture.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:       port,
		logger:     logger,
		controller: controller,
		statusHub:  hub.New("status", logger),
		previewHub: hub.New("preview", logger),
	}
	s.states, s.unsubscribe = controller.Subscribe()

	app := fiber.New(fiber.Config{
		AppName:               "breathcam",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(indexHTML)
	})

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s
}

// Start runs the hubs and listens. It blocks until shutdown.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.previewHub.Run()
	go s.watchStates()

	s.logger.Info("web ui listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// Shutdown stops accepting connections and detaches from the controller.
func (s *Server) Shutdown() error {
	s.closeOnce.Do(s.unsubscribe)
	return s.app.Shutdown()
}

// watchStates forwards controller state transitions to status clients.
func (s *Server) watchStates() {
	for st := range s.states {
		s.statusHub.BroadcastJSON(st)
	}
}

// WriteFrame broadcasts a preview frame to all websocket clients.
// It implements preview.FrameSink.
func (s *Server) WriteFrame(frame videoio.Frame) {
	s.previewHub.BroadcastBinary(frame.Data)
}
