// breathcam serves a live camera preview with start/stop detection
// controls at http://localhost:8090 (BREATHCAM_PORT to override).
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/breathlab/breathcam/internal/config"
	"github.com/breathlab/breathcam/internal/log"
	"github.com/breathlab/breathcam/pkg/capture"
	"github.com/breathlab/breathcam/pkg/preview"
	"github.com/breathlab/breathcam/pkg/videoio"
	"github.com/breathlab/breathcam/pkg/web"
)

func main() {
	log.Init(config.LogLevel())
	logger := log.With("component", "breathcam")

	cfg := videoio.DefaultConfig()
	if backend := config.CameraBackend(); backend != "" {
		cfg.Backend = videoio.Backend(backend)
	}
	cfg.DeviceIndex = map[videoio.Facing]int{
		videoio.FacingFront: config.FrontDeviceIndex(),
		videoio.FacingBack:  config.BackDeviceIndex(),
	}

	controller := capture.NewController(cfg, logger)

	// Camera selection: front first, then back. A missing camera is
	// not fatal; the UI just shows an empty preview.
	res := controller.Configure()
	switch res.Status {
	case capture.ConfigureOK:
		logger.Info("camera configured", "facing", res.Facing)
	default:
		logger.Warn("running without camera", "status", res.Status.String(), "error", res.Err)
	}

	surface := preview.NewSurface(controller, logger)
	surface.Layout(cfg.Width, cfg.Height)

	server := web.NewServer(config.Port(), controller, logger)
	surface.Attach(server)
	server.StartAsync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	server.Shutdown()
	controller.Close()
	surface.Close()
}
