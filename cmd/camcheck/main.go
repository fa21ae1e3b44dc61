// camcheck probes for a camera the way breathcam does (front facing
// first, then back), grabs one frame and writes it to camcheck.jpg.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/breathlab/breathcam/internal/config"
	"github.com/breathlab/breathcam/internal/log"
	"github.com/breathlab/breathcam/pkg/videoio"
)

func main() {
	log.Init(config.LogLevel())

	cfg := videoio.DefaultConfig()
	if backend := config.CameraBackend(); backend != "" {
		cfg.Backend = videoio.Backend(backend)
	}
	cfg.DeviceIndex = map[videoio.Facing]int{
		videoio.FacingFront: config.FrontDeviceIndex(),
		videoio.FacingBack:  config.BackDeviceIndex(),
	}

	dev, err := videoio.OpenPreferred(cfg, log.L())
	if err != nil {
		fmt.Fprintf(os.Stderr, "no camera found: %v\n", err)
		fmt.Fprintln(os.Stderr, "try CAMERA_BACKEND=mock to verify the pipeline without hardware")
		os.Exit(1)
	}
	defer dev.Close()

	fmt.Printf("opened %s camera (%s backend)\n", dev.Facing(), dev.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start failed: %v\n", err)
		os.Exit(1)
	}

	frame, err := dev.Read(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no frame: %v\n", err)
		os.Exit(1)
	}
	dev.Stop()

	if err := os.WriteFile("camcheck.jpg", frame.Data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("captured %dx%d frame (%d bytes) -> camcheck.jpg\n",
		frame.Width, frame.Height, len(frame.Data))

	if ds, ok := dev.(videoio.DeviceWithStats); ok {
		stats := ds.Stats()
		fmt.Printf("stats: captured=%d dropped=%d\n", stats.FramesCaptured, stats.FramesDropped)
	}
}
