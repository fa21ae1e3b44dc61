package videoio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// openCVDevice captures frames from a real camera via gocv.
type openCVDevice struct {
	cfg    Config
	logger *slog.Logger

	webcam *gocv.VideoCapture

	mu      sync.Mutex
	running bool
	closed  bool
	frameCh chan Frame
	stopCh  chan struct{}
	doneCh  chan struct{}

	framesCaptured atomic.Int64
	framesDropped  atomic.Int64
}

// newOpenCVDevice opens the camera at the index configured for cfg.Facing.
func newOpenCVDevice(cfg Config, logger *slog.Logger) (Device, error) {
	index := cfg.Index(cfg.Facing)
	if index < 0 {
		return nil, fmt.Errorf("no device index configured for facing %q", cfg.Facing)
	}

	webcam, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, fmt.Errorf("camera %d did not open", index)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	webcam.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &openCVDevice{
		cfg:     cfg,
		logger:  logger,
		webcam:  webcam,
		frameCh: make(chan Frame, 4),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins the capture loop.
func (d *openCVDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return io.ErrClosedPipe
	}
	if d.running {
		return nil
	}

	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.frameCh = make(chan Frame, 4)

	// The loop is the only closer of frameCh; Stop signals stopCh and
	// waits for doneCh, so sends never race a close and the webcam is
	// never read by two loops at once.
	go d.captureLoop(ctx, d.stopCh, d.doneCh, d.frameCh)

	d.logger.Info("camera capture started",
		"facing", d.cfg.Facing,
		"index", d.cfg.Index(d.cfg.Facing),
	)

	return nil
}

func (d *openCVDevice) captureLoop(ctx context.Context, stopCh, doneCh chan struct{}, frameCh chan Frame) {
	mat := gocv.NewMat()
	defer func() {
		mat.Close()
		close(frameCh)
		close(doneCh)
	}()

	ticker := time.NewTicker(d.cfg.FrameInterval())
	defer ticker.Stop()

	var seq int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if ok := d.webcam.Read(&mat); !ok || mat.Empty() {
				d.logger.Debug("camera read returned no frame")
				continue
			}

			buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat,
				[]int{gocv.IMWriteJpegQuality, d.cfg.Quality})
			if err != nil {
				d.logger.Warn("jpeg encode failed", "error", err)
				continue
			}

			seq++
			frame := Frame{
				Data:      append([]byte(nil), buf.GetBytes()...),
				Width:     mat.Cols(),
				Height:    mat.Rows(),
				Seq:       seq,
				Timestamp: time.Now(),
			}
			buf.Close()

			select {
			case frameCh <- frame:
				d.framesCaptured.Add(1)
			default:
				d.framesDropped.Add(1)
			}
		}
	}
}

// Stop halts the capture loop and waits for it to exit. The camera
// stays open for a later Start.
func (d *openCVDevice) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}

	d.running = false
	close(d.stopCh)
	done := d.doneCh
	d.mu.Unlock()

	<-done

	d.logger.Info("camera capture stopped", "facing", d.cfg.Facing)

	return nil
}

// Read reads the next frame.
func (d *openCVDevice) Read(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case frame, ok := <-d.frameCh:
		if !ok {
			return Frame{}, io.EOF
		}
		return frame, nil
	}
}

// Frames returns the frame channel.
func (d *openCVDevice) Frames() <-chan Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frameCh
}

// Config returns the capture configuration.
func (d *openCVDevice) Config() Config {
	return d.cfg
}

// Name returns "opencv".
func (d *openCVDevice) Name() string {
	return "opencv"
}

// Facing returns the configured facing.
func (d *openCVDevice) Facing() Facing {
	return d.cfg.Facing
}

// Close stops capture and releases the camera.
func (d *openCVDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.Stop()
	return d.webcam.Close()
}

// Stats returns device statistics.
func (d *openCVDevice) Stats() DeviceStats {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	return DeviceStats{
		FramesCaptured: d.framesCaptured.Load(),
		FramesDropped:  d.framesDropped.Load(),
		Running:        running,
		Backend:        "opencv",
	}
}

var _ DeviceWithStats = (*openCVDevice)(nil)
