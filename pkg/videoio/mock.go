package videoio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MockDevice is a mock capture device for testing.
// It generates a synthetic moving gradient pattern.
type MockDevice struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	frameCh chan Frame
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Stats
	framesCaptured atomic.Int64
	framesDropped  atomic.Int64

	// Synthetic pattern state
	tick int

	// Injected failures
	startErr error
}

// MockDeviceOption configures a MockDevice.
type MockDeviceOption func(*MockDevice)

// WithStartError makes Start fail with the given error.
func WithStartError(err error) MockDeviceOption {
	return func(m *MockDevice) {
		m.startErr = err
	}
}

// NewMockDevice creates a new mock capture device.
func NewMockDevice(cfg Config, logger *slog.Logger, opts ...MockDeviceOption) *MockDevice {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockDevice{
		cfg:     cfg,
		logger:  logger,
		frameCh: make(chan Frame, 4),
		stopCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start begins generating frames.
func (m *MockDevice) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.startErr != nil {
		return m.startErr
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.frameCh = make(chan Frame, 4)

	// The loop owns the channels it is handed: it is the only closer of
	// frameCh, so a send can never hit a closed channel, and a fresh
	// Start never races an older loop still winding down.
	go m.generateLoop(ctx, m.stopCh, m.doneCh, m.frameCh)

	m.logger.Info("mock capture device started",
		"facing", m.cfg.Facing,
		"framerate", m.cfg.Framerate,
	)

	return nil
}

func (m *MockDevice) generateLoop(ctx context.Context, stopCh, doneCh chan struct{}, frameCh chan Frame) {
	defer func() {
		close(frameCh)
		close(doneCh)
	}()

	ticker := time.NewTicker(m.cfg.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			frame := m.generateFrame()
			select {
			case frameCh <- frame:
				m.framesCaptured.Add(1)
			default:
				m.framesDropped.Add(1)
				m.logger.Debug("mock device: buffer full, dropping frame")
			}
		}
	}
}

// generateFrame renders a small moving gradient and JPEG-encodes it.
// The pattern shifts every tick so consumers can tell frames apart.
func (m *MockDevice) generateFrame() Frame {
	m.mu.Lock()
	m.tick++
	tick := m.tick
	m.mu.Unlock()

	// Render at a reduced size; tests never need full resolution.
	w, h := m.cfg.Width/8, m.cfg.Height/8
	if w < 16 {
		w = 16
	}
	if h < 16 {
		h = 16
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*255/w + tick*7) % 256),
				G: uint8((y * 255) / h),
				B: uint8(tick % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: m.cfg.Quality})

	return Frame{
		Data:      buf.Bytes(),
		Width:     m.cfg.Width,
		Height:    m.cfg.Height,
		Seq:       int64(tick),
		Timestamp: time.Now(),
	}
}

// Stop halts frame generation. It returns once the generator loop has
// exited and closed the frame channel.
func (m *MockDevice) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}

	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done

	m.logger.Info("mock capture device stopped")

	return nil
}

// Read reads the next frame.
func (m *MockDevice) Read(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case frame, ok := <-m.frameCh:
		if !ok {
			return Frame{}, io.EOF
		}
		return frame, nil
	}
}

// Frames returns the frame channel.
func (m *MockDevice) Frames() <-chan Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameCh
}

// Config returns the capture configuration.
func (m *MockDevice) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockDevice) Name() string {
	return "mock"
}

// Facing returns the configured facing.
func (m *MockDevice) Facing() Facing {
	return m.cfg.Facing
}

// Close releases resources.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Stop()
	return nil
}

// Stats returns device statistics.
func (m *MockDevice) Stats() DeviceStats {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	return DeviceStats{
		FramesCaptured: m.framesCaptured.Load(),
		FramesDropped:  m.framesDropped.Load(),
		Running:        running,
		Backend:        "mock",
	}
}

// Ensure MockDevice implements DeviceWithStats.
var _ DeviceWithStats = (*MockDevice)(nil)
