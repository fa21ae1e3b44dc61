// Package capture owns the camera capture session for breathcam.
//
// A Session coordinates at most one video input. A Controller serializes
// all configure/start/stop requests through a single worker goroutine so
// session state can never be mutated from two goroutines at once, and
// publishes state transitions to subscribers.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/breathlab/breathcam/pkg/videoio"
)

// ErrInputExists is returned when a session already has an input bound.
var ErrInputExists = errors.New("session already has an input")

// ErrNilInput is returned when a nil device is offered as an input.
var ErrNilInput = errors.New("nil device cannot be a session input")

// Session coordinates one hardware video input for live capture.
// A session without an input is still startable; it just produces no
// frames. Sessions are driven exclusively by a Controller.
type Session struct {
	id     string
	logger *slog.Logger

	mu      sync.RWMutex
	input   videoio.Device
	running bool

	// cancel tears down the input's capture context on stop.
	cancel context.CancelFunc
}

// NewSession creates an empty capture session.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:     uuid.NewString(),
		logger: logger,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// AddInput binds a device to the session. A session holds at most one
// input; a second add, a nil device, or a device with an invalid
// configuration is rejected with an error and the session is left
// unchanged.
func (s *Session) AddInput(dev videoio.Device) error {
	if dev == nil {
		return ErrNilInput
	}

	cfg := dev.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("device config rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.input != nil {
		return ErrInputExists
	}
	if s.running {
		return errors.New("cannot add input to a running session")
	}

	s.input = dev
	s.logger.Info("session input bound",
		"session", s.id,
		"backend", dev.Name(),
		"facing", dev.Facing(),
	)
	return nil
}

// Input returns the bound device, or nil for a deviceless session.
// Callers must not start or stop the device directly.
func (s *Session) Input() videoio.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input
}

// Running reports whether the session is actively capturing.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Frames returns the bound device's frame channel, or nil for a
// deviceless session.
func (s *Session) Frames() <-chan videoio.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.input == nil {
		return nil
	}
	return s.input.Frames()
}

// start begins capture. A deviceless session starts inert: it is marked
// running but produces nothing. Only the controller's worker calls this.
func (s *Session) start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.input != nil {
		runCtx, cancel := context.WithCancel(ctx)
		if err := s.input.Start(runCtx); err != nil {
			cancel()
			return fmt.Errorf("input start: %w", err)
		}
		s.cancel = cancel
	}

	s.running = true
	return nil
}

// stop halts capture. Only the controller's worker calls this.
func (s *Session) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.input != nil {
		if err := s.input.Stop(); err != nil {
			return fmt.Errorf("input stop: %w", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.running = false
	return nil
}
