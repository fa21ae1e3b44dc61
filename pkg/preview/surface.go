package preview

import (
	"log/slog"
	"sync"

	"github.com/breathlab/breathcam/pkg/capture"
	"github.com/breathlab/breathcam/pkg/videoio"
)

// FrameSink receives frames pumped from the capture session.
// WriteFrame must not block; slow sinks should drop internally.
type FrameSink interface {
	WriteFrame(frame videoio.Frame)
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(frame videoio.Frame)

// WriteFrame calls f.
func (f FrameSinkFunc) WriteFrame(frame videoio.Frame) {
	f(frame)
}

// Surface binds one persistent display layer to a capture session and
// pumps the session's frames to attached sinks while the session runs.
//
// The surface holds the layer reference for its whole lifetime, so
// every layout pass resizes the same layer instance instead of
// creating a new one.
type Surface struct {
	controller *capture.Controller
	logger     *slog.Logger

	layer *Layer

	mu    sync.RWMutex
	sinks []FrameSink

	states      <-chan capture.State
	unsubscribe func()

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSurface creates a surface bound to the controller's session and
// starts watching for session state changes.
func NewSurface(controller *capture.Controller, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Surface{
		controller: controller,
		logger:     logger,
		layer:      NewLayer(),
	}
	s.states, s.unsubscribe = controller.Subscribe()

	s.wg.Add(1)
	go s.watch()

	return s
}

// Layer returns the surface's display layer. The same instance is
// returned on every call.
func (s *Surface) Layer() *Layer {
	return s.layer
}

// Layout resizes the layer to exactly match the container bounds.
// Nothing else is re-applied on a layout pass.
func (s *Surface) Layout(width, height int) {
	s.layer.SetBounds(Rect{Width: width, Height: height})
}

// Attach registers a sink for the frame fan-out.
func (s *Surface) Attach(sink FrameSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// watch reacts to session state changes. While the session is running
// it pumps frames; the pump returns when the session stops and its
// frame channel closes.
func (s *Surface) watch() {
	defer s.wg.Done()

	for st := range s.states {
		if !st.Detecting {
			continue
		}

		frames := s.controller.Session().Frames()
		if frames == nil {
			// Deviceless session: running but inert.
			continue
		}
		s.pump(frames)
	}
}

func (s *Surface) pump(frames <-chan videoio.Frame) {
	s.logger.Debug("preview pump started", "layer", s.layer.ID())

	for frame := range frames {
		s.mu.RLock()
		sinks := s.sinks
		s.mu.RUnlock()

		for _, sink := range sinks {
			sink.WriteFrame(frame)
		}
	}

	s.logger.Debug("preview pump stopped", "layer", s.layer.ID())
}

// Close detaches the surface from the controller and waits for the
// pump to drain. Stop or close the controller first so the pump's
// frame channel closes.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.wg.Wait()
	})
	return nil
}
