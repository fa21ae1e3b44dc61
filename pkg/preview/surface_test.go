package preview

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/breathlab/breathcam/pkg/capture"
	"github.com/breathlab/breathcam/pkg/videoio"
)

func newTestController(t *testing.T) *capture.Controller {
	t.Helper()
	cfg := videoio.DefaultConfig()
	cfg.Backend = videoio.BackendMock
	cfg.Framerate = 60
	return capture.NewController(cfg, nil)
}

func TestSurface_LayerPersists(t *testing.T) {
	c := newTestController(t)
	defer c.Close()

	s := NewSurface(c, nil)
	defer s.Close()

	first := s.Layer()
	s.Layout(390, 844)
	s.Layout(844, 390)

	if s.Layer() != first {
		t.Error("Layout passes must resize the same layer instance")
	}
}

func TestSurface_LayoutMatchesContainer(t *testing.T) {
	c := newTestController(t)
	defer c.Close()

	s := NewSurface(c, nil)
	defer s.Close()

	s.Layout(390, 844)
	if got := s.Layer().Bounds(); got.Width != 390 || got.Height != 844 {
		t.Errorf("Expected bounds 390x844, got %+v", got)
	}

	// Container rotated: bounds follow exactly, gravity untouched.
	s.Layout(844, 390)
	if got := s.Layer().Bounds(); got.Width != 844 || got.Height != 390 {
		t.Errorf("Expected bounds 844x390 after rotate, got %+v", got)
	}
	if s.Layer().Gravity() != GravityResizeAspectFill {
		t.Error("Layout must not change the fill mode")
	}
}

func TestSurface_FrameFanOut(t *testing.T) {
	c := newTestController(t)
	defer c.Close()

	if res := c.Configure(); res.Status != capture.ConfigureOK {
		t.Fatalf("Configure failed: %v", res.Status)
	}

	s := NewSurface(c, nil)

	var frames atomic.Int64
	s.Attach(FrameSinkFunc(func(frame videoio.Frame) {
		if len(frame.Data) > 0 {
			frames.Add(1)
		}
	}))

	states, cancel := c.Subscribe()
	defer cancel()

	c.Start()
	waitDetecting(t, states, true)

	deadline := time.After(2 * time.Second)
	for frames.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 frames, got %d", frames.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	c.Stop()
	waitDetecting(t, states, false)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSurface_DevicelessSessionStaysQuiet(t *testing.T) {
	cfg := videoio.DefaultConfig()
	cfg.Backend = videoio.BackendMock
	cfg.DeviceIndex = map[videoio.Facing]int{
		videoio.FacingFront: -1,
		videoio.FacingBack:  -1,
	}
	c := capture.NewController(cfg, nil)
	defer c.Close()

	if res := c.Configure(); res.Status != capture.ConfigureNoDevice {
		t.Fatalf("Expected ConfigureNoDevice, got %v", res.Status)
	}

	s := NewSurface(c, nil)

	var frames atomic.Int64
	s.Attach(FrameSinkFunc(func(videoio.Frame) { frames.Add(1) }))

	states, cancel := c.Subscribe()
	defer cancel()

	// Empty preview, no frames, no crash.
	c.Start()
	waitDetecting(t, states, true)
	time.Sleep(100 * time.Millisecond)

	if frames.Load() != 0 {
		t.Errorf("Expected no frames from inert session, got %d", frames.Load())
	}

	c.Stop()
	waitDetecting(t, states, false)
	s.Close()
}

func waitDetecting(t *testing.T, ch <-chan capture.State, want bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatal("state channel closed while waiting")
			}
			if st.Detecting == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for detecting=%v", want)
		}
	}
}
