package videoio

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.Framerate = 60
	return cfg
}

func TestMockDevice_StartStop(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	defer dev.Close()

	ctx := context.Background()

	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Starting again should be a no-op
	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Second Start failed: %v", err)
	}

	if err := dev.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Stopping again should be a no-op
	if err := dev.Stop(); err != nil {
		t.Fatalf("Second Stop failed: %v", err)
	}
}

func TestMockDevice_Read(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	frame, err := dev.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(frame.Data) == 0 {
		t.Error("Expected JPEG data, got empty frame")
	}
	if frame.Width != dev.Config().Width {
		t.Errorf("Expected width %d, got %d", dev.Config().Width, frame.Width)
	}
	if frame.Seq == 0 {
		t.Error("Expected non-zero frame sequence")
	}
}

func TestMockDevice_FramesAdvance(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	first, err := dev.Read(ctx)
	if err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	second, err := dev.Read(ctx)
	if err != nil {
		t.Fatalf("Second read failed: %v", err)
	}

	if second.Seq <= first.Seq {
		t.Errorf("Expected sequence to advance, got %d then %d", first.Seq, second.Seq)
	}
}

func TestMockDevice_ReadAfterStop(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	defer dev.Close()

	ctx := context.Background()

	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := dev.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Drain any buffered frames, then expect EOF
	readCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	for {
		_, err := dev.Read(readCtx)
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("Expected io.EOF, got %v", err)
		}
	}
}

func TestMockDevice_StartAfterClose(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	dev.Close()

	if err := dev.Start(context.Background()); err != io.ErrClosedPipe {
		t.Errorf("Expected ErrClosedPipe after Close, got %v", err)
	}
}

func TestMockDevice_StartError(t *testing.T) {
	wantErr := errors.New("device busy")
	dev := NewMockDevice(testConfig(), nil, WithStartError(wantErr))
	defer dev.Close()

	if err := dev.Start(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Expected injected error, got %v", err)
	}
}

func TestMockDevice_RapidStartStopCycles(t *testing.T) {
	cfg := testConfig()
	cfg.Framerate = 120 // shortest legal tick so stops land mid-production

	dev := NewMockDevice(cfg, nil)
	defer dev.Close()

	ctx := context.Background()

	// A stop must never race the generator's send; cycling as fast as
	// possible used to crash the process here.
	for i := 0; i < 50; i++ {
		if err := dev.Start(ctx); err != nil {
			t.Fatalf("Start %d failed: %v", i, err)
		}
		time.Sleep(time.Duration(i%7) * 100 * time.Microsecond)
		if err := dev.Stop(); err != nil {
			t.Fatalf("Stop %d failed: %v", i, err)
		}
	}

	// Stop waits for the generator, so a stopped device produces nothing.
	captured := dev.Stats().FramesCaptured
	time.Sleep(50 * time.Millisecond)
	if got := dev.Stats().FramesCaptured; got != captured {
		t.Errorf("Generator still running after Stop: %d -> %d frames", captured, got)
	}

	// And the device is still usable afterwards.
	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	readCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if _, err := dev.Read(readCtx); err != nil {
		t.Fatalf("Read after restart failed: %v", err)
	}
}

func TestMockDevice_Stats(t *testing.T) {
	dev := NewMockDevice(testConfig(), nil)
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := dev.Read(ctx); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	stats := dev.Stats()
	if !stats.Running {
		t.Error("Expected Running=true")
	}
	if stats.FramesCaptured == 0 {
		t.Error("Expected captured frames")
	}
	if stats.Backend != "mock" {
		t.Errorf("Expected backend mock, got %s", stats.Backend)
	}
}
