package videoio

import (
	"context"
	"io"
	"time"
)

// Frame is a single captured video frame, JPEG-encoded.
type Frame struct {
	// Data is the JPEG-encoded frame.
	Data []byte

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Seq is a monotonically increasing frame counter.
	Seq int64

	// Timestamp is when the frame was captured.
	Timestamp time.Time
}

// Device captures video from a camera or other frame source.
type Device interface {
	// Start begins frame capture.
	// After calling Start, frames are available via Read or Frames.
	Start(ctx context.Context) error

	// Stop halts frame capture.
	// It is safe to call Stop multiple times.
	Stop() error

	// Read reads the next frame, blocking if necessary.
	// Returns io.EOF when the device is stopped.
	Read(ctx context.Context) (Frame, error)

	// Frames returns a channel that receives captured frames.
	// The channel is closed when the device is stopped.
	Frames() <-chan Frame

	// Config returns the current capture configuration.
	Config() Config

	// Name returns the backend name (e.g., "opencv", "mock").
	Name() string

	// Facing returns which way this camera points.
	Facing() Facing

	// Close releases all resources.
	// After Close, the device cannot be restarted.
	io.Closer
}

// DeviceStats contains statistics about a capture device.
type DeviceStats struct {
	// FramesCaptured is the total number of frames produced.
	FramesCaptured int64 `json:"frames_captured"`

	// FramesDropped is the number of frames dropped to a full buffer.
	FramesDropped int64 `json:"frames_dropped"`

	// Running indicates if the device is currently capturing.
	Running bool `json:"running"`

	// Backend is the name of the capture backend.
	Backend string `json:"backend"`
}

// DeviceWithStats extends Device with statistics.
type DeviceWithStats interface {
	Device
	Stats() DeviceStats
}
