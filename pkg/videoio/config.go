// Package videoio provides cross-platform video capture for breathcam.
//
// This package supports multiple backends:
//   - OpenCV (Linux/macOS) - Real cameras via gocv
//   - Mock - CI/Testing without hardware
//
// The backend is selected automatically based on platform, or can be
// explicitly specified via configuration.
package videoio

import (
	"fmt"
	"time"
)

// Backend represents the video capture backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendOpenCV uses OpenCV (gocv) for camera capture.
	BackendOpenCV Backend = "opencv"
	// BackendMock uses a synthetic frame generator for testing.
	BackendMock Backend = "mock"
)

// Facing identifies which way a camera points.
type Facing string

const (
	// FacingFront is a camera pointing toward the user.
	FacingFront Facing = "front"
	// FacingBack is a camera pointing away from the user.
	FacingBack Facing = "back"
)

// Config holds video capture configuration.
type Config struct {
	// Backend specifies which capture backend to use.
	// Default: "auto" (selects best available for platform)
	Backend Backend `yaml:"backend" json:"backend"`

	// Facing is the requested camera orientation.
	Facing Facing `yaml:"facing" json:"facing"`

	// Width and Height are the requested frame dimensions in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// Framerate is the target frames per second.
	Framerate int `yaml:"framerate" json:"framerate"`

	// Quality is the JPEG encode quality (1-100).
	Quality int `yaml:"quality" json:"quality"`

	// DeviceIndex maps each facing to a platform device index.
	// An index of -1 means no device exists for that facing.
	// Examples:
	//   - Laptop: front=0, back=-1
	//   - Phone-style rig: front=1, back=0
	DeviceIndex map[Facing]int `yaml:"device_index" json:"device_index"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendAuto,
		Facing:    FacingFront,
		Width:     1280,
		Height:    720,
		Framerate: 30,
		Quality:   85,
		DeviceIndex: map[Facing]int{
			FacingFront: 0,
			FacingBack:  -1,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Framerate <= 0 || c.Framerate > 120 {
		return fmt.Errorf("framerate must be between 1 and 120, got %d", c.Framerate)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	switch c.Facing {
	case FacingFront, FacingBack:
	default:
		return fmt.Errorf("facing must be front or back, got %q", c.Facing)
	}
	return nil
}

// Index returns the device index configured for the given facing.
// Returns -1 when no device is configured for that facing.
func (c *Config) Index(facing Facing) int {
	if c.DeviceIndex == nil {
		return -1
	}
	idx, ok := c.DeviceIndex[facing]
	if !ok {
		return -1
	}
	return idx
}

// FrameInterval returns the duration between frames at the target rate.
// Capture loops tick at this interval.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Framerate)
}
