package videoio

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrNoDevice is returned when no camera exists for any requested facing.
var ErrNoDevice = errors.New("no capture device available")

// Open creates a new capture device with the given configuration.
// If cfg.Backend is BackendAuto, the best available backend is selected.
func Open(cfg Config, logger *slog.Logger) (Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = detectBestBackend()
	}

	logger.Info("opening capture device",
		"backend", backend,
		"facing", cfg.Facing,
		"width", cfg.Width,
		"height", cfg.Height,
		"framerate", cfg.Framerate,
	)

	switch backend {
	case BackendMock:
		return NewMockDevice(cfg, logger), nil
	case BackendOpenCV:
		return newOpenCVDevice(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// OpenPreferred opens the first camera that exists in the given facing
// order. The conventional order is front first, then back. Facings with
// no configured device index are skipped. Returns ErrNoDevice when no
// candidate opens; callers are expected to treat that as a degraded
// state rather than a fatal one.
func OpenPreferred(cfg Config, logger *slog.Logger, facings ...Facing) (Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(facings) == 0 {
		facings = []Facing{FacingFront, FacingBack}
	}

	for _, facing := range facings {
		if cfg.Index(facing) < 0 {
			logger.Debug("no device configured for facing", "facing", facing)
			continue
		}

		candidate := cfg
		candidate.Facing = facing
		dev, err := Open(candidate, logger)
		if err != nil {
			logger.Warn("capture device unavailable",
				"facing", facing,
				"error", err,
			)
			continue
		}
		return dev, nil
	}

	return nil, ErrNoDevice
}

// detectBestBackend returns the best available backend for the current platform.
func detectBestBackend() Backend {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return BackendOpenCV
	default:
		return BackendMock
	}
}

// AvailableBackends returns the list of backends available on this platform.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock}

	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		backends = append(backends, BackendOpenCV)
	}

	return backends
}
