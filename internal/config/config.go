// Package config provides configuration helpers for breathcam commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the breathcam service.
const (
	DefaultPort     = "8090"
	DefaultLogLevel = "info"
)

// Port returns the web server port from BREATHCAM_PORT.
// Falls back to the default if not set.
func Port() string {
	if p := os.Getenv("BREATHCAM_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// LogLevel returns the log level from BREATHCAM_LOG_LEVEL.
func LogLevel() string {
	if lvl := os.Getenv("BREATHCAM_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// CameraBackend returns the capture backend override from CAMERA_BACKEND.
// Empty means auto-detect.
func CameraBackend() string {
	return os.Getenv("CAMERA_BACKEND")
}

// DeviceIndex returns the device index from the given env var,
// or the fallback when unset or unparseable.
func DeviceIndex(envVar string, fallback int) int {
	v := os.Getenv(envVar)
	if v == "" {
		return fallback
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return idx
}

// FrontDeviceIndex returns the front camera index from CAMERA_FRONT_INDEX.
func FrontDeviceIndex() int {
	return DeviceIndex("CAMERA_FRONT_INDEX", 0)
}

// BackDeviceIndex returns the back camera index from CAMERA_BACK_INDEX.
// -1 means no back camera is present.
func BackDeviceIndex() int {
	return DeviceIndex("CAMERA_BACK_INDEX", -1)
}
