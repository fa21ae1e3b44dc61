// Package preview renders a live capture session onto display layers.
//
// A Layer models the visible region a video feed is drawn into: it has
// bounds that track its container and a gravity that decides how frame
// content is fitted. A Surface is the coordinator that binds one
// persistent Layer to a capture session and fans frames out to sinks.
package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Gravity controls how frame content is fitted into layer bounds.
type Gravity int

const (
	// GravityResizeAspectFill scales content to cover the bounds,
	// preserving aspect ratio and cropping the overflow. Default.
	GravityResizeAspectFill Gravity = iota
	// GravityResizeAspect scales content to fit inside the bounds,
	// preserving aspect ratio and leaving letterbox bars.
	GravityResizeAspect
	// GravityResize stretches content to exactly the bounds.
	GravityResize
)

// Rect is a layer-space rectangle. X/Y may be negative when content
// overflows the bounds under aspect-fill.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Layer is a display layer bound to a capture session's video feed.
type Layer struct {
	id string

	mu      sync.RWMutex
	bounds  Rect
	gravity Gravity
}

// NewLayer creates a layer with aspect-fill gravity and empty bounds.
func NewLayer() *Layer {
	return NewLayerWithGravity(GravityResizeAspectFill)
}

// NewLayerWithGravity creates a layer with the given fill mode. The
// fill mode is fixed for the layer's lifetime; layout passes only ever
// change bounds.
func NewLayerWithGravity(g Gravity) *Layer {
	return &Layer{
		id:      uuid.NewString(),
		gravity: g,
	}
}

// ID returns the layer's unique identifier.
func (l *Layer) ID() string {
	return l.id
}

// Bounds returns the layer's current bounds.
func (l *Layer) Bounds() Rect {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bounds
}

// SetBounds resizes the layer. Gravity and identity are untouched.
func (l *Layer) SetBounds(b Rect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bounds = b
}

// Gravity returns the layer's content fill mode.
func (l *Layer) Gravity() Gravity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gravity
}

// ContentRect computes where a frame of the given dimensions lands
// within the layer under its gravity. For aspect-fill the returned rect
// always covers the bounds and is centered on them.
func (l *Layer) ContentRect(frameWidth, frameHeight int) Rect {
	l.mu.RLock()
	b := l.bounds
	gravity := l.gravity
	l.mu.RUnlock()
	if frameWidth <= 0 || frameHeight <= 0 || b.Width <= 0 || b.Height <= 0 {
		return Rect{}
	}

	switch gravity {
	case GravityResize:
		return b

	case GravityResizeAspect:
		scale := minf(float64(b.Width)/float64(frameWidth), float64(b.Height)/float64(frameHeight))
		return centered(b, scale, frameWidth, frameHeight)

	default: // GravityResizeAspectFill
		scale := maxf(float64(b.Width)/float64(frameWidth), float64(b.Height)/float64(frameHeight))
		return centered(b, scale, frameWidth, frameHeight)
	}
}

func centered(b Rect, scale float64, frameWidth, frameHeight int) Rect {
	w := int(float64(frameWidth)*scale + 0.5)
	h := int(float64(frameHeight)*scale + 0.5)
	return Rect{
		X:      b.X + (b.Width-w)/2,
		Y:      b.Y + (b.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
