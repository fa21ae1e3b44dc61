package preview

import (
	"testing"
)

func TestLayer_Defaults(t *testing.T) {
	l := NewLayer()
	if l.Gravity() != GravityResizeAspectFill {
		t.Errorf("Expected aspect-fill default gravity, got %v", l.Gravity())
	}
	if l.ID() == "" {
		t.Error("Expected non-empty layer id")
	}
}

func TestLayer_SetBoundsKeepsGravity(t *testing.T) {
	l := NewLayer()
	l.SetBounds(Rect{Width: 390, Height: 844})

	if got := l.Bounds(); got.Width != 390 || got.Height != 844 {
		t.Errorf("Expected bounds 390x844, got %+v", got)
	}
	if l.Gravity() != GravityResizeAspectFill {
		t.Error("Resize must not change gravity")
	}
}

func TestLayer_ContentRectAspectFillWide(t *testing.T) {
	l := NewLayer()
	l.SetBounds(Rect{Width: 100, Height: 100})

	// 200x100 frame into a 100x100 layer: scale by height, crop the sides.
	got := l.ContentRect(200, 100)
	if got.Width != 200 || got.Height != 100 {
		t.Errorf("Expected content 200x100, got %+v", got)
	}
	if got.X != -50 || got.Y != 0 {
		t.Errorf("Expected content centered at (-50,0), got (%d,%d)", got.X, got.Y)
	}
}

func TestLayer_ContentRectAspectFillTall(t *testing.T) {
	l := NewLayer()
	l.SetBounds(Rect{Width: 100, Height: 100})

	// 100x200 frame: scale by width, crop top and bottom.
	got := l.ContentRect(100, 200)
	if got.Width != 100 || got.Height != 200 {
		t.Errorf("Expected content 100x200, got %+v", got)
	}
	if got.X != 0 || got.Y != -50 {
		t.Errorf("Expected content centered at (0,-50), got (%d,%d)", got.X, got.Y)
	}
}

func TestLayer_ContentRectCoversBounds(t *testing.T) {
	l := NewLayer()
	l.SetBounds(Rect{Width: 390, Height: 844})

	// Aspect-fill must always cover the full bounds.
	got := l.ContentRect(1280, 720)
	if got.X > 0 || got.Y > 0 {
		t.Errorf("Content origin must not be inside bounds, got (%d,%d)", got.X, got.Y)
	}
	if got.X+got.Width < 390 || got.Y+got.Height < 844 {
		t.Errorf("Content %+v does not cover 390x844 bounds", got)
	}
}

func TestLayer_ContentRectAspectFit(t *testing.T) {
	l := NewLayerWithGravity(GravityResizeAspect)
	l.SetBounds(Rect{Width: 100, Height: 100})

	// 200x100 frame fits inside with letterboxing.
	got := l.ContentRect(200, 100)
	if got.Width != 100 || got.Height != 50 {
		t.Errorf("Expected content 100x50, got %+v", got)
	}
	if got.Y != 25 {
		t.Errorf("Expected vertical centering at y=25, got %d", got.Y)
	}
}

func TestLayer_ContentRectStretch(t *testing.T) {
	l := NewLayerWithGravity(GravityResize)
	l.SetBounds(Rect{Width: 320, Height: 240})

	got := l.ContentRect(1280, 720)
	if got != (Rect{Width: 320, Height: 240}) {
		t.Errorf("Expected stretch to bounds, got %+v", got)
	}
}

func TestLayer_ContentRectEmpty(t *testing.T) {
	l := NewLayer()
	if got := l.ContentRect(1280, 720); got != (Rect{}) {
		t.Errorf("Expected zero rect for unsized layer, got %+v", got)
	}
	l.SetBounds(Rect{Width: 100, Height: 100})
	if got := l.ContentRect(0, 0); got != (Rect{}) {
		t.Errorf("Expected zero rect for empty frame, got %+v", got)
	}
}
