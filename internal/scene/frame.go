package scene

import (
	"image/color"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/theme"
	"github.com/ivlev/promoreel/internal/timebase"
)

// LayerKind tells the compositor how to paint a layer.
type LayerKind int

const (
	// LayerFill is a solid rectangle; Radius rounds its corners.
	LayerFill LayerKind = iota
	// LayerImage draws the screenshot named by Image into Rect.
	LayerImage
	// LayerText draws Text centred on Rect.
	LayerText
	// LayerWords lays Words out on one centred line.
	LayerWords
	// LayerDots is the wave-dot background.
	LayerDots
	// LayerCursor is a pointer whose tip is at Rect.X, Rect.Y.
	LayerCursor
	// LayerRipple is a fading circle of Radius around Rect.X, Rect.Y.
	LayerRipple
	// LayerRing is a circle stroke of Radius drawn up to Progress.
	LayerRing
	// LayerGlow is a radial spotlight of Radius.
	LayerGlow
	// LayerVignette darkens the canvas edges by Opacity.
	LayerVignette
	// LayerQR encodes Text as a QR code filling Rect.
	LayerQR
	// LayerChip is a pill labelled Text, centred on Rect.X, Rect.Y and tilted
	// by Rotation degrees.
	LayerChip
	// LayerStroke is a round-capped line of width Size through Path.
	LayerStroke
)

// Rect is an axis-aligned box in reference pixels.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the box centre.
func (r Rect) Center() (float64, float64) { return r.X + r.W/2, r.Y + r.H/2 }

// At returns the point at percent (px, py) of the box.
func (r Rect) At(p anim.Point) (float64, float64) {
	return r.X + r.W*p.X/100, r.Y + r.H*p.Y/100
}

// Layer is one display-list entry. Transform maps Rect into canvas space.
type Layer struct {
	Kind      LayerKind
	Rect      Rect
	Transform anim.Transform
	Opacity   float64
	Color     color.RGBA
	Radius    float64
	Image     string
	Blur      float64
	Text      string
	Size      float64
	Bold      bool
	Words     []anim.WordState
	Progress  float64
	Dots      []anim.Dot
	Rotation  float64
	Path      []anim.Point
}

// FrameState is everything visible at one frame, painted in order.
type FrameState struct {
	Frame   timebase.Frame
	SceneID string
	Layers  []Layer
}

// Background is the wave-dot layer drawn under every scene. It runs on the
// global frame so it does not restart at scene boundaries.
func Background(f timebase.Frame) Layer {
	return Layer{
		Kind:      LayerDots,
		Rect:      Rect{W: theme.Width, H: theme.Height},
		Transform: anim.Identity(),
		Opacity:   1,
		Color:     theme.DotGrid,
		Radius:    theme.DotRadius,
		Dots:      anim.DefaultWaveDots(theme.Width, theme.Height).At(f),
	}
}
