// Package renderer paints scene display lists onto RGBA canvases.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/theme"
)

// Images resolves screenshot references to decoded images.
type Images interface {
	Get(ref string) image.Image
}

// Compositor rasterizes FrameStates at a fixed output size. It caches font
// faces and scratch buffers, so each goroutine needs its own Compositor.
type Compositor struct {
	width, height int
	k             float64
	images        Images

	faces    map[faceKey]font.Face
	qr       map[string][][]bool
	vignette *image.Alpha
	scratch  *image.RGBA
}

// New creates a compositor for a width x height canvas. The reference layout
// is scaled uniformly by width / theme.Width.
func New(width, height int, images Images) (*Compositor, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	return &Compositor{
		width:  width,
		height: height,
		k:      float64(width) / theme.Width,
		images: images,
		faces:  map[faceKey]font.Face{},
		qr:     map[string][][]bool{},
	}, nil
}

// Bounds is the canvas rectangle.
func (c *Compositor) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Frame allocates a canvas and renders st onto it.
func (c *Compositor) Frame(st scene.FrameState) *image.RGBA {
	dst := image.NewRGBA(c.Bounds())
	c.Render(dst, st)
	return dst
}

// Render clears dst to the theme background and paints every layer in order.
func (c *Compositor) Render(dst *image.RGBA, st scene.FrameState) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(theme.Background), image.Point{}, draw.Src)
	for _, l := range st.Layers {
		if l.Opacity <= 0 {
			continue
		}
		c.paint(dst, l)
	}
}

func (c *Compositor) paint(dst *image.RGBA, l scene.Layer) {
	t := l.Transform.Then(anim.Transform{Scale: c.k})
	x, y := t.Apply(l.Rect.X, l.Rect.Y)
	w, h := l.Rect.W*t.Scale, l.Rect.H*t.Scale

	switch l.Kind {
	case scene.LayerFill:
		fillRoundRect(dst, x, y, w, h, l.Radius*t.Scale, l.Color, l.Opacity)
	case scene.LayerImage:
		c.drawImage(dst, l, x, y, w, h, l.Blur*t.Scale)
	case scene.LayerText:
		c.drawText(dst, l.Text, x, y, l.Size*t.Scale, l.Bold, l.Color, l.Opacity)
	case scene.LayerWords:
		c.drawWords(dst, l, x, y, t.Scale)
	case scene.LayerDots:
		for _, d := range l.Dots {
			dx, dy := t.Apply(d.X, d.Y)
			fillCircle(dst, dx, dy, l.Radius*d.Scale*t.Scale, l.Color, l.Opacity*d.Opacity)
		}
	case scene.LayerCursor:
		drawCursor(dst, x, y, w, l.Color, l.Opacity)
	case scene.LayerRipple:
		r := l.Radius * t.Scale
		fillCircle(dst, x, y, r, l.Color, l.Opacity*0.35)
		strokeArc(dst, x, y, r, 2*t.Scale, 1, l.Color, l.Opacity)
	case scene.LayerRing:
		strokeArc(dst, x, y, l.Radius*t.Scale, 4*t.Scale, l.Progress, l.Color, l.Opacity)
	case scene.LayerGlow:
		radialGlow(dst, x, y, l.Radius*t.Scale, l.Color, l.Opacity)
	case scene.LayerVignette:
		c.drawVignette(dst, l.Opacity)
	case scene.LayerQR:
		c.drawQR(dst, l.Text, x, y, w, h, l.Color, l.Opacity)
	case scene.LayerChip:
		c.drawChip(dst, l, x, y, t.Scale)
	case scene.LayerStroke:
		strokePath(dst, l.Path, t, l.Size*t.Scale, l.Color, l.Opacity)
	}
}

func (c *Compositor) drawVignette(dst *image.RGBA, opacity float64) {
	if c.vignette == nil {
		c.vignette = vignetteMask(c.width, c.height)
	}
	shade := image.NewUniform(color.NRGBA{A: unit(opacity * 0.7)})
	draw.DrawMask(dst, dst.Bounds(), shade, image.Point{}, c.vignette, image.Point{}, draw.Over)
}

func (c *Compositor) drawQR(dst *image.RGBA, content string, x, y, w, h float64, ink color.RGBA, opacity float64) {
	bits, ok := c.qr[content]
	if !ok {
		q, err := qrcode.New(content, qrcode.Medium)
		if err != nil {
			return
		}
		q.DisableBorder = true
		bits = q.Bitmap()
		c.qr[content] = bits
	}
	n := len(bits)
	if n == 0 {
		return
	}
	pad := w * 0.06
	fillRoundRect(dst, x-pad, y-pad, w+2*pad, h+2*pad, pad, theme.Card, opacity)
	mw, mh := w/float64(n), h/float64(n)
	for i, row := range bits {
		for j, on := range row {
			if on {
				// Snap to whole pixels so neighbouring modules leave no seams.
				x0, y0 := math.Round(x+float64(j)*mw), math.Round(y+float64(i)*mh)
				x1, y1 := math.Round(x+float64(j+1)*mw), math.Round(y+float64(i+1)*mh)
				fillRoundRect(dst, x0, y0, x1-x0, y1-y0, 0, ink, opacity)
			}
		}
	}
}
