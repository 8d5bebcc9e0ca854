package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/theme"
)

// drawChip renders a labelled pill upright into a tile, then maps the tile
// rotated about its centre onto (cx, cy).
func (c *Compositor) drawChip(dst *image.RGBA, l scene.Layer, cx, cy, scale float64) {
	if l.Text == "" || l.Size <= 0 || scale <= 0 {
		return
	}
	px := l.Size * scale
	f := c.face(true, px)
	tw := float64(font.MeasureString(f, l.Text)) / 64
	w, h := tw+36*scale, px*1.2+20*scale
	m := math.Ceil(8 * scale)
	tile := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w+2*m)), int(math.Ceil(h+2*m))))
	fillRoundRect(tile, m, m+4*scale, w, h, h/2, theme.Shadow, 1)
	fillRoundRect(tile, m, m, w, h, h/2, theme.Card, 1)
	c.drawText(tile, l.Text, m+w/2, m+h/2, px, true, l.Color, 1)

	sin, cos := math.Sincos(l.Rotation * math.Pi / 180)
	ox, oy := float64(tile.Rect.Dx())/2, float64(tile.Rect.Dy())/2
	aff := f64.Aff3{
		cos, -sin, cx - cos*ox + sin*oy,
		sin, cos, cy - sin*ox - cos*oy,
	}
	opts := &draw.Options{DstMask: image.NewUniform(color.Alpha{A: unit(l.Opacity)})}
	draw.BiLinear.Transform(dst, aff, tile, tile.Rect, draw.Over, opts)
}

const capSides = 16

// strokePath draws a round-capped, round-joined polyline. Segments and joins
// share one winding so overlaps do not darken.
func strokePath(dst *image.RGBA, path []anim.Point, t anim.Transform, width float64, c color.RGBA, opacity float64) {
	if len(path) < 2 || width <= 0 || opacity <= 0 {
		return
	}
	half := width / 2
	pts := make([]anim.Point, len(path))
	x0, y0, x1, y1 := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for i, p := range path {
		x, y := t.Apply(p.X, p.Y)
		pts[i] = anim.Point{X: x, Y: y}
		x0, y0 = math.Min(x0, x), math.Min(y0, y)
		x1, y1 = math.Max(x1, x), math.Max(y1, y)
	}
	bb := visible(dst, x0-half, y0-half, x1+half, y1+half)
	if bb.Empty() {
		return
	}

	z := vector.NewRasterizer(bb.Dx(), bb.Dy())
	at := func(x, y float64) (float32, float32) {
		return float32(x) - float32(bb.Min.X), float32(y) - float32(bb.Min.Y)
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		n := math.Hypot(dx, dy)
		if n == 0 {
			continue
		}
		nx, ny := -dy/n*half, dx/n*half
		z.MoveTo(at(a.X+nx, a.Y+ny))
		z.LineTo(at(b.X+nx, b.Y+ny))
		z.LineTo(at(b.X-nx, b.Y-ny))
		z.LineTo(at(a.X-nx, a.Y-ny))
		z.ClosePath()
	}
	for _, p := range pts {
		z.MoveTo(at(p.X+half, p.Y))
		for k := 1; k < capSides; k++ {
			s, co := math.Sincos(-2 * math.Pi * float64(k) / capSides)
			z.LineTo(at(p.X+half*co, p.Y+half*s))
		}
		z.ClosePath()
	}
	z.DrawOp = draw.Over
	z.Draw(dst, bb, ink(c, opacity), image.Point{})
}
