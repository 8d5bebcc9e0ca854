package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// blend composites straight colour c with coverage a over a premultiplied
// pixel.
func blend(dst *image.RGBA, x, y int, c color.RGBA, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	inv := 1 - a
	p[0] = uint8(float64(c.R)*a + float64(p[0])*inv + 0.5)
	p[1] = uint8(float64(c.G)*a + float64(p[1])*inv + 0.5)
	p[2] = uint8(float64(c.B)*a + float64(p[2])*inv + 0.5)
	p[3] = uint8(255*a + float64(p[3])*inv + 0.5)
}

func unit(v float64) uint8 {
	return uint8(math.Round(255 * clamp01(v)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// visible clips a float box, padded by one pixel, to the canvas.
func visible(dst *image.RGBA, x0, y0, x1, y1 float64) image.Rectangle {
	r := image.Rect(int(math.Floor(x0))-1, int(math.Floor(y0))-1, int(math.Ceil(x1))+1, int(math.Ceil(y1))+1)
	return r.Intersect(dst.Bounds())
}

// fillRoundRect fills a box with anti-aliased corners of radius r.
func fillRoundRect(dst *image.RGBA, x, y, w, h, r float64, c color.RGBA, opacity float64) {
	if w <= 0 || h <= 0 {
		return
	}
	alpha := opacity * float64(c.A) / 255
	if alpha <= 0 {
		return
	}
	hw, hh := w/2, h/2
	r = math.Max(0, math.Min(r, math.Min(hw, hh)))
	cx, cy := x+hw, y+hh

	b := visible(dst, x, y, x+w, y+h)
	for py := b.Min.Y; py < b.Max.Y; py++ {
		qy := math.Abs(float64(py)+0.5-cy) - hh + r
		for px := b.Min.X; px < b.Max.X; px++ {
			qx := math.Abs(float64(px)+0.5-cx) - hw + r
			d := math.Hypot(math.Max(qx, 0), math.Max(qy, 0)) + math.Min(math.Max(qx, qy), 0) - r
			blend(dst, px, py, c, alpha*clamp01(0.5-d))
		}
	}
}

func fillCircle(dst *image.RGBA, cx, cy, r float64, c color.RGBA, opacity float64) {
	if r <= 0 || opacity <= 0 {
		return
	}
	alpha := opacity * float64(c.A) / 255
	b := visible(dst, cx-r, cy-r, cx+r, cy+r)
	for py := b.Min.Y; py < b.Max.Y; py++ {
		dy := float64(py) + 0.5 - cy
		for px := b.Min.X; px < b.Max.X; px++ {
			d := math.Hypot(float64(px)+0.5-cx, dy)
			blend(dst, px, py, c, alpha*clamp01(r+0.5-d))
		}
	}
}

// strokeArc draws a circle outline of the given width, starting at 12
// o'clock and running clockwise for progress of a full turn.
func strokeArc(dst *image.RGBA, cx, cy, r, width, progress float64, c color.RGBA, opacity float64) {
	if r <= 0 || progress <= 0 || opacity <= 0 {
		return
	}
	sweep := 2 * math.Pi * math.Min(progress, 1)
	alpha := opacity * float64(c.A) / 255
	half := width / 2
	b := visible(dst, cx-r-half, cy-r-half, cx+r+half, cy+r+half)
	for py := b.Min.Y; py < b.Max.Y; py++ {
		dy := float64(py) + 0.5 - cy
		for px := b.Min.X; px < b.Max.X; px++ {
			dx := float64(px) + 0.5 - cx
			cov := clamp01(half + 0.5 - math.Abs(math.Hypot(dx, dy)-r))
			if cov == 0 {
				continue
			}
			theta := math.Atan2(dx, -dy)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			if theta > sweep {
				continue
			}
			blend(dst, px, py, c, alpha*cov)
		}
	}
}

// radialGlow is a soft spotlight falling off quadratically to r.
func radialGlow(dst *image.RGBA, cx, cy, r float64, c color.RGBA, opacity float64) {
	if r <= 0 || opacity <= 0 {
		return
	}
	b := visible(dst, cx-r, cy-r, cx+r, cy+r)
	for py := b.Min.Y; py < b.Max.Y; py++ {
		dy := float64(py) + 0.5 - cy
		for px := b.Min.X; px < b.Max.X; px++ {
			d := math.Hypot(float64(px)+0.5-cx, dy) / r
			if d >= 1 {
				continue
			}
			f := 1 - d
			blend(dst, px, py, c, opacity*0.45*f*f)
		}
	}
}

func vignetteMask(w, h int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	hw, hh := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		dy := (float64(y) + 0.5 - hh) / hh
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - hw) / hw
			d := math.Hypot(dx, dy) / math.Sqrt2
			m.Pix[y*m.Stride+x] = unit(smoothstep(0.35, 1, d))
		}
	}
	return m
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// arrow is the pointer outline in units of cursor size, tip at the origin.
var arrow = [][2]float32{
	{0, 0}, {0, 0.72}, {0.19, 0.56}, {0.32, 0.85},
	{0.43, 0.8}, {0.3, 0.52}, {0.53, 0.52},
}

// drawCursor paints a white-edged pointer with its tip at (x, y).
func drawCursor(dst *image.RGBA, x, y, size float64, c color.RGBA, opacity float64) {
	if size <= 0 || opacity <= 0 {
		return
	}
	pad := math.Max(3, size*0.1)
	bb := image.Rect(int(x-pad), int(y-pad), int(math.Ceil(x+size+pad)), int(math.Ceil(y+size+pad)))
	scratch := image.NewRGBA(bb)
	z := vector.NewRasterizer(bb.Dx(), bb.Dy())
	ox, oy := float32(x)-float32(bb.Min.X), float32(y)-float32(bb.Min.Y)

	shape := func(grow float32) {
		z.Reset(bb.Dx(), bb.Dy())
		s := float32(size)
		// Grow about a point inside the arrow so the outline stays even.
		px, py := 0.2*s, 0.5*s
		for i, p := range arrow {
			ax := ox + px + (p[0]*s-px)*grow
			ay := oy + py + (p[1]*s-py)*grow
			if i == 0 {
				z.MoveTo(ax, ay)
			} else {
				z.LineTo(ax, ay)
			}
		}
		z.ClosePath()
	}

	z.DrawOp = draw.Over
	shape(1.18)
	z.Draw(scratch, bb, image.NewUniform(color.White), image.Point{})
	shape(1)
	z.Draw(scratch, bb, image.NewUniform(c), image.Point{})

	mask := image.NewUniform(color.Alpha{A: unit(opacity)})
	draw.DrawMask(dst, bb, scratch, bb.Min, mask, image.Point{}, draw.Over)
}
