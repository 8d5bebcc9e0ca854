package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/promoreel/internal/scene"
)

// drawImage scales the screenshot to cover the box, anchored at the top
// edge, with optional blur.
func (c *Compositor) drawImage(dst *image.RGBA, l scene.Layer, x, y, w, h, blur float64) {
	if c.images == nil || w < 1 || h < 1 {
		return
	}
	src := c.images.Get(l.Image)
	if src == nil || src.Bounds().Empty() {
		return
	}
	dr := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	vis := dr.Intersect(dst.Bounds())
	if vis.Empty() {
		return
	}
	sr := coverRect(src.Bounds(), w, h)
	mask := image.NewUniform(color.Alpha{A: unit(l.Opacity)})

	radius := int(math.Round(blur))
	if radius < 1 {
		draw.ApproxBiLinear.Scale(dst, dr, src, sr, draw.Over, &draw.Options{SrcMask: mask})
		return
	}

	tmp := c.scratchFor(vis)
	draw.ApproxBiLinear.Scale(tmp, dr, src, sr, draw.Src, nil)
	boxBlur(tmp, radius)
	draw.DrawMask(dst, vis, tmp, vis.Min, mask, image.Point{}, draw.Over)
}

// scratchFor returns a reusable buffer with bounds r.
func (c *Compositor) scratchFor(r image.Rectangle) *image.RGBA {
	need := r.Dx() * r.Dy() * 4
	if c.scratch == nil || cap(c.scratch.Pix) < need {
		c.scratch = image.NewRGBA(r)
		return c.scratch
	}
	c.scratch.Pix = c.scratch.Pix[:need]
	c.scratch.Stride = r.Dx() * 4
	c.scratch.Rect = r
	return c.scratch
}

// coverRect crops src to the aspect ratio of a w x h box.
func coverRect(src image.Rectangle, w, h float64) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw/sh > w/h {
		cw := int(math.Round(sh * w / h))
		x0 := src.Min.X + (src.Dx()-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	}
	ch := int(math.Round(sw * h / w))
	return image.Rect(src.Min.X, src.Min.Y, src.Max.X, src.Min.Y+ch)
}

// boxBlur approximates a gaussian with three box passes per axis.
func boxBlur(img *image.RGBA, radius int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	n := w
	if h > n {
		n = h
	}
	line := make([]uint8, n*4)
	for pass := 0; pass < 3; pass++ {
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			blurLine(row, line[:w*4], 4, w, radius)
		}
		for x := 0; x < w; x++ {
			col := img.Pix[x*4:]
			blurLine(col, line[:h*4], img.Stride, h, radius)
		}
	}
}

// blurLine runs a sliding box of width 2r+1 over n pixels spaced step bytes
// apart, clamping at the edges.
func blurLine(pix, tmp []uint8, step, n, r int) {
	for i := 0; i < n; i++ {
		copy(tmp[i*4:i*4+4], pix[i*step:i*step+4])
	}
	at := func(i int) []uint8 {
		if i < 0 {
			i = 0
		} else if i >= n {
			i = n - 1
		}
		return tmp[i*4 : i*4+4]
	}
	var sum [4]int
	for i := -r; i <= r; i++ {
		p := at(i)
		for ch := 0; ch < 4; ch++ {
			sum[ch] += int(p[ch])
		}
	}
	div := 2*r + 1
	for i := 0; i < n; i++ {
		o := pix[i*step : i*step+4]
		for ch := 0; ch < 4; ch++ {
			o[ch] = uint8(sum[ch] / div)
		}
		in, out := at(i+r+1), at(i-r)
		for ch := 0; ch < 4; ch++ {
			sum[ch] += int(in[ch]) - int(out[ch])
		}
	}
}
