package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/promoreel/internal/scene"
)

var (
	fontsOnce   sync.Once
	fontsErr    error
	regularFont *opentype.Font
	boldFont    *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
			return
		}
		if boldFont, fontsErr = opentype.Parse(gobold.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// faceKey quantizes sizes to quarter pixels to keep the cache small while
// words scale smoothly.
type faceKey struct {
	bold    bool
	quarter int
}

func (c *Compositor) face(bold bool, px float64) font.Face {
	key := faceKey{bold: bold, quarter: int(math.Round(px * 4))}
	if key.quarter < 4 {
		key.quarter = 4
	}
	if f, ok := c.faces[key]; ok {
		return f
	}
	src := regularFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    float64(key.quarter) / 4,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only reachable with a corrupt embedded font.
		panic(err)
	}
	c.faces[key] = f
	return f
}

func ink(col color.RGBA, opacity float64) *image.Uniform {
	return image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: unit(opacity * float64(col.A) / 255)})
}

// baseline returns the y of the baseline that vertically centres the face's
// cap region on cy.
func baseline(f font.Face, cy float64) fixed.Int26_6 {
	m := f.Metrics()
	return fixed.Int26_6(cy*64) + (m.Ascent-m.Descent)/2
}

func (c *Compositor) drawText(dst *image.RGBA, s string, cx, cy, px float64, bold bool, col color.RGBA, opacity float64) {
	if s == "" || px <= 0 || opacity <= 0 {
		return
	}
	f := c.face(bold, px)
	d := font.Drawer{Dst: dst, Src: ink(col, opacity), Face: f}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.Int26_6(cx*64) - w/2, Y: baseline(f, cy)}
	d.DrawString(s)
}

// drawWords lays the words out on one line centred on (cx, cy), each with
// its own fade, rise and scale.
func (c *Compositor) drawWords(dst *image.RGBA, l scene.Layer, cx, cy, scale float64) {
	if len(l.Words) == 0 || l.Size <= 0 {
		return
	}
	px := l.Size * scale
	base := c.face(l.Bold, px)
	d := font.Drawer{Face: base}
	space := d.MeasureString(" ")
	widths := make([]fixed.Int26_6, len(l.Words))
	total := space * fixed.Int26_6(len(l.Words)-1)
	for i, w := range l.Words {
		widths[i] = d.MeasureString(w.Word)
		total += widths[i]
	}

	x := fixed.Int26_6(cx*64) - total/2
	for i, w := range l.Words {
		centre := float64(x+widths[i]/2) / 64
		x += widths[i] + space
		op := l.Opacity * w.Opacity
		if op <= 0 {
			continue
		}
		c.drawText(dst, w.Word, centre, cy+w.TranslateY*scale, px*w.Scale, l.Bold, l.Color, op)
	}
}
