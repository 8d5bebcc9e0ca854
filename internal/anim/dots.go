package anim

import (
	"math"

	"github.com/ivlev/promoreel/internal/timebase"
)

const dotBuffer = 2

// WaveDots is the animated dotted background.
type WaveDots struct {
	Width, Height int
	Spacing       float64
	Speed         float64
	Frequency     float64
}

// DefaultWaveDots covers a w x h canvas.
func DefaultWaveDots(w, h int) WaveDots {
	return WaveDots{Width: w, Height: h, Spacing: 20, Speed: 0.05, Frequency: 0.1}
}

// Dot is one grid dot in canvas pixels.
type Dot struct {
	X, Y    float64
	Opacity float64
	Scale   float64
}

// Wave is the combined wave value in [-1, 1] for a grid cell.
func (w WaveDots) Wave(col, row int, f timebase.Frame) float64 {
	c, r, t := float64(col), float64(row), float64(f)
	fq, sp := w.Frequency, w.Speed
	w1 := math.Sin(c*fq + r*fq*0.5 + t*sp)
	w2 := math.Sin(c*fq*0.7 + r*fq*0.3 + t*sp*0.7)
	w3 := math.Sin(c*fq*1.3 - r*fq*0.4 + t*sp*1.2)
	return w1*0.5 + w2*0.3 + w3*0.2
}

// At evaluates the whole grid at frame f.
func (w WaveDots) At(f timebase.Frame) []Dot {
	cols := int(math.Ceil(float64(w.Width)/w.Spacing)) + dotBuffer
	rows := int(math.Ceil(float64(w.Height)/w.Spacing)) + dotBuffer
	dots := make([]Dot, 0, (cols+dotBuffer)*(rows+dotBuffer))
	for row := -dotBuffer; row < rows; row++ {
		for col := -dotBuffer; col < cols; col++ {
			n := (w.Wave(col, row, f) + 1) * 0.5
			dots = append(dots, Dot{
				X:       float64(col) * w.Spacing,
				Y:       float64(row) * w.Spacing,
				Opacity: 0.4 + n*0.6,
				Scale:   0.85 + n*0.3,
			})
		}
	}
	return dots
}
