package anim

import (
	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

// Crossfade blends two items, switching halfway through Duration over a
// window of Transition frames centred on the switch.
type Crossfade struct {
	Duration   timebase.Frame
	Transition timebase.Frame
}

// SwitchFrame is floor(Duration/2).
func (c Crossfade) SwitchFrame() timebase.Frame { return c.Duration / 2 }

// At returns the opacities of the first and second item; they always sum
// to one.
func (c Crossfade) At(f timebase.Frame) (first, second float64) {
	sw := float64(c.SwitchFrame())
	half := float64(c.Transition) / 2
	var p float64
	switch {
	case float64(f) < sw-half:
		p = 0
	case float64(f) >= sw+half:
		p = 1
	default:
		p = interp.Interpolate(float64(f), []float64{sw - half, sw + half}, []float64{0, 1}, interp.Clamped(interp.EaseInOut))
	}
	return 1 - p, p
}
