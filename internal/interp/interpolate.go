// Package interp maps frame numbers onto animated values through eased,
// multi-segment breakpoint ranges.
package interp

import (
	"errors"
	"fmt"
)

// Extrapolate selects how a value behaves outside the breakpoint range.
type Extrapolate int

const (
	// Extend continues the first/last segment past its breakpoints.
	Extend Extrapolate = iota
	// Clamp holds the first/last output value.
	Clamp
)

// Options configures Interpolate. The zero value is linear with extension on
// both sides.
type Options struct {
	Easing           Easing
	ExtrapolateLeft  Extrapolate
	ExtrapolateRight Extrapolate
}

// Clamped is shorthand for clamping on both sides with the given easing.
func Clamped(e Easing) Options {
	return Options{Easing: e, ExtrapolateLeft: Clamp, ExtrapolateRight: Clamp}
}

var (
	ErrTooFewPoints   = errors.New("interpolation needs at least two breakpoints")
	ErrLengthMismatch = errors.New("input and output ranges differ in length")
	ErrNotMonotonic   = errors.New("input range must be non-decreasing")
)

// CheckRange validates a breakpoint set for configuration input.
func CheckRange(in, out []float64) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(in), len(out))
	}
	if len(in) < 2 {
		return ErrTooFewPoints
	}
	for i := 1; i < len(in); i++ {
		if in[i] < in[i-1] {
			return fmt.Errorf("%w: %v at index %d", ErrNotMonotonic, in[i], i)
		}
	}
	return nil
}

// Interpolate maps x from the in breakpoints onto the out breakpoints.
// It panics when the ranges differ in length or have fewer than two points;
// those are programming errors, see CheckRange for user-provided ranges.
func Interpolate(x float64, in, out []float64, opts Options) float64 {
	if len(in) != len(out) {
		panic(ErrLengthMismatch)
	}
	if len(in) < 2 {
		panic(ErrTooFewPoints)
	}
	ease := opts.Easing
	if ease == nil {
		ease = Linear
	}

	last := len(in) - 1
	if x < in[0] && opts.ExtrapolateLeft == Clamp {
		return out[0]
	}
	if x > in[last] && opts.ExtrapolateRight == Clamp {
		return out[last]
	}

	seg := 0
	for seg < last-1 && x >= in[seg+1] {
		seg++
	}
	lo, hi := in[seg], in[seg+1]
	if hi == lo {
		return out[seg+1]
	}
	t := (x - lo) / (hi - lo)
	return lerp(out[seg], out[seg+1], ease(t))
}

// Progress is Interpolate over [start, start+duration] onto [0,1], clamped.
func Progress(frame, start, duration float64, ease Easing) float64 {
	if duration <= 0 {
		if frame >= start {
			return 1
		}
		return 0
	}
	return Interpolate(frame, []float64{start, start + duration}, []float64{0, 1}, Clamped(ease))
}

// Lerp blends a and b by t.
func Lerp(a, b, t float64) float64 { return lerp(a, b, t) }

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
