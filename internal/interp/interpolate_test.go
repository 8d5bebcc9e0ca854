package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateClamp(t *testing.T) {
	in := []float64{0, 20}
	out := []float64{0, 1}
	opts := Clamped(Linear)

	tests := []struct {
		x    float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{10, 0.5},
		{20, 1},
		{30, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Interpolate(tt.x, in, out, opts), 1e-9, "x=%v", tt.x)
	}
}

func TestInterpolateExtend(t *testing.T) {
	in := []float64{0, 10}
	out := []float64{0, 100}
	assert.InDelta(t, 150.0, Interpolate(15, in, out, Options{}), 1e-9)
	assert.InDelta(t, -50.0, Interpolate(-5, in, out, Options{}), 1e-9)

	// one side clamped only
	opts := Options{ExtrapolateLeft: Clamp}
	assert.InDelta(t, 0.0, Interpolate(-5, in, out, opts), 1e-9)
	assert.InDelta(t, 150.0, Interpolate(15, in, out, opts), 1e-9)
}

func TestInterpolateMultiSegment(t *testing.T) {
	in := []float64{0, 4, 8}
	out := []float64{1, 0.85, 1}
	opts := Clamped(Linear)
	assert.InDelta(t, 1.0, Interpolate(0, in, out, opts), 1e-9)
	assert.InDelta(t, 0.85, Interpolate(4, in, out, opts), 1e-9)
	assert.InDelta(t, 0.925, Interpolate(6, in, out, opts), 1e-9)
	assert.InDelta(t, 1.0, Interpolate(8, in, out, opts), 1e-9)
}

func TestInterpolateZeroWidthSegment(t *testing.T) {
	in := []float64{0, 5, 5, 10}
	out := []float64{0, 1, 3, 4}
	assert.InDelta(t, 3.0, Interpolate(5, in, out, Options{}), 1e-9)
}

func TestInterpolateClampedMonotonic(t *testing.T) {
	for _, ease := range []Easing{Linear, Material, EaseOut, EaseInOut, OutCubic, InOutCubic} {
		prev := -1.0
		for f := -10.0; f <= 40; f += 0.5 {
			v := Interpolate(f, []float64{0, 30}, []float64{0, 1}, Clamped(ease))
			require.GreaterOrEqual(t, v, prev-1e-9)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
			prev = v
		}
	}
}

func TestInterpolatePanicsOnBadRanges(t *testing.T) {
	assert.Panics(t, func() { Interpolate(0, []float64{0}, []float64{0}, Options{}) })
	assert.Panics(t, func() { Interpolate(0, []float64{0, 1}, []float64{0}, Options{}) })
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange([]float64{0, 1, 1, 2}, []float64{0, 0, 0, 0}))
	assert.ErrorIs(t, CheckRange([]float64{0, 2, 1}, []float64{0, 1, 2}), ErrNotMonotonic)
	assert.ErrorIs(t, CheckRange([]float64{0}, []float64{0}), ErrTooFewPoints)
	assert.ErrorIs(t, CheckRange([]float64{0, 1}, []float64{0}), ErrLengthMismatch)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(5, 10, 20, Linear))
	assert.InDelta(t, 0.5, Progress(20, 10, 20, Linear), 1e-9)
	assert.Equal(t, 1.0, Progress(40, 10, 20, Linear))
	assert.Equal(t, 1.0, Progress(10, 10, 0, Linear))
	assert.Equal(t, 0.0, Progress(9, 10, 0, Linear))
}
