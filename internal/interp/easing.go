package interp

import "math"

// Easing maps linear progress to eased progress. Curves are defined on [0,1];
// values outside that interval are extended along the endpoint tangents.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

var (
	// Material is the standard Material Design curve (0.4, 0, 0.2, 1).
	Material = Bezier(0.4, 0, 0.2, 1)
	// EaseOut is CSS "ease" (0.25, 0.1, 0.25, 1).
	EaseOut = Bezier(0.25, 0.1, 0.25, 1)
	// EaseInOut is CSS "ease-in-out" (0.42, 0, 0.58, 1).
	EaseInOut = Bezier(0.42, 0, 0.58, 1)
)

// OutCubic decelerates to rest without overshoot.
func OutCubic(t float64) float64 {
	if t < 0 || t > 1 {
		// slope 3 at 0, 0 at 1
		if t < 0 {
			return 3 * t
		}
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

// InOutCubic is the symmetric cubic ease.
func InOutCubic(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

const (
	newtonIterations = 8
	newtonMinSlope   = 1e-3
	solveEpsilon     = 1e-7
	bisectIterations = 40
)

// Bezier returns a cubic-bezier easing with control points (x1,y1) and
// (x2,y2); the end points are fixed at (0,0) and (1,1). x1 and x2 are
// clamped to [0,1] so the curve stays a function of x.
func Bezier(x1, y1, x2, y2 float64) Easing {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	if x1 == y1 && x2 == y2 {
		return Linear
	}
	c := bezierCurve{x1: x1, y1: y1, x2: x2, y2: y2}

	var startSlope, endSlope float64
	switch {
	case x1 > 0:
		startSlope = y1 / x1
	case y1 == 0 && x2 > 0:
		startSlope = y2 / x2
	}
	switch {
	case x2 < 1:
		endSlope = (y2 - 1) / (x2 - 1)
	case y2 == 1 && x1 < 1:
		endSlope = (y1 - 1) / (x1 - 1)
	}

	return func(t float64) float64 {
		switch {
		case t < 0:
			return startSlope * t
		case t > 1:
			return 1 + endSlope*(t-1)
		case t == 0:
			return 0
		case t == 1:
			return 1
		}
		return c.sampleY(c.solveT(t))
	}
}

type bezierCurve struct {
	x1, y1, x2, y2 float64
}

// coordinate of a 1D cubic with end points 0 and 1
func cubic(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func cubicSlope(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

func (c bezierCurve) sampleY(t float64) float64 { return cubic(c.y1, c.y2, t) }

// solveT finds the curve parameter whose x equals x.
func (c bezierCurve) solveT(x float64) float64 {
	t := x
	for i := 0; i < newtonIterations; i++ {
		slope := cubicSlope(c.x1, c.x2, t)
		if math.Abs(slope) < newtonMinSlope {
			break
		}
		dx := cubic(c.x1, c.x2, t) - x
		if math.Abs(dx) < solveEpsilon {
			return t
		}
		t -= dx / slope
	}
	if t >= 0 && t <= 1 && math.Abs(cubic(c.x1, c.x2, t)-x) < solveEpsilon {
		return t
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < bisectIterations; i++ {
		cur := cubic(c.x1, c.x2, t)
		if math.Abs(cur-x) < solveEpsilon {
			break
		}
		if cur < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
