// Package anim implements the frame-driven animation primitives. Every
// function here is a pure function of a local frame and a static spec.
package anim

// Transform maps a point p to p*Scale + (X, Y).
type Transform struct {
	Scale float64
	X, Y  float64
}

// Identity leaves points unchanged.
func Identity() Transform { return Transform{Scale: 1} }

// Translate moves by (x, y).
func Translate(x, y float64) Transform { return Transform{Scale: 1, X: x, Y: y} }

// ScaleAbout scales by s keeping (ox, oy) fixed.
func ScaleAbout(s, ox, oy float64) Transform {
	return Transform{Scale: s, X: ox * (1 - s), Y: oy * (1 - s)}
}

// Then returns the transform applying t first and u second.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		Scale: t.Scale * u.Scale,
		X:     t.X*u.Scale + u.X,
		Y:     t.Y*u.Scale + u.Y,
	}
}

// Apply maps a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.X, y*t.Scale + t.Y
}

// Point is a position in percent (0-100) of its container.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Add offsets p by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
