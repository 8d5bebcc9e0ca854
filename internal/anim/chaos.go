package anim

import (
	"math"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

const (
	ChaosThrowFrames timebase.Frame = 14
	chaosStagger     timebase.Frame = 8
	crossOutFrames                  = 100.0
	chaosFadeOut                    = 30.0
	chaosStartScale                 = 1.8
	chaosSettle                     = 0.3
	chaosSeed                       = 7321.4567
)

// chaosLanding holds hand-placed landing spots, in percent of the canvas,
// for the first cards. Later cards land at seeded positions.
var chaosLanding = []Point{
	{20, 25}, {75, 20}, {35, 75}, {80, 70}, {50, 45},
	{15, 40}, {85, 35}, {25, 80}, {70, 15}, {60, 85},
	{40, 60}, {90, 50}, {10, 60}, {55, 25}, {30, 10},
	{65, 55}, {12, 88}, {88, 82}, {45, 30}, {78, 45},
	{22, 55}, {58, 68}, {82, 28}, {38, 92}, {68, 78},
}

// ChaosCard is the fixed throw of one card. Every field is derived from the
// card index alone, so renders are reproducible.
type ChaosCard struct {
	Angle    float64 // launch direction from the canvas centre, radians
	Distance float64 // launch distance in reference pixels
	Rotation float64 // launch tilt in degrees
	Delay    timebase.Frame
	Land     Point
}

func fract(v float64) float64 { return v - math.Floor(v) }

// ChaosCardAt returns the throw of card i.
func ChaosCardAt(i int) ChaosCard {
	seed := float64(i) * chaosSeed
	r := fract(seed)
	c := ChaosCard{
		Angle:    r * 2 * math.Pi,
		Distance: 1000 + math.Mod(seed*2000, 500),
		Rotation: (r - 0.5) * 90,
		Delay:    timebase.Frame(i)*chaosStagger + timebase.Frame(math.Floor(r*4)),
	}
	if i < len(chaosLanding) {
		c.Land = chaosLanding[i]
	} else {
		c.Land = Point{X: 10 + 80*fract(seed*13), Y: 10 + 80*fract(seed*29)}
	}
	return c
}

// ChaosThrow flings Count cards onto the canvas one after another, then
// crosses them all out with a single hand-drawn stroke. Start and the
// returned states use scene-local frames; CrossOutAt counts from Start.
type ChaosThrow struct {
	Count      int
	Start      timebase.Frame
	Duration   timebase.Frame
	CrossOutAt timebase.Frame
	// Width and Height size the canvas so launch distances map to percent.
	Width, Height float64
}

// DefaultChaosThrow is the intro throw on a w x h canvas.
func DefaultChaosThrow(count int, w, h float64) ChaosThrow {
	return ChaosThrow{Count: count, Start: 140, Duration: 340, CrossOutAt: 240, Width: w, Height: h}
}

// ChaosCardState is a thrown card. Pos is its centre in percent.
type ChaosCardState struct {
	Index    int
	Pos      Point
	Rotation float64
	Scale    float64
	Opacity  float64
}

// ChaosState is the throw at one frame. Opacity applies to everything;
// CrossOut is the drawn fraction of the stroke.
type ChaosState struct {
	Cards           []ChaosCardState
	Opacity         float64
	CrossOut        float64
	CrossOutOpacity float64
}

// End is the first frame after the throw.
func (c ChaosThrow) End() timebase.Frame { return c.Start + c.Duration + 1 }

// At evaluates the throw at scene frame f.
func (c ChaosThrow) At(f timebase.Frame) ChaosState {
	local := float64(f - c.Start)
	d := float64(c.Duration)
	if local < 0 || local > d {
		return ChaosState{}
	}
	st := ChaosState{
		Opacity: interp.Interpolate(local, []float64{d - chaosFadeOut, d}, []float64{1, 0}, interp.Clamped(interp.Linear)),
	}
	for i := 0; i < c.Count; i++ {
		card := ChaosCardAt(i)
		if local < float64(card.Delay) {
			continue
		}
		p := interp.Progress(local, float64(card.Delay), float64(ChaosThrowFrames), interp.Linear)
		e := interp.EaseOut(p)
		from := Point{
			X: 50 + math.Cos(card.Angle)*card.Distance/c.Width*100,
			Y: 50 + math.Sin(card.Angle)*card.Distance/c.Height*100,
		}
		st.Cards = append(st.Cards, ChaosCardState{
			Index:    i,
			Pos:      Point{X: interp.Lerp(from.X, card.Land.X, e), Y: interp.Lerp(from.Y, card.Land.Y, e)},
			Rotation: interp.Lerp(card.Rotation, card.Rotation*chaosSettle, e),
			Scale:    interp.Lerp(chaosStartScale, 1, e),
			Opacity:  math.Min(p*2, 1),
		})
	}
	if at := float64(c.CrossOutAt); local >= at {
		st.CrossOut = interp.Progress(local, at, crossOutFrames, interp.Linear)
		st.CrossOutOpacity = math.Min(st.CrossOut/0.05, 1)
	}
	return st
}

// crossOutStroke is one smooth cubic chain in reference pixels: a start
// point, the first segment's two controls and end, then (control, end)
// pairs whose first control mirrors the previous one.
var crossOutStroke = []Point{
	{100, 150},
	{250, 180}, {350, 160}, {450, 220},
	{700, 180}, {850, 250},
	{1150, 300}, {1250, 380},
	{1500, 350}, {1600, 450},
	{1750, 550}, {1550, 600},
	{1250, 650}, {1000, 700},
	{700, 750}, {550, 800},
	{350, 850}, {300, 880},
	{700, 920}, {1000, 950},
	{1400, 980}, {1700, 1020},
}

const crossOutSteps = 24

// CrossOutPath flattens the cross-out stroke into a polyline in reference
// pixels.
func CrossOutPath() []Point {
	p0, c1, c2, p1 := crossOutStroke[0], crossOutStroke[1], crossOutStroke[2], crossOutStroke[3]
	pts := []Point{p0}
	pts = appendCubic(pts, p0, c1, c2, p1)
	for i := 4; i+1 < len(crossOutStroke); i += 2 {
		p0, c1 = p1, Point{X: 2*p1.X - c2.X, Y: 2*p1.Y - c2.Y}
		c2, p1 = crossOutStroke[i], crossOutStroke[i+1]
		pts = appendCubic(pts, p0, c1, c2, p1)
	}
	return pts
}

func appendCubic(pts []Point, p0, c1, c2, p1 Point) []Point {
	for s := 1; s <= crossOutSteps; s++ {
		t := float64(s) / crossOutSteps
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		pts = append(pts, Point{
			X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
		})
	}
	return pts
}

// TrimPath returns the leading fraction t of the polyline by arc length.
func TrimPath(pts []Point, t float64) []Point {
	if len(pts) < 2 || t <= 0 {
		return nil
	}
	if t >= 1 {
		return pts
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	left := total * t
	out := []Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		seg := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if seg >= left {
			k := 0.0
			if seg > 0 {
				k = left / seg
			}
			return append(out, Point{
				X: interp.Lerp(pts[i-1].X, pts[i].X, k),
				Y: interp.Lerp(pts[i-1].Y, pts[i].Y, k),
			})
		}
		left -= seg
		out = append(out, pts[i])
	}
	return out
}
