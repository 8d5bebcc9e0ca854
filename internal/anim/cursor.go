package anim

import (
	"errors"
	"fmt"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

const (
	DefaultCursorMove timebase.Frame = 24

	cursorFadeIn      timebase.Frame = 6
	cursorFadeOut     timebase.Frame = 10
	clickDuration     timebase.Frame = 8
	rippleDuration    timebase.Frame = 12
	clickToFadeOut    timebase.Frame = 12
	moveToFadeOut     timebase.Frame = 30
	clickPressedScale                = 0.85
)

// ZoomSync scales the cursor together with a zoom over [Start, Start+Duration).
type ZoomSync struct {
	Start    timebase.Frame
	Duration timebase.Frame
	Scale    float64
}

// CursorSpec describes a pointer that travels, optionally clicks, and fades
// out. Positions are percentages of the container. Frames are scene-local.
type CursorSpec struct {
	Start        Point
	End          Point
	StartFrame   timebase.Frame
	MoveDuration timebase.Frame
	ClickAt      *timebase.Frame
	// FadeOutAt overrides the automatic fade-out start.
	FadeOutAt *timebase.Frame
	ZoomSync  *ZoomSync
}

// Ripple is the expanding ring emitted by a click. Radius is relative to the
// cursor size.
type Ripple struct {
	Radius  float64
	Opacity float64
}

// CursorState is the evaluated cursor.
type CursorState struct {
	Phase   Phase
	Visible bool
	X, Y    float64
	Scale   float64
	Opacity float64
	Ripple  *Ripple
}

var ErrCursorWindow = errors.New("cursor window")

func (c CursorSpec) move() timebase.Frame {
	if c.MoveDuration <= 0 {
		return DefaultCursorMove
	}
	return c.MoveDuration
}

// FadeOutStart is the first frame of the fade-out.
func (c CursorSpec) FadeOutStart() timebase.Frame {
	switch {
	case c.FadeOutAt != nil:
		return *c.FadeOutAt
	case c.ClickAt != nil:
		return *c.ClickAt + clickToFadeOut
	}
	return c.StartFrame + c.move() + moveToFadeOut
}

// EndFrame is the first frame after the cursor has vanished.
func (c CursorSpec) EndFrame() timebase.Frame { return c.FadeOutStart() + cursorFadeOut }

// Window reports the cursor phases.
func (c CursorSpec) Window() Window {
	moveEnd := c.StartFrame + c.move()
	hold := c.FadeOutStart() - moveEnd
	if hold < 0 {
		hold = 0
	}
	return Window{Start: c.StartFrame, Active: c.move(), Hold: hold, Exit: c.EndFrame() - moveEnd - hold}
}

// Validate checks the cursor fits inside a scene of the given length.
func (c CursorSpec) Validate(sceneDuration timebase.Frame) error {
	if c.StartFrame < 0 {
		return fmt.Errorf("%w: start %d is negative", ErrCursorWindow, c.StartFrame)
	}
	if c.ClickAt != nil && *c.ClickAt < c.StartFrame {
		return fmt.Errorf("%w: click at %d precedes start %d", ErrCursorWindow, *c.ClickAt, c.StartFrame)
	}
	if end := c.StartFrame + c.move(); end > sceneDuration {
		return fmt.Errorf("%w: move ends at %d, scene lasts %d", ErrCursorWindow, end, sceneDuration)
	}
	if c.ClickAt != nil && *c.ClickAt+clickDuration > sceneDuration {
		return fmt.Errorf("%w: click at %d exceeds scene of %d", ErrCursorWindow, *c.ClickAt, sceneDuration)
	}
	if c.ZoomSync != nil && c.ZoomSync.Duration <= 0 {
		return fmt.Errorf("%w: zoom sync duration must be positive", ErrCursorWindow)
	}
	return nil
}

// At evaluates the cursor at local frame f.
func (c CursorSpec) At(f timebase.Frame) CursorState {
	st := CursorState{Phase: c.Window().PhaseAt(f), X: c.Start.X, Y: c.Start.Y, Scale: 1}
	if st.Phase == PhasePending || st.Phase == PhaseDone {
		return st
	}
	x := float64(f)

	p := interp.Progress(x, float64(c.StartFrame), float64(c.move()), interp.EaseOut)
	st.X = interp.Lerp(c.Start.X, c.End.X, p)
	st.Y = interp.Lerp(c.Start.Y, c.End.Y, p)

	if c.ClickAt != nil {
		click := float64(*c.ClickAt)
		half := float64(clickDuration) / 2
		st.Scale = interp.Interpolate(x,
			[]float64{click, click + half, click + 2*half},
			[]float64{1, clickPressedScale, 1},
			interp.Clamped(interp.Material))
		if f >= *c.ClickAt && f < *c.ClickAt+rippleDuration {
			rp := float64(f-*c.ClickAt) / float64(rippleDuration)
			st.Ripple = &Ripple{Radius: interp.Lerp(0.3, 1.6, rp), Opacity: interp.Lerp(0.6, 0, rp)}
		}
	}
	if z := c.ZoomSync; z != nil {
		st.Scale *= interp.Interpolate(x,
			[]float64{float64(z.Start), float64(z.Start + z.Duration)},
			[]float64{1, z.Scale},
			interp.Clamped(interp.EaseInOut))
	}

	fadeIn := interp.Progress(x, float64(c.StartFrame), float64(cursorFadeIn), interp.Linear)
	fadeOut := interp.Progress(x, float64(c.FadeOutStart()), float64(cursorFadeOut), interp.Linear)
	st.Opacity = fadeIn * (1 - fadeOut)
	st.Visible = st.Opacity > 0
	return st
}
