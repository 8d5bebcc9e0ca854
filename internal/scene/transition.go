package scene

import (
	"errors"
	"fmt"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/theme"
	"github.com/ivlev/promoreel/internal/timebase"
)

const (
	DefaultEnter  timebase.Frame = 21
	DefaultExit   timebase.Frame = 15
	DefaultBreath timebase.Frame = 8
	FastEnter     timebase.Frame = 10

	enterScale = 0.95
	exitScale  = 0.97
	enterRise  = 20.0
)

var ErrLifecycle = errors.New("scene lifecycle")

// Transition wraps a scene with enter, hold, exit and a trailing breath in
// which nothing is shown.
type Transition struct {
	Enter         timebase.Frame
	Exit          timebase.Frame
	Breath        timebase.Frame
	FastEntrance  bool
	EntranceDelay timebase.Frame
}

// DefaultTransition is the standard 21/15/8 wrapper.
func DefaultTransition() Transition {
	return Transition{Enter: DefaultEnter, Exit: DefaultExit, Breath: DefaultBreath}
}

func (t Transition) enter() timebase.Frame {
	if t.FastEntrance {
		return FastEnter
	}
	return t.Enter
}

// ExitStart is the first exit frame for a scene of the given length.
func (t Transition) ExitStart(total timebase.Frame) timebase.Frame {
	return total - t.Exit - t.Breath
}

// Validate checks that the wrapper fits in total frames.
func (t Transition) Validate(total timebase.Frame) error {
	if t.enter() <= 0 || t.Exit <= 0 {
		return fmt.Errorf("%w: enter and exit must be positive", ErrLifecycle)
	}
	if t.Breath < 0 || t.EntranceDelay < 0 {
		return fmt.Errorf("%w: breath and entrance delay must not be negative", ErrLifecycle)
	}
	if need := t.EntranceDelay + t.enter() + t.Exit + t.Breath; need > total {
		return fmt.Errorf("%w: needs %d frames, scene has %d", ErrLifecycle, need, total)
	}
	return nil
}

// Lifecycle is the wrapper state at one frame.
type Lifecycle struct {
	Phase      anim.Phase
	Visible    bool
	Opacity    float64
	Scale      float64
	TranslateY float64
}

// Transform scales about the canvas centre then shifts vertically.
func (l Lifecycle) Transform() anim.Transform {
	return anim.ScaleAbout(l.Scale, theme.Width/2, theme.Height/2).Then(anim.Translate(0, l.TranslateY))
}

// Window exposes the wrapper as phases: entering, holding, exiting.
func (t Transition) Window(total timebase.Frame) anim.Window {
	start := t.EntranceDelay
	exitStart := t.ExitStart(total)
	hold := exitStart - start - t.enter()
	if hold < 0 {
		hold = 0
	}
	return anim.Window{Start: start, Active: t.enter(), Hold: hold, Exit: t.Exit}
}

// At evaluates the wrapper at local frame f of a scene lasting total frames.
func (t Transition) At(f, total timebase.Frame) Lifecycle {
	lc := Lifecycle{Phase: t.Window(total).PhaseAt(f), Scale: 1}
	x := float64(f)
	switch lc.Phase {
	case anim.PhaseActive:
		p := interp.Progress(x, float64(t.EntranceDelay), float64(t.enter()), interp.Material)
		lc.Opacity = p
		lc.Scale = interp.Lerp(enterScale, 1, p)
		lc.TranslateY = interp.Lerp(enterRise, 0, p)
	case anim.PhaseHold:
		lc.Opacity = 1
	case anim.PhaseCompleting:
		p := interp.Progress(x, float64(t.ExitStart(total)), float64(t.Exit), interp.Material)
		lc.Opacity = 1 - p
		lc.Scale = interp.Lerp(1, exitScale, p)
	}
	lc.Visible = lc.Opacity > 0
	return lc
}
