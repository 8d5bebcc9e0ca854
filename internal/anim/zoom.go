package anim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

const (
	DefaultRingSize          = 120.0
	DefaultVignetteIntensity = 0.6

	ringLeadIn      timebase.Frame = 10
	ringFadeOut     timebase.Frame = 20
	ringPulsePeriod                = 30.0
	ringPulseScale                 = 1.08

	zoomCursorLead  timebase.Frame = 24
	zoomCursorMove  timebase.Frame = 20
	zoomCursorClick timebase.Frame = 2
)

var (
	ErrUnknownPreset = errors.New("unknown zoom preset")
	ErrZoomWindow    = errors.New("zoom window")
)

// ZoomSpec is a fully resolved cinematic zoom. Frames are scene-local.
type ZoomSpec struct {
	Target            Point
	Scale             float64
	AtFrame           timebase.Frame
	ZoomDuration      timebase.Frame
	HoldDuration      timebase.Frame
	ExitDuration      timebase.Frame
	ShowRing          bool
	ShowCursor        bool
	ShowVignette      bool
	ShowSpotlight     bool
	VignetteIntensity float64
	RingSize          float64
	CursorOffset      Point
}

// ZoomOverride carries per-field overrides applied on top of a preset.
type ZoomOverride struct {
	Target            *Point
	Scale             *float64
	AtFrame           *timebase.Frame
	ZoomDuration      *timebase.Frame
	HoldDuration      *timebase.Frame
	ExitDuration      *timebase.Frame
	ShowRing          *bool
	ShowCursor        *bool
	ShowVignette      *bool
	ShowSpotlight     *bool
	VignetteIntensity *float64
	RingSize          *float64
	CursorOffset      *Point
}

var zoomPresets = map[string]ZoomSpec{
	"subtle":    {Scale: 1.5, ZoomDuration: 24, HoldDuration: 45, ExitDuration: 18, ShowRing: true},
	"dramatic":  {Scale: 3, ZoomDuration: 30, HoldDuration: 60, ExitDuration: 24, ShowRing: true, ShowVignette: true, ShowSpotlight: true},
	"cinematic": {Scale: 2, ZoomDuration: 45, HoldDuration: 90, ExitDuration: 36, ShowRing: true, ShowVignette: true},
	"snappy":    {Scale: 2.5, ZoomDuration: 15, HoldDuration: 30, ExitDuration: 12, ShowRing: true, ShowVignette: true},
	"spotlight": {Scale: 2.2, ZoomDuration: 30, HoldDuration: 60, ExitDuration: 24, ShowRing: true, ShowVignette: true, ShowSpotlight: true},
}

// DefaultZoom is the zoom used when no preset is named.
func DefaultZoom() ZoomSpec {
	return ZoomSpec{
		Target:            Point{X: 50, Y: 50},
		Scale:             2,
		ZoomDuration:      30,
		HoldDuration:      60,
		ExitDuration:      24,
		ShowRing:          true,
		ShowVignette:      true,
		VignetteIntensity: DefaultVignetteIntensity,
		RingSize:          DefaultRingSize,
		CursorOffset:      Point{X: 15, Y: 15},
	}
}

// ZoomPresets lists the preset names in alphabetical order.
func ZoomPresets() []string {
	names := make([]string, 0, len(zoomPresets))
	for name := range zoomPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveZoom merges a preset (empty for the defaults) with overrides.
// Override fields win over preset fields.
func ResolveZoom(preset string, o ZoomOverride) (ZoomSpec, error) {
	z := DefaultZoom()
	if preset != "" {
		p, ok := zoomPresets[preset]
		if !ok {
			return ZoomSpec{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
		}
		z.Scale = p.Scale
		z.ZoomDuration = p.ZoomDuration
		z.HoldDuration = p.HoldDuration
		z.ExitDuration = p.ExitDuration
		z.ShowRing = p.ShowRing
		z.ShowVignette = p.ShowVignette
		z.ShowSpotlight = p.ShowSpotlight
	}
	setIf(&z.Target, o.Target)
	setIf(&z.Scale, o.Scale)
	setIf(&z.AtFrame, o.AtFrame)
	setIf(&z.ZoomDuration, o.ZoomDuration)
	setIf(&z.HoldDuration, o.HoldDuration)
	setIf(&z.ExitDuration, o.ExitDuration)
	setIf(&z.ShowRing, o.ShowRing)
	setIf(&z.ShowCursor, o.ShowCursor)
	setIf(&z.ShowVignette, o.ShowVignette)
	setIf(&z.ShowSpotlight, o.ShowSpotlight)
	setIf(&z.VignetteIntensity, o.VignetteIntensity)
	setIf(&z.RingSize, o.RingSize)
	setIf(&z.CursorOffset, o.CursorOffset)
	return z, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Total is approach + hold + exit.
func (z ZoomSpec) Total() timebase.Frame { return z.ZoomDuration + z.HoldDuration + z.ExitDuration }

func (z ZoomSpec) holdStart() timebase.Frame { return z.AtFrame + z.ZoomDuration }
func (z ZoomSpec) holdEnd() timebase.Frame   { return z.holdStart() + z.HoldDuration }

// Window reports approach, hold and exit as phases.
func (z ZoomSpec) Window() Window {
	return Window{Start: z.AtFrame, Active: z.ZoomDuration, Hold: z.HoldDuration, Exit: z.ExitDuration}
}

// Envelope is the scale breakpoint set of the zoom: approach, hold and
// exit between AtFrame and the end of the window.
func (z ZoomSpec) Envelope() (frames, scales []float64) {
	w := z.Window()
	frames = []float64{float64(w.Start), float64(z.holdStart()), float64(z.holdEnd()), float64(w.End())}
	scales = []float64{1, z.Scale, z.Scale, 1}
	return frames, scales
}

// Validate checks durations and that the zoom ends inside the scene.
func (z ZoomSpec) Validate(sceneDuration timebase.Frame) error {
	if z.ZoomDuration <= 0 || z.ExitDuration <= 0 {
		return fmt.Errorf("%w: zoom and exit durations must be positive", ErrZoomWindow)
	}
	if err := interp.CheckRange(z.Envelope()); err != nil {
		return fmt.Errorf("%w: %w", ErrZoomWindow, err)
	}
	switch {
	case z.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %v", ErrZoomWindow, z.Scale)
	case z.AtFrame < 0:
		return fmt.Errorf("%w: start %d is negative", ErrZoomWindow, z.AtFrame)
	case z.AtFrame+z.Total() > sceneDuration:
		return fmt.Errorf("%w: ends at %d, scene lasts %d", ErrZoomWindow, z.AtFrame+z.Total(), sceneDuration)
	}
	return nil
}

// RingState is the highlight ring around the target. Progress is the drawn
// fraction of the circle.
type RingState struct {
	Progress float64
	Scale    float64
	Opacity  float64
	Size     float64
}

// GlowState is the soft spotlight behind the target.
type GlowState struct {
	Scale   float64
	Opacity float64
}

// ZoomState is the evaluated zoom. Origin is in percent of the zoomed
// container; Scale is applied about it.
type ZoomState struct {
	Phase    Phase
	Scale    float64
	Origin   Point
	Progress float64
	Vignette float64
	Ring     *RingState
	Glow     *GlowState
	Cursor   *CursorState
}

// Transform returns the zoom as a transform of a w x h container placed at
// (x, y).
func (s ZoomState) Transform(x, y, w, h float64) Transform {
	return ScaleAbout(s.Scale, x+w*s.Origin.X/100, y+h*s.Origin.Y/100)
}

// Cursor returns the cursor that replaces the ring when ShowCursor is set.
func (z ZoomSpec) Cursor() CursorSpec {
	click := z.AtFrame - zoomCursorClick
	fadeOut := z.holdEnd() - cursorFadeOut
	return CursorSpec{
		Start:        z.Target.Add(z.CursorOffset),
		End:          z.Target,
		StartFrame:   z.AtFrame - zoomCursorLead,
		MoveDuration: zoomCursorMove,
		ClickAt:      &click,
		FadeOutAt:    &fadeOut,
		ZoomSync:     &ZoomSync{Start: z.AtFrame, Duration: z.ZoomDuration, Scale: z.Scale},
	}
}

// At evaluates the zoom at local frame f.
func (z ZoomSpec) At(f timebase.Frame) ZoomState {
	st := ZoomState{Phase: z.Window().PhaseAt(f), Scale: 1, Origin: Point{X: 50, Y: 50}}
	x := float64(f)

	switch st.Phase {
	case PhaseActive:
		st.Progress = interp.Progress(x, float64(z.AtFrame), float64(z.ZoomDuration), interp.EaseInOut)
	case PhaseHold:
		st.Progress = 1
	case PhaseCompleting:
		st.Progress = 1 - interp.Progress(x, float64(z.holdEnd()), float64(z.ExitDuration), interp.EaseInOut)
	}
	if st.Phase != PhasePending && st.Phase != PhaseDone {
		st.Origin = z.Target
		st.Scale = interp.Lerp(1, z.Scale, st.Progress)
	}
	if z.ShowVignette {
		st.Vignette = z.VignetteIntensity * st.Progress
	}

	if z.ShowCursor {
		if c := z.Cursor().At(f); c.Visible {
			st.Cursor = &c
		}
	}

	drawIn := z.drawIn(x)
	fadeOut := interp.Progress(x, float64(z.holdEnd()-ringFadeOut), float64(ringFadeOut), interp.Linear)
	if drawIn <= 0 || fadeOut >= 1 {
		return st
	}
	if z.ShowRing && !z.ShowCursor {
		scale := interp.Interpolate(drawIn, []float64{0, 0.6, 1}, []float64{0, 1.2, 1}, interp.Clamped(interp.EaseOut))
		if f >= z.holdStart() {
			phase := 2 * math.Pi * float64(f-z.holdStart()) / ringPulsePeriod
			scale *= 1 + (ringPulseScale-1)*(1-math.Cos(phase))/2
		}
		st.Ring = &RingState{
			Progress: drawIn,
			Scale:    scale,
			Opacity:  drawIn * (1 - fadeOut),
			Size:     z.RingSize,
		}
	}
	if z.ShowSpotlight {
		combined := drawIn * 0.8
		if f >= z.holdStart() {
			combined = 0.8 + 0.2*interp.Progress(x, float64(z.holdStart()), float64(z.HoldDuration), interp.Linear)
		}
		st.Glow = &GlowState{
			Scale:   interp.Lerp(0.5, 2, combined),
			Opacity: interp.Interpolate(combined, []float64{0, 0.8, 1}, []float64{0, 1, 0}, interp.Clamped(interp.Linear)),
		}
	}
	return st
}

func (z ZoomSpec) drawIn(x float64) float64 {
	start := float64(z.AtFrame - ringLeadIn)
	end := float64(z.AtFrame) + float64(z.ZoomDuration)*0.5
	return interp.Progress(x, start, end-start, interp.EaseOut)
}
