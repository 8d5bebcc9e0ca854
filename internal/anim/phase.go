package anim

import "github.com/ivlev/promoreel/internal/timebase"

// Phase is the lifecycle state shared by windowed animations.
type Phase int

const (
	PhasePending Phase = iota
	PhaseActive
	PhaseHold
	PhaseCompleting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseHold:
		return "hold"
	case PhaseCompleting:
		return "completing"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Window describes consecutive active, hold and completing spans starting at
// Start.
type Window struct {
	Start  timebase.Frame
	Active timebase.Frame
	Hold   timebase.Frame
	Exit   timebase.Frame
}

// PhaseAt classifies f by plain frame comparisons.
func (w Window) PhaseAt(f timebase.Frame) Phase {
	switch {
	case f < w.Start:
		return PhasePending
	case f < w.Start+w.Active:
		return PhaseActive
	case f < w.Start+w.Active+w.Hold:
		return PhaseHold
	case f < w.End():
		return PhaseCompleting
	}
	return PhaseDone
}

// End is the first frame of PhaseDone.
func (w Window) End() timebase.Frame { return w.Start + w.Active + w.Hold + w.Exit }
