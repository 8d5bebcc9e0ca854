package anim

import (
	"math"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

const stackFadeIn timebase.Frame = 8

// CardStack flies cards in from below and stacks them.
type CardStack struct {
	Count        int
	BaseDelay    timebase.Frame
	PerCardDelay timebase.Frame
	AnimDuration timebase.Frame
	Spacing      float64
	FlyFromY     float64
	StartScale   float64
}

// DefaultCardStack is the summary-scene stack.
func DefaultCardStack(count int) CardStack {
	return CardStack{
		Count:        count,
		BaseDelay:    5,
		PerCardDelay: 6,
		AnimDuration: 14,
		Spacing:      18,
		FlyFromY:     900,
		StartScale:   4,
	}
}

// CardState is a card's offset from the stack top, its scale and opacity.
// Z orders cards: higher is drawn later.
type CardState struct {
	Index   int
	Y       float64
	Scale   float64
	Opacity float64
	Z       int
}

// CardStart is the first frame of card i.
func (s CardStack) CardStart(i int) timebase.Frame {
	return s.BaseDelay + timebase.Frame(i)*s.PerCardDelay
}

// Settled is the first frame at which every card has landed.
func (s CardStack) Settled() timebase.Frame {
	if s.Count == 0 {
		return s.BaseDelay
	}
	return s.CardStart(s.Count-1) + s.AnimDuration
}

// StackOpacity fades the whole stack in.
func (s CardStack) StackOpacity(f timebase.Frame) float64 {
	return interp.Progress(float64(f), 0, float64(stackFadeIn), interp.Linear)
}

// At evaluates every card at local frame f.
func (s CardStack) At(f timebase.Frame) []CardState {
	cards := make([]CardState, s.Count)
	for i := range cards {
		p := interp.Progress(float64(f), float64(s.CardStart(i)), float64(s.AnimDuration), interp.Linear)
		e := interp.OutCubic(p)
		cards[i] = CardState{
			Index:   i,
			Y:       interp.Lerp(s.FlyFromY, float64(i)*s.Spacing, e),
			Scale:   interp.Lerp(s.StartScale, 1, e),
			Opacity: math.Min(p*2, 1),
			Z:       i,
		}
	}
	return cards
}
