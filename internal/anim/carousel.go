package anim

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

// CarouselVariant selects the carousel presentation.
type CarouselVariant int

const (
	// CarouselSlide shifts items by one full width per position.
	CarouselSlide CarouselVariant = iota
	// CarouselCentered keeps the current item centred with side peeks.
	CarouselCentered
)

const (
	DefaultCarouselSlide      timebase.Frame = 90
	DefaultCarouselTransition timebase.Frame = 18

	peekOffset  = 50.0
	peekScale   = 0.9
	peekOpacity = 0.4
	peekBlur    = 4.0
)

var ErrCarousel = errors.New("carousel")

// Carousel cycles through Count items, showing each for Slide frames and
// moving to the next over Transition frames.
type Carousel struct {
	Count      int
	Slide      timebase.Frame
	Transition timebase.Frame
	Variant    CarouselVariant
}

// CarouselItem is one rendered item. Offset is in percent of the item width.
type CarouselItem struct {
	Index   int
	Offset  float64
	Scale   float64
	Opacity float64
	Blur    float64
}

// CarouselState is the evaluated carousel.
type CarouselState struct {
	Index    int
	Progress float64
	Items    []CarouselItem
}

// Validate rejects empty carousels and non-positive slide times.
func (c Carousel) Validate() error {
	switch {
	case c.Count < 1:
		return fmt.Errorf("%w: needs at least one item", ErrCarousel)
	case c.Slide <= 0:
		return fmt.Errorf("%w: slide duration must be positive, got %d", ErrCarousel, c.Slide)
	case c.Transition < 0:
		return fmt.Errorf("%w: transition must not be negative, got %d", ErrCarousel, c.Transition)
	}
	return nil
}

func (c Carousel) cycle() timebase.Frame { return c.Slide + c.Transition }

// Duration is the length of one full pass with no trailing transition.
func (c Carousel) Duration() timebase.Frame {
	return timebase.Frame(c.Count)*c.Slide + timebase.Frame(c.Count-1)*c.Transition
}

// IndexAt is the current item, clamped to [0, Count-1].
func (c Carousel) IndexAt(f timebase.Frame) int {
	if f < 0 || c.Count < 1 {
		return 0
	}
	return min(int(f/c.cycle()), c.Count-1)
}

// At evaluates the carousel at local frame f. The last item holds once
// reached.
func (c Carousel) At(f timebase.Frame) CarouselState {
	st := CarouselState{Index: c.IndexAt(f)}
	if c.Count < 1 {
		return st
	}
	local := f - timebase.Frame(st.Index)*c.cycle()
	if st.Index < c.Count-1 && local >= c.Slide && c.Transition > 0 {
		st.Progress = interp.Progress(float64(local), float64(c.Slide), float64(c.Transition), interp.Material)
	}
	pos := float64(st.Index) + st.Progress

	switch c.Variant {
	case CarouselCentered:
		for i := 0; i < c.Count; i++ {
			d := c.distance(float64(i), pos)
			ad := math.Abs(d)
			if ad >= 2 {
				continue
			}
			near := math.Min(ad, 1)
			opacity := interp.Lerp(1, peekOpacity, near)
			if ad > 1 {
				opacity = interp.Lerp(peekOpacity, 0, ad-1)
			}
			st.Items = append(st.Items, CarouselItem{
				Index:   i,
				Offset:  d * peekOffset,
				Scale:   interp.Lerp(1, peekScale, near),
				Opacity: opacity,
				Blur:    interp.Lerp(0, peekBlur, near),
			})
		}
	default:
		for i := 0; i < c.Count; i++ {
			d := float64(i) - pos
			if math.Abs(d) >= 1 {
				continue
			}
			st.Items = append(st.Items, CarouselItem{Index: i, Offset: d * 100, Scale: 1, Opacity: 1})
		}
	}
	return st
}

// distance is the signed distance of item i from pos, wrapped so that with
// three or more items the neighbours of the ends peek from the other side.
func (c Carousel) distance(i, pos float64) float64 {
	d := i - pos
	if c.Count < 3 {
		return d
	}
	n := float64(c.Count)
	d = math.Mod(d, n)
	if d > n/2 {
		d -= n
	} else if d <= -n/2 {
		d += n
	}
	return d
}
