// Package scene describes the scenes of a promo video and evaluates each of
// them into a display list for a given scene-local frame.
package scene

import (
	"errors"
	"fmt"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/timebase"
)

// Kind selects the scene choreography.
type Kind string

const (
	KindIntro   Kind = "intro"
	KindFeature Kind = "feature"
	KindSection Kind = "section"
	KindFinale  Kind = "finale"
	KindStack   Kind = "stack"
	KindOutro   Kind = "outro"
)

// Layout selects how a feature presents its screenshots.
type Layout string

const (
	LayoutSingle        Layout = "single"
	LayoutCarousel      Layout = "carousel"
	LayoutCrossfade     Layout = "crossfade"
	LayoutCinematicZoom Layout = "cinematic-zoom"
	LayoutFullscreen    Layout = "fullscreen"
)

// CarouselStyle selects how a carousel layout moves between screenshots.
type CarouselStyle string

const (
	CarouselCentered CarouselStyle = "centered"
	CarouselSlide    CarouselStyle = "slide"
)

const (
	DefaultSlide           timebase.Frame = 75
	DefaultSlideTransition timebase.Frame = 18
	CrossfadeTransition    timebase.Frame = 18

	sectionEnter         timebase.Frame = 15
	sectionExit          timebase.Frame = 10
	sectionDramaticEnter timebase.Frame = 25
)

var (
	ErrUnknownKind   = errors.New("unknown scene kind")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrScreenshots   = errors.New("screenshot count")
	ErrDuration      = errors.New("scene duration")
	ErrMissingZoom   = errors.New("layout needs a zoom")
)

// Scene is one slot of the video. Frames inside it are scene-local.
type Scene struct {
	ID          string
	Kind        Kind
	Title       string
	Subtitle    string
	Label       string
	Screenshots []string
	Layout      Layout
	Duration    timebase.Frame

	Cursor *anim.CursorSpec
	Zoom   *anim.ZoomSpec

	FastEntrance  bool
	EntranceDelay timebase.Frame
	Dramatic      bool

	Badge string
	CTA   string
	URL   string

	// Chaos labels the cards thrown during the intro.
	Chaos []string

	// Carousel timing and style; zero values take the defaults.
	Slide           timebase.Frame
	SlideTransition timebase.Frame
	CarouselStyle   CarouselStyle
}

// Transition returns the lifecycle wrapper for the scene kind.
func (s Scene) Transition() Transition {
	t := DefaultTransition()
	if s.Kind == KindSection {
		t.Enter, t.Exit = sectionEnter, sectionExit
		if s.Dramatic {
			t.Enter = sectionDramaticEnter
		}
	}
	t.FastEntrance = s.FastEntrance
	t.EntranceDelay = s.EntranceDelay
	return t
}

// Carousel returns the carousel over the scene screenshots, centered unless
// the scene asks for the slide style.
func (s Scene) Carousel() anim.Carousel {
	c := anim.Carousel{
		Count:      len(s.Screenshots),
		Slide:      s.Slide,
		Transition: s.SlideTransition,
		Variant:    anim.CarouselCentered,
	}
	if s.CarouselStyle == CarouselSlide {
		c.Variant = anim.CarouselSlide
	}
	if c.Slide == 0 {
		c.Slide = DefaultSlide
	}
	if c.Transition == 0 {
		c.Transition = DefaultSlideTransition
	}
	return c
}

// Crossfade returns the two-shot crossfade for the scene.
func (s Scene) Crossfade() anim.Crossfade {
	return anim.Crossfade{Duration: s.Duration, Transition: CrossfadeTransition}
}

func validKind(k Kind) bool {
	switch k {
	case KindIntro, KindFeature, KindSection, KindFinale, KindStack, KindOutro:
		return true
	}
	return false
}

func validLayout(l Layout) bool {
	switch l {
	case LayoutSingle, LayoutCarousel, LayoutCrossfade, LayoutCinematicZoom, LayoutFullscreen:
		return true
	}
	return false
}

// Validate checks the scene before rendering.
func (s Scene) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("%s: %w must be positive, got %d", s.ID, ErrDuration, s.Duration)
	}
	if !validKind(s.Kind) {
		return fmt.Errorf("%s: %w %q", s.ID, ErrUnknownKind, s.Kind)
	}
	if err := s.Transition().Validate(s.Duration); err != nil {
		return fmt.Errorf("%s: %w", s.ID, err)
	}

	if s.Kind == KindFeature || s.Kind == KindFinale {
		if !validLayout(s.Layout) {
			return fmt.Errorf("%s: %w %q", s.ID, ErrUnknownLayout, s.Layout)
		}
		switch {
		case s.Layout == LayoutCrossfade && len(s.Screenshots) != 2:
			return fmt.Errorf("%s: %w: crossfade needs 2, got %d", s.ID, ErrScreenshots, len(s.Screenshots))
		case len(s.Screenshots) == 0:
			return fmt.Errorf("%s: %w: layout %s needs at least one", s.ID, ErrScreenshots, s.Layout)
		}
		switch s.Layout {
		case LayoutCarousel:
			switch s.CarouselStyle {
			case "", CarouselCentered, CarouselSlide:
			default:
				return fmt.Errorf("%s: %w: carousel style %q", s.ID, ErrUnknownLayout, s.CarouselStyle)
			}
			if err := s.Carousel().Validate(); err != nil {
				return fmt.Errorf("%s: %w", s.ID, err)
			}
		case LayoutCinematicZoom:
			if s.Zoom == nil {
				return fmt.Errorf("%s: %w: %s", s.ID, ErrMissingZoom, s.Layout)
			}
		}
	}
	if s.Kind == KindStack && len(s.Screenshots) == 0 {
		return fmt.Errorf("%s: %w: stack needs at least one card", s.ID, ErrScreenshots)
	}

	if s.Cursor != nil {
		if err := s.Cursor.Validate(s.Duration); err != nil {
			return fmt.Errorf("%s: %w", s.ID, err)
		}
	}
	if s.Zoom != nil {
		if err := s.Zoom.Validate(s.Duration); err != nil {
			return fmt.Errorf("%s: %w", s.ID, err)
		}
	}
	return nil
}
