// Package storyboard reads the declarative YAML description of a promo
// video and compiles it into a timeline specification.
package storyboard

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/timebase"
)

// Storyboard is the root of a storyboard file.
type Storyboard struct {
	Version   string           `yaml:"version"`
	FPS       int              `yaml:"fps"`
	Width     int              `yaml:"width"`
	Height    int              `yaml:"height"`
	Total     timebase.Frame   `yaml:"total"`
	Scenes    []Scene          `yaml:"scenes"`
	Voiceover []VoiceoverScene `yaml:"voiceover,omitempty"`
	Music     *Music           `yaml:"music,omitempty"`
}

// Scene is one scene record.
type Scene struct {
	ID              string          `yaml:"id"`
	Kind            string          `yaml:"kind"`
	From            *timebase.Frame `yaml:"from,omitempty"`
	Duration        timebase.Frame  `yaml:"duration"`
	Title           string          `yaml:"title,omitempty"`
	Subtitle        string          `yaml:"subtitle,omitempty"`
	Label           string          `yaml:"label,omitempty"`
	Layout          string          `yaml:"layout,omitempty"`
	Screenshots     []string        `yaml:"screenshots,omitempty"`
	Cursor          *Cursor         `yaml:"cursor,omitempty"`
	Zoom            *Zoom           `yaml:"zoom,omitempty"`
	FastEntrance    bool            `yaml:"fastEntrance,omitempty"`
	EntranceDelay   timebase.Frame  `yaml:"entranceDelay,omitempty"`
	Dramatic        bool            `yaml:"dramatic,omitempty"`
	Badge           string          `yaml:"badge,omitempty"`
	CTA             string          `yaml:"cta,omitempty"`
	URL             string          `yaml:"url,omitempty"`
	Slide           timebase.Frame  `yaml:"slide,omitempty"`
	SlideTransition timebase.Frame  `yaml:"slideTransition,omitempty"`
	Carousel        string          `yaml:"carousel,omitempty"`
	Chaos           []string        `yaml:"chaos,omitempty"`
}

// Cursor is a scripted pointer movement.
type Cursor struct {
	Start        anim.Point      `yaml:"start"`
	End          anim.Point      `yaml:"end"`
	StartFrame   timebase.Frame  `yaml:"startFrame"`
	MoveDuration timebase.Frame  `yaml:"moveDuration,omitempty"`
	ClickAt      *timebase.Frame `yaml:"clickAt,omitempty"`
}

// Zoom names a preset and overrides any of its fields.
type Zoom struct {
	Preset            string          `yaml:"preset,omitempty"`
	Target            *Target         `yaml:"target,omitempty"`
	Scale             *float64        `yaml:"scale,omitempty"`
	At                *timebase.Frame `yaml:"at,omitempty"`
	ZoomDuration      *timebase.Frame `yaml:"zoomDuration,omitempty"`
	HoldDuration      *timebase.Frame `yaml:"holdDuration,omitempty"`
	ExitDuration      *timebase.Frame `yaml:"exitDuration,omitempty"`
	Ring              *bool           `yaml:"ring,omitempty"`
	Cursor            *bool           `yaml:"cursor,omitempty"`
	Vignette          *bool           `yaml:"vignette,omitempty"`
	Spotlight         *bool           `yaml:"spotlight,omitempty"`
	VignetteIntensity *float64        `yaml:"vignetteIntensity,omitempty"`
	RingSize          *float64        `yaml:"ringSize,omitempty"`
	CursorOffset      *anim.Point     `yaml:"cursorOffset,omitempty"`
}

// Target is either a point in percent or "auto", which asks the focus
// analyzer for one.
type Target struct {
	Auto  bool
	Point anim.Point
}

func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value != "auto" {
			return fmt.Errorf("line %d: zoom target must be a point or \"auto\", got %q", value.Line, value.Value)
		}
		t.Auto = true
		return nil
	}
	return value.Decode(&t.Point)
}

func (t Target) MarshalYAML() (any, error) {
	if t.Auto {
		return "auto", nil
	}
	return t.Point, nil
}

// VoiceoverScene lists the lines spoken over one scene.
type VoiceoverScene struct {
	Scene string      `yaml:"scene"`
	Lines []VoiceLine `yaml:"lines"`
}

// VoiceLine is a voiceover clip. Frames may be left out and measured.
type VoiceLine struct {
	ID     string          `yaml:"id"`
	Audio  string          `yaml:"audio"`
	At     *timebase.Frame `yaml:"at,omitempty"`
	Frames timebase.Frame  `yaml:"frames,omitempty"`
	Volume float64         `yaml:"volume,omitempty"`
}

// Music configures the background beds.
type Music struct {
	Crossfade timebase.Frame `yaml:"crossfade"`
	FadeIn    timebase.Frame `yaml:"fadeIn"`
	FadeOut   timebase.Frame `yaml:"fadeOut"`
	Beds      []MusicBed     `yaml:"beds"`
}

// MusicBed is one looping background track.
type MusicBed struct {
	ID     string          `yaml:"id"`
	Source string          `yaml:"source"`
	Volume float64         `yaml:"volume,omitempty"`
	Length timebase.Frame  `yaml:"length,omitempty"`
	From   *timebase.Frame `yaml:"from,omitempty"`
}

// AudioRefs returns every audio file the storyboard references.
func (s *Storyboard) AudioRefs() []string {
	var refs []string
	for _, vs := range s.Voiceover {
		for _, l := range vs.Lines {
			refs = append(refs, l.Audio)
		}
	}
	if s.Music != nil {
		for _, b := range s.Music.Beds {
			refs = append(refs, b.Source)
		}
	}
	return refs
}

// ScreenshotRefs returns every screenshot reference, without duplicates, in
// order of first use.
func (s *Storyboard) ScreenshotRefs() []string {
	seen := map[string]bool{}
	var refs []string
	for _, sc := range s.Scenes {
		for _, ref := range sc.Screenshots {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}
