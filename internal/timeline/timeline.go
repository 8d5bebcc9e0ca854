// Package timeline lays scenes and audio tracks out on one global frame axis
// and answers which of them are active at a given frame.
package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/timebase"
)

var (
	ErrGap           = errors.New("timeline gap")
	ErrOverlap       = errors.New("timeline overlap")
	ErrTotalMismatch = errors.New("scene durations do not add up to the total")
	ErrUnknownScene  = errors.New("unknown scene")
	ErrAudioWindow   = errors.New("audio window")
)

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}

// Slot is a scene placed on the global timeline.
type Slot struct {
	Scene scene.Scene
	Start timebase.Frame
}

// Range is the global window of the slot.
func (s Slot) Range() timebase.Range {
	return timebase.Range{Start: s.Start, Duration: s.Scene.Duration}
}

// End is the first frame after the slot.
func (s Slot) End() timebase.Frame { return s.Start + s.Scene.Duration }

// SceneEntry is a scene with an optional explicit start that must match the
// end-to-end layout.
type SceneEntry struct {
	Scene scene.Scene
	From  *timebase.Frame
}

// Spec is the static input of Build.
type Spec struct {
	FPS       int
	Total     timebase.Frame
	Scenes    []SceneEntry
	Voiceover []VoiceScene
	Music     Music
}

// Timeline is the composed video.
type Timeline struct {
	FPS    int
	Total  timebase.Frame
	Slots  []Slot
	Tracks []Track
}

// Build lays the scenes out end to end, places the voiceover and tiles the
// music, then validates the result.
func Build(spec Spec) (*Timeline, error) {
	fps := spec.FPS
	if fps == 0 {
		fps = timebase.FPS
	}
	t := &Timeline{FPS: fps, Total: spec.Total}

	cursor := timebase.Frame(0)
	for _, e := range spec.Scenes {
		start := cursor
		if e.From != nil {
			start = *e.From
		}
		t.Slots = append(t.Slots, Slot{Scene: e.Scene, Start: start})
		cursor = start + e.Scene.Duration
	}
	if err := t.validateSlots(); err != nil {
		return nil, err
	}

	voice, err := placeVoice(t.Slots, spec.Voiceover)
	if err != nil {
		return nil, err
	}
	music, err := tileMusic(spec.Music, t.Total)
	if err != nil {
		return nil, err
	}
	t.Tracks = append(voice, music...)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Timeline) validateSlots() error {
	if len(t.Slots) == 0 {
		return fmt.Errorf("%w: no scenes", ErrGap)
	}
	expected := timebase.Frame(0)
	for _, s := range t.Slots {
		switch {
		case s.Start > expected:
			return fmt.Errorf("%w: frames %d-%d before %s", ErrGap, expected, s.Start-1, s.Scene.ID)
		case s.Start < expected:
			return fmt.Errorf("%w: %s starts at %d, previous scene ends at %d", ErrOverlap, s.Scene.ID, s.Start, expected)
		}
		expected = s.End()
	}
	if expected != t.Total {
		return fmt.Errorf("%w: scenes end at %d, total is %d", ErrTotalMismatch, expected, t.Total)
	}
	return nil
}

// Validate checks coverage, every scene, and every audio window.
func (t *Timeline) Validate() error {
	if err := t.validateSlots(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(t.Slots))
	for _, s := range t.Slots {
		if seen[s.Scene.ID] {
			return fmt.Errorf("duplicate scene id %q", s.Scene.ID)
		}
		seen[s.Scene.ID] = true
		if err := s.Scene.Validate(); err != nil {
			return err
		}
	}
	for _, tr := range t.Tracks {
		if tr.Duration <= 0 {
			return wrapf(ErrAudioWindow, "track %s has no duration", tr.ID)
		}
		if tr.Start < 0 || tr.Start >= t.Total {
			return wrapf(ErrAudioWindow, "track %s starts at %d outside 0-%d", tr.ID, tr.Start, t.Total)
		}
	}
	return nil
}

// SceneAt returns the slot active at global frame f and the scene-local
// frame.
func (t *Timeline) SceneAt(f timebase.Frame) (Slot, timebase.Frame, bool) {
	i := sort.Search(len(t.Slots), func(i int) bool { return t.Slots[i].End() > f })
	if i == len(t.Slots) || !t.Slots[i].Range().Contains(f) {
		return Slot{}, 0, false
	}
	s := t.Slots[i]
	return s, f - s.Start, true
}

// AudioAt returns every track sounding at global frame f. Tracks overlap
// freely.
func (t *Timeline) AudioAt(f timebase.Frame) []Sounding {
	var out []Sounding
	for _, tr := range t.Tracks {
		if !tr.Range().Contains(f) {
			continue
		}
		out = append(out, Sounding{Track: tr, Volume: tr.Envelope.Volume(float64(f)), Offset: f - tr.Start})
	}
	return out
}

// Frame is the display list at global frame f: the background plus the
// active scene evaluated at its local frame.
func (t *Timeline) Frame(f timebase.Frame) scene.FrameState {
	bg := scene.Background(f)
	slot, local, ok := t.SceneAt(f)
	if !ok {
		return scene.FrameState{Frame: f, Layers: []scene.Layer{bg}}
	}
	st := scene.Evaluate(slot.Scene, local)
	st.Frame = f
	st.Layers = append([]scene.Layer{bg}, st.Layers...)
	return st
}

// VoiceTracks returns the voiceover tracks in timeline order.
func (t *Timeline) VoiceTracks() []Track {
	var out []Track
	for _, tr := range t.Tracks {
		if tr.Kind == TrackVoice {
			out = append(out, tr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func segmentID(bed string, k int) string {
	return fmt.Sprintf("%s#%d", bed, k)
}
