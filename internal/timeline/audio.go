package timeline

import (
	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

// TrackKind separates voiceover from music.
type TrackKind string

const (
	TrackVoice TrackKind = "voice"
	TrackMusic TrackKind = "music"
)

// Envelope is a base volume with optional fade windows in global frames.
type Envelope struct {
	Base    float64
	FadeIn  *timebase.Range
	FadeOut *timebase.Range
}

// Volume is the envelope value at global frame f. Fractional frames are
// allowed so the mixer can evaluate it per sample.
func (e Envelope) Volume(f float64) float64 {
	v := e.Base
	if in := e.FadeIn; in != nil {
		v *= interp.Progress(f, float64(in.Start), float64(in.Duration), interp.Linear)
	}
	if out := e.FadeOut; out != nil {
		v *= 1 - interp.Progress(f, float64(out.Start), float64(out.Duration), interp.Linear)
	}
	return v
}

// Track is one playback of an audio source on the global timeline.
type Track struct {
	ID       string
	Kind     TrackKind
	Source   string
	Start    timebase.Frame
	Duration timebase.Frame
	Envelope Envelope
}

// Range is the global window of the track.
func (t Track) Range() timebase.Range {
	return timebase.Range{Start: t.Start, Duration: t.Duration}
}

// Sounding is a track playing at a frame with its current volume.
type Sounding struct {
	Track  Track
	Volume float64
	// Offset is the frame position inside the track source.
	Offset timebase.Frame
}

// VoiceLine is one voiceover clip. At is relative to its scene start; nil
// places the line after the previous one.
type VoiceLine struct {
	ID     string
	Audio  string
	At     *timebase.Frame
	Frames timebase.Frame
	Volume float64
}

// VoiceScene groups the lines spoken over one scene.
type VoiceScene struct {
	Scene string
	Lines []VoiceLine
}

// MusicBed is one looping background track. Length is the loop length in
// frames; From is its global start (the first bed defaults to 0).
type MusicBed struct {
	ID     string
	Source string
	Volume float64
	Length timebase.Frame
	From   *timebase.Frame
}

// Music configures the background beds.
type Music struct {
	Crossfade timebase.Frame
	FadeIn    timebase.Frame
	FadeOut   timebase.Frame
	Beds      []MusicBed
}

const (
	firstLineAt timebase.Frame = 15
	lineGap     timebase.Frame = 10
)

// placeVoice turns voiceover lines into tracks.
func placeVoice(slots []Slot, scenes []VoiceScene) ([]Track, error) {
	byID := make(map[string]Slot, len(slots))
	for _, s := range slots {
		byID[s.Scene.ID] = s
	}
	var tracks []Track
	for _, vs := range scenes {
		slot, ok := byID[vs.Scene]
		if !ok {
			return nil, wrapf(ErrUnknownScene, "voiceover for %q", vs.Scene)
		}
		next := firstLineAt
		for _, line := range vs.Lines {
			if line.Frames <= 0 {
				return nil, wrapf(ErrAudioWindow, "voice line %s has no duration", line.ID)
			}
			at := next
			if line.At != nil {
				at = *line.At
			}
			vol := line.Volume
			if vol == 0 {
				vol = 1
			}
			tracks = append(tracks, Track{
				ID:       line.ID,
				Kind:     TrackVoice,
				Source:   line.Audio,
				Start:    slot.Start + at,
				Duration: line.Frames,
				Envelope: Envelope{Base: vol},
			})
			next = at + line.Frames + lineGap
		}
	}
	return tracks, nil
}

// tileMusic splits every bed into Length-sized segments. Only the first
// segment of a bed fades in. The segment holding the bed's fade-out frame
// fades out, and when that fade crosses a tile boundary the next tile
// continues it. Tiles starting after the fade has finished are dropped.
func tileMusic(m Music, total timebase.Frame) ([]Track, error) {
	var tracks []Track
	for i, bed := range m.Beds {
		if bed.Length <= 0 {
			return nil, wrapf(ErrAudioWindow, "music bed %s has no length", bed.ID)
		}
		from := timebase.Frame(0)
		if bed.From != nil {
			from = *bed.From
		} else if i > 0 {
			return nil, wrapf(ErrAudioWindow, "music bed %s needs a start frame", bed.ID)
		}

		fadeIn := timebase.Range{Start: from, Duration: m.FadeIn}
		if i > 0 {
			fadeIn.Duration = m.Crossfade
		}
		fadeOut := timebase.Range{Start: total - m.FadeOut, Duration: m.FadeOut}
		if i < len(m.Beds)-1 {
			nb := m.Beds[i+1]
			if nb.From == nil || *nb.From <= from {
				return nil, wrapf(ErrAudioWindow, "music bed %s must start after %s", nb.ID, bed.ID)
			}
			fadeOut = timebase.Range{Start: *nb.From, Duration: m.Crossfade}
		}
		stop := fadeOut.End()
		if stop > total {
			stop = total
		}

		vol := bed.Volume
		if vol == 0 {
			vol = 1
		}
		for k := 0; ; k++ {
			seg := timebase.Range{Start: from + timebase.Frame(k)*bed.Length, Duration: bed.Length}
			if seg.Start >= stop {
				break
			}
			if seg.End() > stop {
				seg.Duration = stop - seg.Start
			}
			env := Envelope{Base: vol}
			if k == 0 && fadeIn.Duration > 0 {
				in := fadeIn
				env.FadeIn = &in
			}
			if fadeOut.Duration > 0 && seg.End() > fadeOut.Start {
				out := fadeOut
				env.FadeOut = &out
			}
			tracks = append(tracks, Track{
				ID:       segmentID(bed.ID, k),
				Kind:     TrackMusic,
				Source:   bed.Source,
				Start:    seg.Start,
				Duration: seg.Duration,
				Envelope: env,
			})
		}
	}
	return tracks, nil
}
