package storyboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
)

// Resolver supplies the values a storyboard may leave out.
type Resolver interface {
	// AudioFrames measures an audio file in frames.
	AudioFrames(ctx context.Context, ref string) (timebase.Frame, error)
	// FocusPoint suggests a zoom target for a screenshot, in percent.
	FocusPoint(ctx context.Context, screenshot string) (anim.Point, error)
}

// Options configures Compile.
type Options struct {
	Resolver Resolver
	Logger   zerolog.Logger
}

var errNoResolver = errors.New("no resolver configured")

// Compile turns a storyboard into a timeline spec. Missing audio durations
// and automatic zoom targets go through the resolver; audio that cannot be
// measured is dropped with a warning.
func Compile(ctx context.Context, sb *Storyboard, opts Options) (timeline.Spec, error) {
	spec := timeline.Spec{FPS: sb.FPS, Total: sb.Total}
	if spec.FPS == 0 {
		spec.FPS = timebase.FPS
	}

	for _, sc := range sb.Scenes {
		s, err := compileScene(ctx, sc, opts)
		if err != nil {
			return timeline.Spec{}, err
		}
		spec.Scenes = append(spec.Scenes, timeline.SceneEntry{Scene: s, From: sc.From})
	}

	for _, vs := range sb.Voiceover {
		out := timeline.VoiceScene{Scene: vs.Scene}
		for _, l := range vs.Lines {
			frames := l.Frames
			if frames <= 0 {
				f, err := audioFrames(ctx, opts, l.Audio)
				if err != nil {
					opts.Logger.Warn().Err(err).Str("line", l.ID).Str("audio", l.Audio).Msg("voice line skipped")
					continue
				}
				frames = f
			}
			out.Lines = append(out.Lines, timeline.VoiceLine{ID: l.ID, Audio: l.Audio, At: l.At, Frames: frames, Volume: l.Volume})
		}
		spec.Voiceover = append(spec.Voiceover, out)
	}

	if m := sb.Music; m != nil {
		spec.Music = timeline.Music{Crossfade: m.Crossfade, FadeIn: m.FadeIn, FadeOut: m.FadeOut}
		for _, b := range m.Beds {
			length := b.Length
			if length <= 0 {
				f, err := audioFrames(ctx, opts, b.Source)
				if err != nil {
					opts.Logger.Warn().Err(err).Str("bed", b.ID).Str("audio", b.Source).Msg("music bed skipped")
					continue
				}
				length = f
			}
			spec.Music.Beds = append(spec.Music.Beds, timeline.MusicBed{ID: b.ID, Source: b.Source, Volume: b.Volume, Length: length, From: b.From})
		}
		// the first remaining bed always starts the music
		if len(spec.Music.Beds) > 0 && spec.Music.Beds[0].From == nil {
			zero := timebase.Frame(0)
			spec.Music.Beds[0].From = &zero
		}
	}
	return spec, nil
}

// Build compiles the storyboard and lays out the timeline.
func Build(ctx context.Context, sb *Storyboard, opts Options) (*timeline.Timeline, error) {
	spec, err := Compile(ctx, sb, opts)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Build(spec)
	if err != nil {
		return nil, fmt.Errorf("storyboard: %w", err)
	}
	return tl, nil
}

func audioFrames(ctx context.Context, opts Options, ref string) (timebase.Frame, error) {
	if opts.Resolver == nil {
		return 0, errNoResolver
	}
	f, err := opts.Resolver.AudioFrames(ctx, ref)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("audio %s measured %d frames", ref, f)
	}
	return f, nil
}

func compileScene(ctx context.Context, sc Scene, opts Options) (scene.Scene, error) {
	s := scene.Scene{
		ID:              sc.ID,
		Kind:            scene.Kind(sc.Kind),
		Title:           sc.Title,
		Subtitle:        sc.Subtitle,
		Label:           sc.Label,
		Screenshots:     sc.Screenshots,
		Layout:          scene.Layout(sc.Layout),
		Duration:        sc.Duration,
		FastEntrance:    sc.FastEntrance,
		EntranceDelay:   sc.EntranceDelay,
		Dramatic:        sc.Dramatic,
		Badge:           sc.Badge,
		CTA:             sc.CTA,
		URL:             sc.URL,
		Slide:           sc.Slide,
		SlideTransition: sc.SlideTransition,
		CarouselStyle:   scene.CarouselStyle(sc.Carousel),
		Chaos:           sc.Chaos,
	}
	if s.Layout == "" {
		s.Layout = scene.LayoutSingle
		if s.Kind == scene.KindFinale {
			s.Layout = scene.LayoutFullscreen
		}
	}

	if c := sc.Cursor; c != nil {
		s.Cursor = &anim.CursorSpec{
			Start:        c.Start,
			End:          c.End,
			StartFrame:   c.StartFrame,
			MoveDuration: c.MoveDuration,
			ClickAt:      c.ClickAt,
		}
	}

	if z := sc.Zoom; z != nil {
		o := anim.ZoomOverride{
			Scale:             z.Scale,
			AtFrame:           z.At,
			ZoomDuration:      z.ZoomDuration,
			HoldDuration:      z.HoldDuration,
			ExitDuration:      z.ExitDuration,
			ShowRing:          z.Ring,
			ShowCursor:        z.Cursor,
			ShowVignette:      z.Vignette,
			ShowSpotlight:     z.Spotlight,
			VignetteIntensity: z.VignetteIntensity,
			RingSize:          z.RingSize,
			CursorOffset:      z.CursorOffset,
		}
		if t := z.Target; t != nil {
			p := t.Point
			if t.Auto {
				p = focusPoint(ctx, sc, opts)
			}
			o.Target = &p
		}
		spec, err := anim.ResolveZoom(z.Preset, o)
		if err != nil {
			return scene.Scene{}, fmt.Errorf("scene %s: %w", sc.ID, err)
		}
		s.Zoom = &spec
	}
	return s, nil
}

func focusPoint(ctx context.Context, sc Scene, opts Options) anim.Point {
	centre := anim.Point{X: 50, Y: 50}
	if len(sc.Screenshots) == 0 || opts.Resolver == nil {
		return centre
	}
	p, err := opts.Resolver.FocusPoint(ctx, sc.Screenshots[0])
	if err != nil {
		opts.Logger.Warn().Err(err).Str("scene", sc.ID).Msg("auto zoom target unavailable, using centre")
		return centre
	}
	return p
}
