package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/analyzer"
	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/audio"
	"github.com/ivlev/promoreel/internal/source"
	"github.com/ivlev/promoreel/internal/store"
	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/timebase"
)

// Resolver measures audio and analyses screenshots for storyboard
// compilation. Durations are cached in Store when one is configured.
type Resolver struct {
	Dir      string
	FPS      int
	DPI      int
	Store    *store.Store
	Detector analyzer.Detector
	Logger   zerolog.Logger

	// Probe measures files the native decoders reject. Defaults to ffprobe.
	Probe func(ctx context.Context, path string) (time.Duration, error)

	mu    sync.Mutex
	focus map[string]anim.Point
}

func (r *Resolver) path(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(r.Dir, ref)
}

// AudioFrames implements storyboard.Resolver.
func (r *Resolver) AudioFrames(ctx context.Context, ref string) (timebase.Frame, error) {
	d, err := r.Duration(ctx, ref)
	if err != nil {
		return 0, err
	}
	fps := r.FPS
	if fps <= 0 {
		fps = timebase.FPS
	}
	return audio.FramesFor(d, fps), nil
}

// Duration measures an audio file, consulting the cache first.
func (r *Resolver) Duration(ctx context.Context, ref string) (time.Duration, error) {
	path := r.path(ref)
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	size, mod := info.Size(), info.ModTime().Unix()

	if r.Store != nil {
		d, ok, err := r.Store.Duration(ctx, ref, size, mod)
		if err != nil {
			r.Logger.Warn().Err(err).Str("audio", ref).Msg("duration cache read failed")
		} else if ok {
			return d, nil
		}
	}

	d, err := audio.Probe(path)
	if errors.Is(err, audio.ErrUnsupported) {
		probe := r.Probe
		if probe == nil {
			probe = system.ProbeDuration
		}
		d, err = probe(ctx, path)
	}
	if err != nil {
		return 0, err
	}

	if r.Store != nil {
		if err := r.Store.PutDuration(ctx, ref, size, mod, d); err != nil {
			r.Logger.Warn().Err(err).Str("audio", ref).Msg("duration cache write failed")
		}
	}
	return d, nil
}

// FocusPoint implements storyboard.Resolver. Results are memoized per
// screenshot.
func (r *Resolver) FocusPoint(ctx context.Context, screenshot string) (anim.Point, error) {
	r.mu.Lock()
	if p, ok := r.focus[screenshot]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return analyzer.Center, err
	}
	img, err := source.Load(screenshot, r.Dir, r.DPI)
	if err != nil {
		return analyzer.Center, err
	}
	det := r.Detector
	if det == nil {
		det = analyzer.NewContrastDetector()
	}
	p, err := analyzer.FocusPoint(det, img)
	if err != nil {
		return analyzer.Center, err
	}

	r.mu.Lock()
	if r.focus == nil {
		r.focus = map[string]anim.Point{}
	}
	r.focus[screenshot] = p
	r.mu.Unlock()
	return p, nil
}
