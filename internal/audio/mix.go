package audio

import (
	"context"
	"io"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
)

// MixOptions configures Mix.
type MixOptions struct {
	// Dir resolves relative track sources.
	Dir  string
	Rate beep.SampleRate
	// Gain is a master level in doublings; 0 leaves the mix untouched.
	Gain   float64
	Logger zerolog.Logger
}

// MixReport counts tracks that made it into the mix.
type MixReport struct {
	Mixed   int
	Missing int
}

// Mix renders every timeline track into a 16-bit stereo WAV covering the
// whole timeline. Tracks whose source cannot be decoded are logged and left
// out; the mix is still written.
func Mix(ctx context.Context, w io.WriteSeeker, tl *timeline.Timeline, opts MixOptions) (MixReport, error) {
	if opts.Rate == 0 {
		opts.Rate = DefaultSampleRate
	}
	fps := tl.FPS
	if fps <= 0 {
		fps = timebase.FPS
	}
	toSamples := func(f timebase.Frame) int {
		return opts.Rate.N(f.Duration(fps))
	}

	var (
		report MixReport
		mixer  beep.Mixer
		opened []beep.StreamSeekCloser
	)
	defer func() {
		for _, s := range opened {
			s.Close()
		}
	}()

	for _, tr := range tl.Tracks {
		path := tr.Source
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		src, format, err := Open(path)
		if err != nil {
			report.Missing++
			opts.Logger.Warn().Err(err).Str("track", tr.ID).Msg("audio track skipped")
			continue
		}
		opened = append(opened, src)

		var s beep.Streamer = src
		if format.SampleRate != opts.Rate {
			s = beep.Resample(4, format.SampleRate, opts.Rate, s)
		}
		start := toSamples(tr.Start)
		mixer.Add(beep.Seq(
			beep.Silence(start),
			&enveloped{
				s:     beep.Take(toSamples(tr.Duration), s),
				env:   tr.Envelope,
				start: start,
				rate:  float64(opts.Rate),
				fps:   float64(fps),
			},
		))
		report.Mixed++
	}

	// Pad with silence in case the mixer drains before the timeline ends.
	var out beep.Streamer = beep.Take(toSamples(tl.Total), beep.Seq(&mixer, beep.Silence(-1)))
	if opts.Gain != 0 {
		out = &effects.Volume{Streamer: out, Base: 2, Volume: opts.Gain}
	}
	out = &cancellable{ctx: ctx, s: out}

	format := beep.Format{SampleRate: opts.Rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, out, format); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	opts.Logger.Debug().Int("mixed", report.Mixed).Int("missing", report.Missing).Msg("audio mixed")
	return report, nil
}

// enveloped applies a timeline envelope per sample. start is the sample at
// which the stream begins on the global timeline.
type enveloped struct {
	s     beep.Streamer
	env   timeline.Envelope
	start int
	pos   int
	rate  float64
	fps   float64
}

func (e *enveloped) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		f := float64(e.start+e.pos) / e.rate * e.fps
		v := e.env.Volume(f)
		samples[i][0] *= v
		samples[i][1] *= v
		e.pos++
	}
	return n, ok
}

func (e *enveloped) Err() error { return e.s.Err() }

// cancellable stops streaming once ctx is done.
type cancellable struct {
	ctx context.Context
	s   beep.Streamer
}

func (c *cancellable) Stream(samples [][2]float64) (int, bool) {
	if c.ctx.Err() != nil {
		return 0, false
	}
	return c.s.Stream(samples)
}

func (c *cancellable) Err() error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return c.s.Err()
}
