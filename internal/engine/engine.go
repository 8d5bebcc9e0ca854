// Package engine drives a render: it evaluates the timeline frame by frame,
// composites frames in parallel and streams them to the encoder in order.
package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/promoreel/internal/audio"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/renderer"
	"github.com/ivlev/promoreel/internal/store"
	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
	"github.com/ivlev/promoreel/internal/video"
)

// framesPerWorker is how many frames each worker renders per batch. A batch
// is fully rendered before any of it is written, so it bounds memory.
const framesPerWorker = 4

type VideoProject struct {
	Config   *config.Config
	Timeline *timeline.Timeline
	Assets   renderer.Images
	Encoder  video.VideoEncoder
	// Store records the run when set.
	Store  *store.Store
	Logger zerolog.Logger
	// FailedAssets is reported in stats and metrics.
	FailedAssets int

	pool *system.ImagePool
}

func NewVideoProject(cfg *config.Config, tl *timeline.Timeline, assets renderer.Images, ve video.VideoEncoder, log zerolog.Logger) *VideoProject {
	return &VideoProject{
		Config:   cfg,
		Timeline: tl,
		Assets:   assets,
		Encoder:  ve,
		Logger:   log,
		pool:     system.NewImagePool(),
	}
}

// Run mixes the audio, renders every frame and encodes the video.
func (p *VideoProject) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	stats := Stats{Frames: int(p.Timeline.Total), FailedAssets: p.FailedAssets}
	err := p.run(ctx, &stats)
	stats.Total = time.Since(start)
	p.record(ctx, stats, err)
	return stats, err
}

func (p *VideoProject) run(ctx context.Context, stats *Stats) error {
	cfg := p.Config
	if p.Timeline.Total <= 0 {
		return fmt.Errorf("timeline is empty")
	}
	if p.pool == nil {
		p.pool = system.NewImagePool()
	}
	m, err := newMetrics()
	if err != nil {
		return err
	}
	if p.FailedAssets > 0 {
		m.assetsFailed.Add(ctx, int64(p.FailedAssets))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = system.Host().RecommendedWorkers(cfg.FrameBytes(), framesPerWorker)
	}
	stats.Workers = workers

	tmp, err := os.MkdirTemp("", "promoreel_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	params := video.Params{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     p.Timeline.FPS,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
		Output:  cfg.OutputVideo,
	}
	if len(p.Timeline.Tracks) > 0 {
		mixStart := time.Now()
		path, report, err := p.mix(ctx, tmp)
		if err != nil {
			return fmt.Errorf("mix audio: %w", err)
		}
		params.AudioPath = path
		stats.AudioTracks = report.Mixed
		stats.Mix = time.Since(mixStart)
		p.Logger.Info().Int("tracks", report.Mixed).Int("missing", report.Missing).Msg("[*] audio mixed")
	}

	out, err := p.Encoder.Open(ctx, params)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			out.Close()
		}
	}()

	comps := make(chan *renderer.Compositor, workers)
	for i := 0; i < workers; i++ {
		c, err := renderer.New(cfg.Width, cfg.Height, p.Assets)
		if err != nil {
			return err
		}
		comps <- c
	}

	total := int(p.Timeline.Total)
	batch := workers * framesPerWorker
	frames := make([]*image.RGBA, batch)
	bounds := image.Rect(0, 0, cfg.Width, cfg.Height)
	logEvery := max(total/20, 1)

	for from := 0; from < total; from += batch {
		n := min(batch, total-from)

		renderStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c := <-comps
				defer func() { comps <- c }()

				t0 := time.Now()
				f := timebase.Frame(from + i)
				img := p.pool.Get(bounds)
				c.Render(img, p.Timeline.Frame(f))
				frames[i] = img
				m.frameTime.Record(gctx, float64(time.Since(t0).Microseconds())/1000)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			p.release(frames[:n])
			return err
		}
		stats.Render += time.Since(renderStart)

		encodeStart := time.Now()
		for i := 0; i < n; i++ {
			if err := out.WriteFrame(frames[i]); err != nil {
				p.release(frames[:n])
				return err
			}
		}
		stats.Encode += time.Since(encodeStart)
		m.framesRendered.Add(ctx, int64(n))
		p.release(frames[:n])

		if done := from + n; done/logEvery != from/logEvery || done == total {
			p.Logger.Info().Msgf("[>] Rendered %d/%d frames", done, total)
		}
	}

	closed = true
	encodeStart := time.Now()
	if err := out.Close(); err != nil {
		return err
	}
	stats.Encode += time.Since(encodeStart)
	return nil
}

func (p *VideoProject) release(frames []*image.RGBA) {
	for i, img := range frames {
		if img != nil {
			p.pool.Put(img)
			frames[i] = nil
		}
	}
}

func (p *VideoProject) mix(ctx context.Context, dir string) (string, audio.MixReport, error) {
	path := filepath.Join(dir, "mix.wav")
	f, err := os.Create(path)
	if err != nil {
		return "", audio.MixReport{}, err
	}
	report, err := audio.Mix(ctx, f, p.Timeline, audio.MixOptions{
		Dir:    p.Config.AssetsDir,
		Logger: p.Logger,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", report, err
	}
	if report.Mixed == 0 {
		return "", report, nil
	}
	return path, report, nil
}

func (p *VideoProject) record(ctx context.Context, stats Stats, runErr error) {
	if p.Store == nil {
		return
	}
	host := system.Host()
	run := &store.RenderRun{
		Storyboard:   p.Config.Storyboard,
		Output:       p.Config.OutputVideo,
		Frames:       stats.Frames,
		Width:        p.Config.Width,
		Height:       p.Config.Height,
		FPS:          p.Timeline.FPS,
		Workers:      stats.Workers,
		Encoder:      p.Config.VideoEncoder,
		ElapsedMs:    stats.Total.Milliseconds(),
		FailedAssets: stats.FailedAssets,
		Host:         fmt.Sprintf("%s/%s %d cpu", host.Platform, host.Arch, host.LogicalCPUs),
		Status:       "ok",
	}
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	}
	// The run may have been cancelled; history is still worth keeping.
	if err := p.Store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		p.Logger.Warn().Err(err).Msg("[!] render history not saved")
	}
}

// RenderStill composites a single global frame.
func RenderStill(tl *timeline.Timeline, assets renderer.Images, width, height int, f timebase.Frame) (*image.RGBA, error) {
	if f < 0 || f >= tl.Total {
		return nil, fmt.Errorf("frame %d outside 0..%d", f, tl.Total-1)
	}
	c, err := renderer.New(width, height, assets)
	if err != nil {
		return nil, err
	}
	return c.Frame(tl.Frame(f)), nil
}
