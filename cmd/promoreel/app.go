package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/analyzer"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/engine"
	"github.com/ivlev/promoreel/internal/preview"
	"github.com/ivlev/promoreel/internal/source"
	"github.com/ivlev/promoreel/internal/store"
	"github.com/ivlev/promoreel/internal/storyboard"
	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
	"github.com/ivlev/promoreel/internal/video"
)

const (
	storyboardDir = "storyboards"
	outputDir     = "output"
	benchmarkLog  = "benchmark.log"
	openFileLimit = 4096
)

// flags are the command line overrides shared by every command. Only flags
// the user actually set replace the layered configuration.
type flags struct {
	fs         *flag.FlagSet
	configPath string
	storyboard string
	assets     string
	output     string
	width      int
	height     int
	workers    int
	quality    int
	preset     string
	encoder    string
	detector   string
	logLevel   string
	stats      bool

	frame  int
	format string
	write  bool
}

func newFlags(name string, out io.Writer) *flags {
	f := &flags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(out)
	fs.StringVar(&f.configPath, "config", "", "Config file (default: promoreel.yaml in the working directory, if present)")
	fs.StringVar(&f.storyboard, "storyboard", "", "Storyboard YAML (default: newest file in storyboards/, else the built-in one)")
	fs.StringVar(&f.assets, "assets", "", "Directory that screenshot and audio paths are relative to")
	fs.StringVar(&f.output, "output", "", "Output path (generated in output/ when empty)")
	fs.IntVar(&f.width, "width", 0, "Frame width")
	fs.IntVar(&f.height, "height", 0, "Frame height")
	fs.IntVar(&f.workers, "workers", 0, "Compositing workers (0: sized from CPU and free memory)")
	fs.IntVar(&f.quality, "quality", 0, "Video quality (0: auto; x264 CRF, VideoToolbox bitrate = Q*100kbit/s)")
	fs.StringVar(&f.preset, "preset", "", "Size preset: 720p, 1080p, 1440p, 4k")
	fs.StringVar(&f.encoder, "encoder", "", "H.264 encoder (default: best available)")
	fs.StringVar(&f.detector, "detector", "", "Focus detector for auto zoom targets: contrast, center")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	switch name {
	case "still":
		fs.IntVar(&f.frame, "frame", 0, "Global frame to export")
		fs.StringVar(&f.format, "format", "png", "Image format: png, jpg, webp")
	case "durations":
		fs.BoolVar(&f.write, "write", false, "Save a copy of the storyboard with the measured frames filled in")
	}
	return f
}

// config layers the flags the user set over the loaded configuration.
func (f *flags) config() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "storyboard":
			cfg.Storyboard = f.storyboard
		case "assets":
			cfg.AssetsDir = f.assets
		case "output":
			cfg.OutputVideo = f.output
		case "width":
			cfg.Width = f.width
		case "height":
			cfg.Height = f.height
		case "workers":
			cfg.Workers = f.workers
		case "quality":
			cfg.Quality = f.quality
		case "preset":
			cfg.Preset = f.preset
		case "encoder":
			cfg.VideoEncoder = f.encoder
		case "detector":
			cfg.Detector = f.detector
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "stats":
			cfg.ShowStats = f.stats
		}
	})
	cfg.BuildVersion = version
	if err := cfg.ApplyPreset(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}).
		Level(lvl).With().Timestamp().Logger()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "render"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "render", "still", "validate", "durations", "preview":
	case "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	f := newFlags(cmd, stdout)
	if err := f.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := f.config()
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, flags: f, out: stdout, log: newLogger(cfg.LogLevel, stdout)}
	defer a.close()

	switch cmd {
	case "still":
		return a.still(ctx)
	case "validate":
		return a.validate(ctx)
	case "durations":
		return a.durations(ctx)
	case "preview":
		return a.preview(ctx)
	}
	return a.render(ctx)
}

type app struct {
	cfg   config.Config
	flags *flags
	out   io.Writer
	log   zerolog.Logger
	store *store.Store

	sb     *storyboard.Storyboard
	sbPath string
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// openStore connects the duration cache. A broken cache only costs speed.
func (a *app) openStore() {
	if a.cfg.CacheDriver == "none" {
		return
	}
	st, err := store.Open(a.cfg.CacheDriver, a.cfg.CacheDSN)
	if err != nil {
		a.log.Warn().Err(err).Msg("[!] cache unavailable, durations will be measured every run")
		return
	}
	a.store = st
}

// loadStoryboard reads the configured storyboard, the newest one in
// storyboards/, or the built-in default, in that order.
func (a *app) loadStoryboard() error {
	path := a.cfg.Storyboard
	if path == "" {
		if latest, err := storyboard.FindLatest(storyboardDir); err == nil {
			path = latest
		}
	}
	var err error
	if path == "" {
		a.log.Info().Msg("[*] Using the built-in storyboard")
		a.sb, err = storyboard.Default()
	} else {
		a.log.Info().Str("path", path).Msg("[*] Storyboard selected")
		a.sb, err = storyboard.Read(path)
	}
	a.sbPath = path
	return err
}

func (a *app) resolver() (*engine.Resolver, error) {
	det, err := analyzer.NewDetector(a.cfg.Detector)
	if err != nil {
		return nil, err
	}
	a.openStore()
	return &engine.Resolver{
		Dir:      a.cfg.AssetsDir,
		FPS:      a.sb.FPS,
		DPI:      a.cfg.DPI,
		Store:    a.store,
		Detector: det,
		Logger:   a.log,
	}, nil
}

// timeline loads and compiles the storyboard.
func (a *app) timeline(ctx context.Context) (*timeline.Timeline, error) {
	if err := a.loadStoryboard(); err != nil {
		return nil, err
	}
	r, err := a.resolver()
	if err != nil {
		return nil, err
	}
	tl, err := storyboard.Build(ctx, a.sb, storyboard.Options{Resolver: r, Logger: a.log})
	if err != nil {
		return nil, err
	}
	a.cfg.FPS = tl.FPS
	return tl, nil
}

func (a *app) preload(ctx context.Context) (*source.Assets, error) {
	refs := a.sb.ScreenshotRefs()
	assets, err := source.Preload(ctx, refs, source.PreloadOptions{
		Dir:     a.cfg.AssetsDir,
		DPI:     a.cfg.DPI,
		Workers: a.cfg.Workers,
		Logger:  a.log,
	})
	if err != nil {
		return nil, err
	}
	if n := len(assets.Failed()); n > 0 {
		a.log.Warn().Int("missing", n).Int("loaded", assets.Loaded()).Msg("[!] Some screenshots use the placeholder")
	}
	return assets, nil
}

// outputPath names the result after the storyboard and a timestamp.
func (a *app) outputPath(ext string) string {
	if a.cfg.OutputVideo != "" {
		return a.cfg.OutputVideo
	}
	name := "promoreel"
	if a.sbPath != "" {
		base := filepath.Base(a.sbPath)
		name = strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", name, timestamp, ext))
}

func (a *app) render(ctx context.Context) error {
	system.InitResourceLimits(a.log, openFileLimit)
	if !system.HasFFmpeg() {
		return errors.New("ffmpeg not found in PATH")
	}
	if a.cfg.VideoEncoder == "" {
		a.cfg.VideoEncoder = system.BestH264Encoder()
		if a.cfg.VideoEncoder != "libx264" {
			a.log.Info().Msgf("[*] Hardware acceleration detected: %s", a.cfg.VideoEncoder)
		}
	}
	a.cfg.DefaultQuality()

	tl, err := a.timeline(ctx)
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	assets, err := a.preload(ctx)
	if err != nil {
		return err
	}
	a.cfg.OutputVideo = a.outputPath("mp4")
	if err := os.MkdirAll(filepath.Dir(a.cfg.OutputVideo), 0755); err != nil {
		return err
	}

	host := system.Host()
	a.log.Info().
		Str("size", fmt.Sprintf("%dx%d", a.cfg.Width, a.cfg.Height)).
		Int("frames", int(tl.Total)).
		Int("cpus", host.LogicalCPUs).
		Uint64("freeMB", host.AvailMemory>>20).
		Msg("[*] Rendering")

	project := engine.NewVideoProject(&a.cfg, tl, assets, &video.FFmpegEncoder{}, a.log)
	project.Store = a.store
	project.FailedAssets = len(assets.Failed())
	stats, err := project.Run(ctx)
	if err != nil {
		return err
	}

	if a.cfg.ShowStats {
		fmt.Fprint(a.out, stats.Report(a.cfg.BuildVersion))
		if err := stats.AppendBenchmark(benchmarkLog, a.cfg.BuildVersion, a.sbPath); err != nil {
			a.log.Warn().Err(err).Msg("[!] benchmark log not written")
		}
	}
	fmt.Fprintf(a.out, "[+++] Success! Result: %s\n", a.cfg.OutputVideo)
	return nil
}

func (a *app) still(ctx context.Context) error {
	switch a.flags.format {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("unknown still format %q (png, jpg, webp)", a.flags.format)
	}
	tl, err := a.timeline(ctx)
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	assets, err := a.preload(ctx)
	if err != nil {
		return err
	}
	img, err := engine.RenderStill(tl, assets, a.cfg.Width, a.cfg.Height, timebase.Frame(a.flags.frame))
	if err != nil {
		return err
	}
	path := a.cfg.OutputVideo
	if path == "" {
		path = filepath.Join(outputDir, fmt.Sprintf("frame_%05d.%s", a.flags.frame, a.flags.format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := video.SaveStill(path, img); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "[+++] Frame %d saved: %s\n", a.flags.frame, path)
	return nil
}

func (a *app) validate(ctx context.Context) error {
	tl, err := a.timeline(ctx)
	if err != nil {
		return err
	}
	assets, err := a.preload(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, preview.Summary(tl))

	var missing []string
	for ref, err := range assets.Failed() {
		missing = append(missing, fmt.Sprintf("%s: %v", ref, err))
	}
	for _, ref := range a.sb.AudioRefs() {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.AssetsDir, ref)
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, fmt.Sprintf("%s: %v", ref, err))
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		for _, m := range missing {
			fmt.Fprintf(a.out, "[!] %s\n", m)
		}
		return fmt.Errorf("%d assets missing", len(missing))
	}
	fmt.Fprintln(a.out, "[+++] Storyboard is valid")
	return nil
}

func (a *app) durations(ctx context.Context) error {
	if err := a.loadStoryboard(); err != nil {
		return err
	}
	r, err := a.resolver()
	if err != nil {
		return err
	}

	measure := func(ref string) timebase.Frame {
		f, err := r.AudioFrames(ctx, ref)
		if err != nil {
			fmt.Fprintf(a.out, "%-40s error: %v\n", ref, err)
			return 0
		}
		fmt.Fprintf(a.out, "%-40s %6d frames  %s\n", ref, f, f.Timecode(timebase.FPS))
		return f
	}
	for i := range a.sb.Voiceover {
		lines := a.sb.Voiceover[i].Lines
		for j := range lines {
			if f := measure(lines[j].Audio); f > 0 {
				lines[j].Frames = f
			}
		}
	}
	if m := a.sb.Music; m != nil {
		for i := range m.Beds {
			if f := measure(m.Beds[i].Source); f > 0 {
				m.Beds[i].Length = f
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !a.flags.write {
		return nil
	}
	dir := storyboardDir
	if a.sbPath != "" {
		dir = filepath.Dir(a.sbPath)
	}
	path := storyboard.GeneratePath(dir)
	if err := storyboard.Write(a.sb, path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "[+++] Measured storyboard saved: %s\n", path)
	return nil
}

func (a *app) preview(ctx context.Context) error {
	tl, err := a.timeline(ctx)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	return preview.Run(ctx, screen, tl)
}
