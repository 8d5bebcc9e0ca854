// Package config holds render settings. Defaults, an optional config file
// and PROMOREEL_* environment variables are layered with viper; the CLI
// flags override the result.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storyboard   string
	AssetsDir    string
	OutputVideo  string
	Width        int
	Height       int
	FPS          int
	Workers      int
	DPI          int
	Quality      int
	VideoEncoder string
	Preset       string
	Detector     string
	CacheDriver  string
	CacheDSN     string
	LogLevel     string
	ShowStats    bool
	BuildVersion string
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storyboard", "")
	v.SetDefault("assets", ".")
	v.SetDefault("output", "")
	v.SetDefault("render.width", 1920)
	v.SetDefault("render.height", 1080)
	v.SetDefault("render.fps", 30)
	v.SetDefault("render.workers", 0)
	v.SetDefault("render.dpi", 150)
	v.SetDefault("render.quality", 0)
	v.SetDefault("render.encoder", "")
	v.SetDefault("render.preset", "")
	v.SetDefault("analyzer.detector", "contrast")
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.dsn", "promoreel.db")
	v.SetDefault("logLevel", "info")
	v.SetDefault("stats", false)
}

// Load reads the layered configuration. path may be empty, in which case a
// promoreel.{yaml,json,toml} in the working directory is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("PROMOREEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("promoreel")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v), nil
}

// FromViper copies the resolved keys of v into a Config.
func FromViper(v *viper.Viper) Config {
	return Config{
		Storyboard:   v.GetString("storyboard"),
		AssetsDir:    v.GetString("assets"),
		OutputVideo:  v.GetString("output"),
		Width:        v.GetInt("render.width"),
		Height:       v.GetInt("render.height"),
		FPS:          v.GetInt("render.fps"),
		Workers:      v.GetInt("render.workers"),
		DPI:          v.GetInt("render.dpi"),
		Quality:      v.GetInt("render.quality"),
		VideoEncoder: v.GetString("render.encoder"),
		Preset:       v.GetString("render.preset"),
		Detector:     v.GetString("analyzer.detector"),
		CacheDriver:  v.GetString("cache.driver"),
		CacheDSN:     v.GetString("cache.dsn"),
		LogLevel:     v.GetString("logLevel"),
		ShowStats:    v.GetBool("stats"),
	}
}

// presets are 16:9 sizes; the scene layout is authored for that aspect.
var presets = map[string][2]int{
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
	"4k":    {3840, 2160},
}

// ApplyPreset replaces Width and Height when Preset names a known size.
func (c *Config) ApplyPreset() error {
	if c.Preset == "" {
		return nil
	}
	size, ok := presets[c.Preset]
	if !ok {
		return fmt.Errorf("unknown preset %q (720p, 1080p, 1440p, 4k)", c.Preset)
	}
	c.Width, c.Height = size[0], size[1]
	return nil
}

// DefaultQuality picks a sensible rate-control value per encoder when
// Quality is left at 0.
func (c *Config) DefaultQuality() {
	if c.Quality != 0 {
		return
	}
	switch c.VideoEncoder {
	case "h264_videotoolbox":
		c.Quality = 75
	case "h264_nvenc":
		c.Quality = 23
	default:
		c.Quality = 20
	}
}

// Validate checks the render geometry. Sizes must be even for yuv420p and
// keep the 16:9 aspect of the layout.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("size %dx%d must be even", c.Width, c.Height)
	}
	if c.Width*9 != c.Height*16 {
		return fmt.Errorf("size %dx%d is not 16:9", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	return nil
}

// FrameBytes is the size of one RGBA canvas.
func (c Config) FrameBytes() int { return c.Width * c.Height * 4 }
