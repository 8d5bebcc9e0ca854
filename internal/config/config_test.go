package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "sqlite", cfg.CacheDriver)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promoreel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
render:
  width: 1280
  height: 720
  quality: 18
cache:
  driver: postgres
logLevel: debug
`), 0644))
	t.Setenv("PROMOREEL_RENDER_QUALITY", "24")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 24, cfg.Quality)
	assert.Equal(t, "postgres", cfg.CacheDriver)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyPreset(t *testing.T) {
	cfg := Config{Preset: "720p", Width: 1, Height: 1}
	require.NoError(t, cfg.ApplyPreset())
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)

	cfg.Preset = "9:16"
	assert.Error(t, cfg.ApplyPreset())
}

func TestDefaultQuality(t *testing.T) {
	for enc, want := range map[string]int{"h264_videotoolbox": 75, "h264_nvenc": 23, "libx264": 20} {
		cfg := Config{VideoEncoder: enc}
		cfg.DefaultQuality()
		assert.Equal(t, want, cfg.Quality, enc)
	}
	cfg := Config{Quality: 30}
	cfg.DefaultQuality()
	assert.Equal(t, 30, cfg.Quality)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"1080p", Config{Width: 1920, Height: 1080, FPS: 30}, false},
		{"odd", Config{Width: 1921, Height: 1080, FPS: 30}, true},
		{"portrait", Config{Width: 1080, Height: 1920, FPS: 30}, true},
		{"no fps", Config{Width: 1920, Height: 1080}, true},
		{"empty", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, 1920*1080*4, Config{Width: 1920, Height: 1080}.FrameBytes())
}
