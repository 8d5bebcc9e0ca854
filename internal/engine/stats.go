package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Stats summarises a render.
type Stats struct {
	Frames       int
	Workers      int
	AudioTracks  int
	FailedAssets int
	Mix          time.Duration
	Render       time.Duration
	Encode       time.Duration
	Total        time.Duration
}

// FPS is the effective throughput of the whole run.
func (s Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

// Report is the performance block printed by -stats.
func (s Stats) Report(build string) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Frames: %d | Workers: %d | Audio tracks: %d | Placeholders: %d\n"+
			"Total Time: %.2fs\n"+
			"Audio Mix: %.2fs\n"+
			"Compositing: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		build, s.Frames, s.Workers, s.AudioTracks, s.FailedAssets,
		s.Total.Seconds(), s.Mix.Seconds(), s.Render.Seconds(), s.Encode.Seconds(), s.FPS(),
	)
}

// AppendBenchmark adds a one-line summary to a log file.
func (s Stats) AppendBenchmark(path, build, storyboard string) error {
	line := fmt.Sprintf("[%s] Build: %s | Storyboard: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"), build, filepath.Base(storyboard),
		s.Frames, s.Total.Seconds(), s.Render.Seconds(), s.Encode.Seconds(), s.FPS())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
