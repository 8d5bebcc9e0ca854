// Package audio measures voiceover clips and mixes the timeline's tracks
// into a single WAV file.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"github.com/ivlev/promoreel/internal/timebase"
)

// DefaultSampleRate is the mixdown rate.
const DefaultSampleRate beep.SampleRate = 48000

// ErrUnsupported is returned for containers beep cannot decode.
var ErrUnsupported = errors.New("unsupported audio format")

// Open decodes a WAV or MP3 file. The returned streamer owns the file.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	if ext == ".wav" {
		s, format, err = wav.Decode(f)
	} else {
		s, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if ext == ".wav" && format.Precision == 2 {
		s = &gained{StreamSeekCloser: s, gain: wav16Gain}
	}
	return s, format, nil
}

// wav16Gain restores full scale for 16-bit WAV: beep's decoder divides by
// 1<<16-1 instead of 1<<15-1, so samples arrive at half amplitude.
const wav16Gain = float64(1<<16-1) / float64(1<<15-1)

// gained scales every sample of a seekable stream.
type gained struct {
	beep.StreamSeekCloser
	gain float64
}

func (g *gained) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.StreamSeekCloser.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= g.gain
		samples[i][1] *= g.gain
	}
	return n, ok
}

// Probe returns the playing time of an audio file.
func Probe(path string) (time.Duration, error) {
	s, format, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}

// FramesFor rounds a duration up to whole frames so clips are never cut.
func FramesFor(d time.Duration, fps int) timebase.Frame {
	if d <= 0 {
		return 0
	}
	return timebase.Frame(math.Ceil(d.Seconds()*float64(fps) - 1e-9))
}
