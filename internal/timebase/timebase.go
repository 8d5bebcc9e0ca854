// Package timebase defines the frame clock shared by every layer of the video.
package timebase

import (
	"fmt"
	"math"
	"time"
)

// FPS is the project frame rate. 30 frames = 1 second.
const FPS = 30

// Frame is the unit of video time.
type Frame int

// Seconds converts a frame count to seconds at the given rate.
func (f Frame) Seconds(fps int) float64 {
	return float64(f) / float64(fps)
}

// Duration converts a frame count to a time.Duration at the given rate.
func (f Frame) Duration(fps int) time.Duration {
	return time.Duration(float64(f) / float64(fps) * float64(time.Second))
}

// FromSeconds rounds seconds to the nearest frame.
func FromSeconds(sec float64, fps int) Frame {
	return Frame(math.Round(sec * float64(fps)))
}

// FromDuration rounds d to the nearest frame.
func FromDuration(d time.Duration, fps int) Frame {
	return FromSeconds(d.Seconds(), fps)
}

// Timecode formats f as m:ss.ff for log lines.
func (f Frame) Timecode(fps int) string {
	if f < 0 {
		return "-" + (-f).Timecode(fps)
	}
	sec := int(f) / fps
	return fmt.Sprintf("%d:%02d.%02d", sec/60, sec%60, int(f)%fps)
}

// Range is a half-open frame window [Start, Start+Duration).
type Range struct {
	Start    Frame `yaml:"start"`
	Duration Frame `yaml:"duration"`
}

// End returns the first frame after the range.
func (r Range) End() Frame { return r.Start + r.Duration }

// Contains reports whether f falls inside the range.
func (r Range) Contains(f Frame) bool {
	return f >= r.Start && f < r.End()
}

// Local converts a global frame to a range-local one.
func (r Range) Local(f Frame) Frame { return f - r.Start }

// Validate rejects empty or negative ranges.
func (r Range) Validate() error {
	if r.Duration <= 0 {
		return fmt.Errorf("range at %d: duration must be positive, got %d", r.Start, r.Duration)
	}
	if r.Start < 0 {
		return fmt.Errorf("range start must not be negative, got %d", r.Start)
	}
	return nil
}
