// Package video streams rendered frames into ffmpeg and writes stills.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Params describes one output file.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	// AudioPath is an optional WAV muxed into the output.
	AudioPath string
	Output    string
}

// FrameWriter accepts frames in presentation order.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	// Close flushes the stream and waits for the encoder to finish.
	Close() error
}

// VideoEncoder opens frame streams.
type VideoEncoder interface {
	Open(ctx context.Context, p Params) (FrameWriter, error)
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	Binary string
}

func (e *FFmpegEncoder) Open(ctx context.Context, p Params) (FrameWriter, error) {
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream %dx%d@%d", p.Width, p.Height, p.FPS)
	}
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, BuildArgs(p)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s := &ffmpegStream{cmd: cmd, stdin: stdin, width: p.Width, height: p.Height}
	cmd.Stderr = &s.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

// BuildArgs is the ffmpeg command line for p: raw frames on stdin, optional
// audio input, H.264 output.
func BuildArgs(p Params) []string {
	fps := strconv.Itoa(p.FPS)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fps,
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-b:a", "192k", "-shortest")
	}
	encoder := p.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args = append(args, "-r", fps, "-pix_fmt", "yuv420p", "-c:v", encoder)
	args = append(args, QualityArgs(encoder, p.Quality)...)
	return append(args, "-movflags", "+faststart", p.Output)
}

// QualityArgs maps one quality number onto each encoder's rate control.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no constant quality mode on every version; use a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", strconv.Itoa(quality)}
	default:
		return []string{"-crf", strconv.Itoa(quality), "-preset", "medium"}
	}
}

type ffmpegStream struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	stderr        tailBuffer
	width, height int
	frames        int
	closeOnce     sync.Once
	closeErr      error
}

func (s *ffmpegStream) WriteFrame(img *image.RGBA) error {
	if img.Bounds().Dx() != s.width || img.Bounds().Dy() != s.height {
		return fmt.Errorf("frame %d is %v, stream is %dx%d", s.frames, img.Bounds(), s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write frame %d: %w (ffmpeg: %s)", s.frames, err, s.stderr.String())
	}
	s.frames++
	return nil
}

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		cerr := s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.stderr.String())
			return
		}
		if cerr != nil && !errors.Is(cerr, io.ErrClosedPipe) {
			s.closeErr = cerr
		}
	})
	return s.closeErr
}

// writeRawRGBA writes tightly packed RGBA rows.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	if img.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

// tailBuffer keeps the last few KiB of ffmpeg's stderr for error messages.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

const tailSize = 4096

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > tailSize {
		t.buf = t.buf[len(t.buf)-tailSize:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
