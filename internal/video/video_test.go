package video

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	args := BuildArgs(Params{Width: 1920, Height: 1080, FPS: 30, Encoder: "libx264", Quality: 20, Output: "out.mp4"})
	line := strings.Join(args, " ")

	assert.Contains(t, line, "-f rawvideo -pixel_format rgba -video_size 1920x1080 -framerate 30 -i -")
	assert.Contains(t, line, "-c:v libx264 -crf 20 -preset medium")
	assert.NotContains(t, line, "-map")
	assert.Equal(t, "out.mp4", args[len(args)-1])

	withAudio := strings.Join(BuildArgs(Params{Width: 8, Height: 8, FPS: 30, AudioPath: "mix.wav", Output: "o.mp4"}), " ")
	assert.Contains(t, withAudio, "-i mix.wav -map 0:v -map 1:a")
	assert.Contains(t, withAudio, "-c:v libx264")
}

func TestQualityArgs(t *testing.T) {
	assert.Equal(t, []string{"-b:v", "7500k"}, QualityArgs("h264_videotoolbox", 75))
	assert.Equal(t, []string{"-cq", "23"}, QualityArgs("h264_nvenc", 23))
	assert.Equal(t, []string{"-crf", "18", "-preset", "medium"}, QualityArgs("libx264", 18))
}

func TestWriteRawRGBAPacksSubImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 1, color.RGBA{R: 9, A: 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	var buf bytes.Buffer
	require.NoError(t, writeRawRGBA(&buf, sub))
	assert.Equal(t, 2*2*4, buf.Len())
	assert.Equal(t, byte(9), buf.Bytes()[0])
}

func TestTailBuffer(t *testing.T) {
	var tb tailBuffer
	tb.Write(bytes.Repeat([]byte("a"), tailSize))
	tb.Write([]byte("end"))
	assert.Len(t, tb.String(), tailSize)
	assert.True(t, strings.HasSuffix(tb.String(), "end"))
}

func TestSaveStill(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	pngPath := filepath.Join(dir, "stills", "f.png")
	require.NoError(t, SaveStill(pngPath, img))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	require.NoError(t, SaveStill(filepath.Join(dir, "f.webp"), img))
	info, err := os.Stat(filepath.Join(dir, "f.webp"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, SaveStill(filepath.Join(dir, "f.gif"), img))
	_, err = os.Stat(filepath.Join(dir, "f.gif"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenRejectsBadParams(t *testing.T) {
	_, err := (&FFmpegEncoder{}).Open(t.Context(), Params{Width: 0, Height: 10, FPS: 30})
	assert.Error(t, err)
}
