package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canvas(w, h int, rects ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestContrastDetector(t *testing.T) {
	img := canvas(200, 200, image.Rect(50, 50, 150, 150))

	blocks, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	block := blocks[0]
	assert.GreaterOrEqual(t, block.Rect.Dx(), 80)
	assert.GreaterOrEqual(t, block.Rect.Dy(), 80)
}

func TestContrastDetectorDownscales(t *testing.T) {
	// 1920 wide is analysed at 480, so rectangles come back scaled by 4.
	img := canvas(1920, 1080, image.Rect(1200, 600, 1600, 900))

	blocks, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	r := blocks[0].Rect
	assert.InDelta(t, 1400, (r.Min.X+r.Max.X)/2, 40)
	assert.InDelta(t, 750, (r.Min.Y+r.Max.Y)/2, 40)
}

func TestFocusPoint(t *testing.T) {
	img := canvas(400, 200, image.Rect(260, 120, 340, 180))

	p, err := FocusPoint(NewContrastDetector(), img)
	require.NoError(t, err)
	assert.InDelta(t, 75, p.X, 3)
	assert.InDelta(t, 75, p.Y, 4)
}

func TestFocusPointFallsBackToCenter(t *testing.T) {
	p, err := FocusPoint(NewContrastDetector(), canvas(300, 300))
	require.NoError(t, err)
	assert.Equal(t, Center, p)

	p, err = FocusPoint(CenterDetector{}, canvas(300, 300))
	require.NoError(t, err)
	assert.Equal(t, Center, p)
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false},
		{"center", false},
		{"ocr", true},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			d, err := NewDetector(tt.variant)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}
