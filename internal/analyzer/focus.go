package analyzer

import (
	"image"

	"github.com/ivlev/promoreel/internal/anim"
)

// Center is the fallback zoom target, in percent of the screenshot.
var Center = anim.Point{X: 50, Y: 50}

// CenterDetector reports the whole image as a single block.
type CenterDetector struct{}

func (CenterDetector) Detect(img image.Image) ([]Block, error) {
	return []Block{{Rect: img.Bounds(), Type: "panel", Confidence: 1}}, nil
}

// FocusPoint picks the highest scoring block and returns its centre as a
// percentage of the image size, the unit zoom targets use.
func FocusPoint(d Detector, img image.Image) (anim.Point, error) {
	b := img.Bounds()
	if b.Empty() {
		return Center, nil
	}
	blocks, err := d.Detect(img)
	if err != nil {
		return Center, err
	}
	best := -1
	for i, blk := range blocks {
		if best < 0 || blk.Score() > blocks[best].Score() {
			best = i
		}
	}
	if best < 0 {
		return Center, nil
	}
	r := blocks[best].Rect
	cx := float64(r.Min.X+r.Max.X)/2 - float64(b.Min.X)
	cy := float64(r.Min.Y+r.Max.Y)/2 - float64(b.Min.Y)
	return anim.Point{
		X: 100 * cx / float64(b.Dx()),
		Y: 100 * cy / float64(b.Dy()),
	}, nil
}
