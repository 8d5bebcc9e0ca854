package analyzer

import "image"

// Block is a detected region of interest in a screenshot.
type Block struct {
	Rect       image.Rectangle
	Type       string // "panel", "control", "unknown"
	Confidence float64
}

// Score ranks blocks when choosing a zoom target.
func (b Block) Score() float64 {
	return float64(b.Rect.Dx()*b.Rect.Dy()) * b.Confidence
}

// Detector finds regions of interest in an image.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
