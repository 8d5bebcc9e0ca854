package analyzer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// ContrastDetector finds UI regions with a Sobel edge pass followed by
// dilation and connected components. Work happens on a downscaled copy;
// returned rectangles are in the source image's coordinates.
type ContrastDetector struct {
	MinBlockArea  int     // in analysis pixels
	EdgeThreshold float64 // gradient magnitude
	AnalysisWidth int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  400,
		EdgeThreshold: 30.0,
		AnalysisWidth: 480,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	src := img.Bounds()
	if src.Empty() {
		return nil, nil
	}
	gray, factor := d.downscale(img)

	edges := sobel(gray, d.EdgeThreshold)
	dilated := dilate(edges, 5, 2)
	frameArea := gray.Bounds().Dx() * gray.Bounds().Dy()

	var blocks []Block
	for _, rect := range components(dilated) {
		area := rect.Dx() * rect.Dy()
		if area < d.MinBlockArea {
			continue
		}
		kind, conf := classify(rect, frameArea)
		blocks = append(blocks, Block{
			Rect: image.Rect(
				src.Min.X+int(float64(rect.Min.X)*factor),
				src.Min.Y+int(float64(rect.Min.Y)*factor),
				src.Min.X+int(math.Ceil(float64(rect.Max.X)*factor)),
				src.Min.Y+int(math.Ceil(float64(rect.Max.Y)*factor)),
			).Intersect(src),
			Type:       kind,
			Confidence: conf,
		})
	}
	return blocks, nil
}

// classify favours mid-sized regions. Near-full-frame components are usually
// the window chrome rather than a feature worth zooming into.
func classify(r image.Rectangle, frameArea int) (string, float64) {
	share := float64(r.Dx()*r.Dy()) / float64(frameArea)
	switch {
	case share > 0.6:
		return "panel", 0.2
	case share < 0.01:
		return "control", 0.5
	default:
		return "unknown", 0.7
	}
}

func (d *ContrastDetector) downscale(img image.Image) (*image.Gray, float64) {
	b := img.Bounds()
	w := b.Dx()
	if d.AnalysisWidth <= 0 || w <= d.AnalysisWidth {
		gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		return gray, 1
	}
	factor := float64(w) / float64(d.AnalysisWidth)
	h := int(math.Max(1, math.Round(float64(b.Dy())/factor)))
	gray := image.NewGray(image.Rect(0, 0, d.AnalysisWidth, h))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	return gray, factor
}

var (
	sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Bounds()
	edges := image.NewGray(b)
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var sx, sy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					p := float64(gray.GrayAt(x+kx, y+ky).Y)
					sx += p * float64(sobelX[ky+1][kx+1])
					sy += p * float64(sobelY[ky+1][kx+1])
				}
			}
			if math.Hypot(sx, sy) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

func dilate(img *image.Gray, kernel, iterations int) *image.Gray {
	b := img.Bounds()
	result := image.NewGray(b)
	copy(result.Pix, img.Pix)
	half := kernel / 2

	for i := 0; i < iterations; i++ {
		next := image.NewGray(b)
		for y := b.Min.Y + half; y < b.Max.Y-half; y++ {
			for x := b.Min.X + half; x < b.Max.X-half; x++ {
				var v uint8
				for ky := -half; ky <= half && v < 255; ky++ {
					for kx := -half; kx <= half; kx++ {
						if p := result.GrayAt(x+kx, y+ky).Y; p > v {
							v = p
						}
					}
				}
				next.SetGray(x, y, color.Gray{Y: v})
			}
		}
		result = next
	}
	return result
}

// components returns the bounding box of every 4-connected white region.
func components(img *image.Gray) []image.Rectangle {
	b := img.Bounds()
	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	var rects []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[idx(x, y)] {
				rects = append(rects, flood(img, visited, idx, x, y))
			}
		}
	}
	return rects
}

func flood(img *image.Gray, visited []bool, idx func(x, y int) int, x0, y0 int) image.Rectangle {
	b := img.Bounds()
	r := image.Rect(x0, y0, x0+1, y0+1)
	stack := []image.Point{{X: x0, Y: y0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(b) || visited[idx(p.X, p.Y)] || img.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[idx(p.X, p.Y)] = true
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return r
}
