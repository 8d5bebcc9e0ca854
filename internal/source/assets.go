package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDPI       = 150
	placeholderWidth = 1440
	placeholderHigh  = 734
)

// Assets holds decoded screenshots by reference. It is filled once by
// Preload and read-only afterwards.
type Assets struct {
	images      map[string]image.Image
	failed      map[string]error
	placeholder image.Image
}

// Get returns the screenshot for ref, or the placeholder when it is unknown
// or failed to load.
func (a *Assets) Get(ref string) image.Image {
	if a != nil {
		if img, ok := a.images[ref]; ok {
			return img
		}
	}
	return Placeholder()
}

// Failed returns the references that could not be loaded with their errors.
func (a *Assets) Failed() map[string]error { return a.failed }

// Loaded is the number of successfully decoded screenshots.
func (a *Assets) Loaded() int { return len(a.images) }

// PreloadOptions configures Preload.
type PreloadOptions struct {
	Dir     string
	DPI     int
	Workers int
	Logger  zerolog.Logger
}

// Preload decodes every reference in parallel before rendering starts.
// Failures are logged and replaced by the placeholder; only cancellation of
// ctx is returned as an error.
func Preload(ctx context.Context, refs []string, opts PreloadOptions) (*Assets, error) {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	a := &Assets{
		images:      make(map[string]image.Image, len(refs)),
		failed:      map[string]error{},
		placeholder: Placeholder(),
	}

	var (
		mu   sync.Mutex
		pdfs = map[string]*FitzPDFSource{}
	)
	defer func() {
		for _, doc := range pdfs {
			doc.Close()
		}
	}()
	openPDF := func(path string) (*FitzPDFSource, error) {
		mu.Lock()
		defer mu.Unlock()
		if doc, ok := pdfs[path]; ok {
			return doc, nil
		}
		doc, err := NewFitzPDFSource(path)
		if err != nil {
			return nil, err
		}
		pdfs[path] = doc
		return doc, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := load(ref, opts, openPDF)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.failed[ref] = err
				opts.Logger.Warn().Err(err).Str("screenshot", ref).Msg("screenshot unavailable, using placeholder")
				return nil
			}
			a.images[ref] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	opts.Logger.Debug().Int("loaded", len(a.images)).Int("failed", len(a.failed)).Msg("screenshots preloaded")
	return a, nil
}

// Load decodes a single reference outside of a preload pass.
func Load(ref, dir string, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	var doc *FitzPDFSource
	defer func() {
		if doc != nil {
			doc.Close()
		}
	}()
	return load(ref, PreloadOptions{Dir: dir, DPI: dpi}, func(path string) (*FitzPDFSource, error) {
		var err error
		doc, err = NewFitzPDFSource(path)
		return doc, err
	})
}

func load(ref string, opts PreloadOptions, openPDF func(string) (*FitzPDFSource, error)) (image.Image, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	path := r.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}
	if !r.IsPDF() {
		if r.Page == 0 {
			return decodeFile(path)
		}
		dir, err := NewImageSource(path)
		if err != nil {
			return nil, err
		}
		defer dir.Close()
		return dir.RenderPage(r.Page-1, opts.DPI)
	}
	doc, err := openPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return doc.RenderPage(r.Page-1, opts.DPI)
}

var (
	placeholderOnce sync.Once
	placeholderImg  *image.RGBA
)

// Placeholder is the neutral panel drawn for missing screenshots.
func Placeholder() image.Image {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHigh))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0xEE, 0xEC, 0xE8, 0xFF}}, image.Point{}, draw.Src)
		stripe := &image.Uniform{C: color.RGBA{0xE0, 0xDD, 0xD8, 0xFF}}
		for x := -placeholderHigh; x < placeholderWidth; x += 48 {
			for y := 0; y < placeholderHigh; y++ {
				r := image.Rect(x+y, y, x+y+16, y+1)
				draw.Draw(img, r.Intersect(img.Bounds()), stripe, image.Point{}, draw.Src)
			}
		}
		placeholderImg = img
	})
	return placeholderImg
}
