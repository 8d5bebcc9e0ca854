// Package source loads the screenshots a storyboard refers to, from image
// files or from pages of a PDF deck.
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is a paged set of images.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Ref is a parsed screenshot reference: a file path, optionally with a
// 1-based page after '#'. Pages index PDF decks and image directories (in
// name order).
type Ref struct {
	Path string
	Page int
}

// IsPDF reports whether the reference points into a PDF deck.
func (r Ref) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(r.Path), ".pdf")
}

// ParseRef splits "deck.pdf#3" or "captures#2" into path and page. Plain
// image paths get page 0.
func ParseRef(ref string) (Ref, error) {
	path, page, found := strings.Cut(ref, "#")
	r := Ref{Path: path}
	if path == "" {
		return Ref{}, fmt.Errorf("empty screenshot reference")
	}
	if !found {
		if r.IsPDF() {
			r.Page = 1
		}
		return r, nil
	}
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		return Ref{}, fmt.Errorf("screenshot %q: page must be a positive number", ref)
	}
	if isImage(path) {
		return Ref{}, fmt.Errorf("screenshot %q: pages are only supported for PDF files and directories", ref)
	}
	r.Page = n
	return r, nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document handle so pages can render in parallel.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= f.PageCount() {
		return nil, fmt.Errorf("%s: page %d out of range 1-%d", f.path, index+1, f.PageCount())
	}
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// Open returns a PDF source for .pdf files and an image source otherwise.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}
