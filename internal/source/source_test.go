package source

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{in: "shot.png", want: Ref{Path: "shot.png"}},
		{in: "deck.pdf", want: Ref{Path: "deck.pdf", Page: 1}},
		{in: "deck.PDF#3", want: Ref{Path: "deck.PDF", Page: 3}},
		{in: "deck.pdf#0", wantErr: true},
		{in: "deck.pdf#x", wantErr: true},
		{in: "shot.png#2", wantErr: true},
		{in: "captures#2", want: Ref{Path: "captures", Page: 2}},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 3, color.White)
	writePNG(t, filepath.Join(dir, "a.png"), 8, 6, color.Black)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.PageCount())
	w, h, err := src.GetPageDimensions(0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 6.0, h)

	img, err := src.RenderPage(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = src.RenderPage(5, 0)
	assert.Error(t, err)
}

func TestPreloadDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ok.png"), 10, 10, color.RGBA{R: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644))

	assets, err := Preload(context.Background(), []string{"ok.png", "broken.png", "missing.png"}, PreloadOptions{
		Dir:     dir,
		Workers: 2,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, assets.Loaded())
	assert.Len(t, assets.Failed(), 2)
	assert.Equal(t, 10, assets.Get("ok.png").Bounds().Dx())
	assert.Equal(t, Placeholder(), assets.Get("broken.png"))
	assert.Equal(t, Placeholder(), assets.Get("never-listed.png"))
}

func TestPreloadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Preload(ctx, []string{"a.png"}, PreloadOptions{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaceholderIsStable(t *testing.T) {
	p := Placeholder()
	assert.Same(t, p, Placeholder())
	assert.Equal(t, image.Rect(0, 0, 1440, 734), p.Bounds())
	var nilAssets *Assets
	assert.Equal(t, p, nilAssets.Get("x"))
}

func TestLoadSingle(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"), 5, 7, color.White)

	img, err := Load("one.png", dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, img.Bounds().Dy())

	_, err = Load("two.png", dir, 0)
	assert.Error(t, err)
}

func TestLoadDirectoryPage(t *testing.T) {
	dir := t.TempDir()
	shots := filepath.Join(dir, "captures")
	require.NoError(t, os.Mkdir(shots, 0755))
	writePNG(t, filepath.Join(shots, "01.png"), 4, 4, color.White)
	writePNG(t, filepath.Join(shots, "02.png"), 6, 2, color.Black)

	img, err := Load("captures#2", dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())

	_, err = Load("captures#3", dir, 0)
	assert.Error(t, err)
}

func TestLoadDecodesByExtension(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	encoders := map[string]func(f *os.File) error{
		"shot.png": func(f *os.File) error { return png.Encode(f, img) },
		"shot.JPG": func(f *os.File) error { return jpeg.Encode(f, img, nil) },
		"shot.tga": func(f *os.File) error { return tga.Encode(f, img) },
	}
	for name, encode := range encoders {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, encode(f))
		require.NoError(t, f.Close())
	}

	for name := range encoders {
		t.Run(name, func(t *testing.T) {
			got, err := Load(name, dir, 0)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 6, 4), got.Bounds())
		})
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.bmp"), []byte("BM"), 0644))
	_, err := Load("shot.bmp", dir, 0)
	assert.ErrorContains(t, err, "unsupported image format")
}
