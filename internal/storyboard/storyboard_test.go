package storyboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
)

type fakeResolver struct {
	frames timebase.Frame
	focus  anim.Point
	fail   map[string]bool
}

func (f fakeResolver) AudioFrames(_ context.Context, ref string) (timebase.Frame, error) {
	if f.fail[ref] {
		return 0, errors.New("missing")
	}
	return f.frames, nil
}

func (f fakeResolver) FocusPoint(context.Context, string) (anim.Point, error) {
	return f.focus, nil
}

func TestDefaultStoryboardBuilds(t *testing.T) {
	sb, err := Default()
	require.NoError(t, err)
	assert.Equal(t, timebase.Frame(6420), sb.Total)
	assert.Equal(t, 30, sb.FPS)

	opts := Options{Resolver: fakeResolver{frames: 90, focus: anim.Point{X: 30, Y: 40}}, Logger: zerolog.Nop()}
	tl, err := Build(context.Background(), sb, opts)
	require.NoError(t, err)

	assert.Len(t, tl.Slots, 18)
	assert.Len(t, tl.VoiceTracks(), 59)

	intro := tl.Slots[0].Scene
	assert.Equal(t, timebase.Frame(630), intro.Duration)
	assert.Len(t, intro.Chaos, 25)
	assert.Equal(t, "prior authorizations", intro.Chaos[0])
	assert.Equal(t, []string{"intro-dashboard.png"}, intro.Screenshots)

	slot, local, ok := tl.SceneAt(4980)
	require.True(t, ok)
	assert.Equal(t, "one-more-thing", slot.Scene.ID)
	assert.Equal(t, timebase.Frame(0), local)
	assert.True(t, slot.Scene.Dramatic)

	slot, _, ok = tl.SceneAt(5080)
	require.True(t, ok)
	require.NotNil(t, slot.Scene.Zoom)
	assert.Equal(t, anim.Point{X: 30, Y: 40}, slot.Scene.Zoom.Target)
	assert.Equal(t, 1.5, slot.Scene.Zoom.Scale)

	slot, _, ok = tl.SceneAt(6419)
	require.True(t, ok)
	assert.Equal(t, "outro", slot.Scene.ID)

	// both beds sound across the crossfade at the reveal
	var beds []string
	for _, s := range tl.AudioAt(4990) {
		if s.Track.Kind == timeline.TrackMusic {
			beds = append(beds, strings.Split(s.Track.ID, "#")[0])
		}
	}
	assert.ElementsMatch(t, []string{"calm", "reveal"}, beds)
}

func TestCompileWithoutAudioSkipsTracks(t *testing.T) {
	sb, err := Default()
	require.NoError(t, err)

	tl, err := Build(context.Background(), sb, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Empty(t, tl.Tracks)

	slot, _, ok := tl.SceneAt(5080)
	require.True(t, ok)
	assert.Equal(t, anim.Point{X: 50, Y: 50}, slot.Scene.Zoom.Target)
}

func TestCompileSkipsUnmeasurableFirstBed(t *testing.T) {
	sb, err := Default()
	require.NoError(t, err)
	r := fakeResolver{frames: 300, fail: map[string]bool{"music/bed-calm.mp3": true}}

	spec, err := Compile(context.Background(), sb, Options{Resolver: r, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, spec.Music.Beds, 1)
	assert.Equal(t, "reveal", spec.Music.Beds[0].ID)
	assert.Equal(t, timebase.Frame(4980), *spec.Music.Beds[0].From)
}

func TestCompileDefaultsLayout(t *testing.T) {
	spec, err := Compile(context.Background(), &Storyboard{
		Total: 300,
		Scenes: []Scene{
			{ID: "a", Kind: "feature", Duration: 150, Screenshots: []string{"a.png"}},
			{ID: "b", Kind: "finale", Duration: 150, Screenshots: []string{"b.png"}},
		},
	}, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, timebase.FPS, spec.FPS)
	assert.Equal(t, scene.LayoutSingle, spec.Scenes[0].Scene.Layout)
	assert.Equal(t, scene.LayoutFullscreen, spec.Scenes[1].Scene.Layout)
}

func TestBuildCarouselStyleAndZoomRange(t *testing.T) {
	sb, err := Parse([]byte(`
total: 300
scenes:
  - id: a
    kind: feature
    duration: 150
    layout: carousel
    carousel: slide
    screenshots: [a.png, b.png]
  - id: b
    kind: feature
    duration: 150
    layout: cinematic-zoom
    screenshots: [c.png]
    zoom:
      preset: subtle
`))
	require.NoError(t, err)
	tl, err := Build(context.Background(), sb, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, scene.CarouselSlide, tl.Slots[0].Scene.CarouselStyle)
	assert.Equal(t, anim.CarouselSlide, tl.Slots[0].Scene.Carousel().Variant)

	hold := timebase.Frame(-60)
	sb.Scenes[1].Zoom.HoldDuration = &hold
	_, err = Build(context.Background(), sb, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, anim.ErrZoomWindow)
	assert.ErrorIs(t, err, interp.ErrNotMonotonic)

	sb.Scenes[1].Zoom = nil
	_, err = Build(context.Background(), sb, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, scene.ErrMissingZoom)
}

func TestCompileUnknownPreset(t *testing.T) {
	_, err := Compile(context.Background(), &Storyboard{
		Total:  150,
		Scenes: []Scene{{ID: "z", Kind: "feature", Duration: 150, Zoom: &Zoom{Preset: "wobbly"}}},
	}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, anim.ErrUnknownPreset)
}

func TestParseZoomTarget(t *testing.T) {
	sb, err := Parse([]byte(`
total: 150
scenes:
  - id: a
    kind: feature
    duration: 150
    zoom:
      target: auto
  - id: b
    kind: feature
    duration: 150
    zoom:
      target: {x: 12, y: 34}
`))
	require.NoError(t, err)
	assert.True(t, sb.Scenes[0].Zoom.Target.Auto)
	assert.Equal(t, anim.Point{X: 12, Y: 34}, sb.Scenes[1].Zoom.Target.Point)

	_, err = Parse([]byte("scenes:\n  - id: a\n    zoom:\n      target: middle\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("scenes:\n  - id: a\n    colour: red\n"))
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	clickAt := timebase.Frame(50)
	sb := &Storyboard{
		Version: "1",
		FPS:     30,
		Total:   120,
		Scenes: []Scene{{
			ID: "a", Kind: "feature", Duration: 120, Layout: "single",
			Cursor: &Cursor{Start: anim.Point{X: 1, Y: 2}, End: anim.Point{X: 3, Y: 4}, StartFrame: 10, ClickAt: &clickAt},
			Zoom:   &Zoom{Preset: "subtle", Target: &Target{Auto: true}},
		}},
	}
	path := filepath.Join(dir, "nested", "board.yaml")
	require.NoError(t, Write(sb, path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sb, got)
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"storyboard_a.yaml", "storyboard_b.yaml", "storyboard_c.yml"}
	for i, name := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("total: 1"), 0644))
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	latest, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "storyboard_c.yml"), latest)

	_, err = FindLatest(t.TempDir())
	assert.Error(t, err)

	assert.Contains(t, GeneratePath(dir), "storyboard_")
}

func TestRefs(t *testing.T) {
	sb, err := Default()
	require.NoError(t, err)
	assert.Len(t, sb.AudioRefs(), 61)
	refs := sb.ScreenshotRefs()
	assert.Contains(t, refs, "composer-document.png")
	seen := map[string]bool{}
	for _, r := range refs {
		assert.False(t, seen[r], r)
		seen[r] = true
	}
}
