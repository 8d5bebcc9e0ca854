package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

func frame(v int) *timebase.Frame {
	f := timebase.Frame(v)
	return &f
}

func TestTransformCompose(t *testing.T) {
	zoom := ScaleAbout(2, 100, 50)
	x, y := zoom.Apply(100, 50)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 50.0, y)

	tr := zoom.Then(Translate(10, -5))
	x, y = tr.Apply(0, 0)
	assert.Equal(t, -90.0, x)
	assert.Equal(t, -55.0, y)
	assert.Equal(t, 2.0, tr.Scale)

	id := Identity()
	assert.Equal(t, zoom, zoom.Then(id))
	assert.Equal(t, zoom, id.Then(zoom))
}

func TestWindowPhases(t *testing.T) {
	w := Window{Start: 10, Active: 5, Hold: 5, Exit: 5}
	assert.Equal(t, PhasePending, w.PhaseAt(9))
	assert.Equal(t, PhaseActive, w.PhaseAt(10))
	assert.Equal(t, PhaseHold, w.PhaseAt(15))
	assert.Equal(t, PhaseCompleting, w.PhaseAt(20))
	assert.Equal(t, PhaseDone, w.PhaseAt(25))
	assert.Equal(t, "completing", PhaseCompleting.String())
}

func TestWordStagger(t *testing.T) {
	w := WordStagger{Text: "Everything You Need"}

	words := w.At(0)
	require.Len(t, words, 3)
	assert.Equal(t, "You", words[1].Word)
	for _, ws := range words {
		assert.Equal(t, 0.0, ws.Opacity)
		assert.Equal(t, 20.0, ws.TranslateY)
		assert.Equal(t, 0.95, ws.Scale)
	}

	// word 1 starts at frame 3 and is done at 13
	words = w.At(13)
	assert.Equal(t, 1.0, words[1].Opacity)
	assert.Equal(t, 0.0, words[1].TranslateY)
	assert.Less(t, words[2].Opacity, 1.0)
	assert.Greater(t, words[2].Opacity, 0.0)

	assert.Equal(t, timebase.Frame(16), w.Duration())
	assert.Empty(t, WordStagger{Text: "   "}.At(5))
}

func TestFeatureTitleSubtitle(t *testing.T) {
	ft := FeatureTitle{Title: WordStagger{Text: "Chat + SMS + Email"}, Subtitle: "Unified Communication"}
	// 5 words * 3 + 8
	assert.Equal(t, timebase.Frame(23), ft.SubtitleStart())
	assert.Equal(t, 0.0, ft.At(22).SubtitleOpacity)
	assert.Equal(t, 1.0, ft.At(35).SubtitleOpacity)
	assert.Equal(t, 0.0, ft.At(35).SubtitleY)
}

func TestCursorLifecycle(t *testing.T) {
	c := CursorSpec{
		Start:        Point{X: 20, Y: 50},
		End:          Point{X: 25, Y: 50},
		StartFrame:   40,
		MoveDuration: 15,
		ClickAt:      frame(55),
	}
	require.NoError(t, c.Validate(300))

	before := c.At(39)
	assert.False(t, before.Visible)
	assert.Equal(t, PhasePending, before.Phase)

	moving := c.At(43)
	assert.True(t, moving.Visible)
	assert.Equal(t, PhaseActive, moving.Phase)
	assert.Greater(t, moving.X, 20.0)
	assert.Less(t, moving.X, 25.0)

	atClick := c.At(55)
	assert.Equal(t, 25.0, atClick.X)
	require.NotNil(t, atClick.Ripple)
	assert.InDelta(t, 0.3, atClick.Ripple.Radius, 1e-9)

	pressed := c.At(59)
	assert.InDelta(t, 0.85, pressed.Scale, 1e-9)
	assert.Nil(t, c.At(67).Ripple)

	// fade out 67..77
	assert.Equal(t, timebase.Frame(67), c.FadeOutStart())
	assert.Equal(t, timebase.Frame(77), c.EndFrame())
	assert.Equal(t, Point{X: 25, Y: 50}, c.End)
	assert.Equal(t, c.EndFrame(), c.Window().End())
	assert.Equal(t, PhaseCompleting, c.At(70).Phase)
	assert.Less(t, c.At(70).Opacity, 1.0)
	done := c.At(77)
	assert.False(t, done.Visible)
	assert.Equal(t, PhaseDone, done.Phase)
}

func TestCursorWithoutClick(t *testing.T) {
	c := CursorSpec{StartFrame: 0, MoveDuration: 10}
	assert.Equal(t, timebase.Frame(40), c.FadeOutStart())
	assert.Equal(t, 1.0, c.At(20).Opacity)
	assert.Equal(t, PhaseHold, c.At(20).Phase)
}

func TestCursorValidate(t *testing.T) {
	c := CursorSpec{StartFrame: 290, MoveDuration: 20}
	assert.ErrorIs(t, c.Validate(300), ErrCursorWindow)
	c = CursorSpec{StartFrame: 10, MoveDuration: 10, ClickAt: frame(5)}
	assert.ErrorIs(t, c.Validate(300), ErrCursorWindow)
}

func TestResolveZoom(t *testing.T) {
	scale := 1.8
	z, err := ResolveZoom("dramatic", ZoomOverride{Scale: &scale, AtFrame: frame(40)})
	require.NoError(t, err)
	assert.Equal(t, 1.8, z.Scale)
	assert.Equal(t, timebase.Frame(40), z.AtFrame)
	assert.Equal(t, timebase.Frame(30), z.ZoomDuration)
	assert.True(t, z.ShowSpotlight)
	assert.Equal(t, DefaultRingSize, z.RingSize)

	z, err = ResolveZoom("subtle", ZoomOverride{})
	require.NoError(t, err)
	assert.False(t, z.ShowVignette)
	assert.Equal(t, 1.5, z.Scale)

	_, err = ResolveZoom("wobbly", ZoomOverride{})
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, []string{"cinematic", "dramatic", "snappy", "spotlight", "subtle"}, ZoomPresets())
}

func TestZoomEnvelope(t *testing.T) {
	z := DefaultZoom()
	z.Target = Point{X: 30, Y: 70}
	z.AtFrame = 30
	require.NoError(t, z.Validate(300))
	require.Error(t, z.Validate(100))

	frames, scales := z.Envelope()
	assert.Equal(t, []float64{30, 60, 120, 144}, frames)
	assert.Equal(t, []float64{1, 2, 2, 1}, scales)

	bad := z
	bad.HoldDuration = -40
	err := bad.Validate(300)
	assert.ErrorIs(t, err, ErrZoomWindow)
	assert.ErrorIs(t, err, interp.ErrNotMonotonic)

	// outside the window the zoom is inactive and centred
	for _, f := range []timebase.Frame{0, 29, 144, 200} {
		st := z.At(f)
		assert.Equal(t, 1.0, st.Scale, "frame %d", f)
		assert.Equal(t, Point{X: 50, Y: 50}, st.Origin, "frame %d", f)
	}

	mid := z.At(45)
	assert.Greater(t, mid.Scale, 1.0)
	assert.Less(t, mid.Scale, 2.0)
	assert.Equal(t, z.Target, mid.Origin)

	hold := z.At(80)
	assert.Equal(t, 2.0, hold.Scale)
	assert.Equal(t, PhaseHold, hold.Phase)
	assert.InDelta(t, DefaultVignetteIntensity, hold.Vignette, 1e-9)

	exit := z.At(130)
	assert.Equal(t, PhaseCompleting, exit.Phase)
	assert.Less(t, exit.Scale, 2.0)
}

func TestZoomRing(t *testing.T) {
	z := DefaultZoom()
	z.AtFrame = 30

	assert.Nil(t, z.At(19).Ring)
	drawing := z.At(30)
	require.NotNil(t, drawing.Ring)
	assert.Greater(t, drawing.Ring.Progress, 0.0)
	assert.Less(t, drawing.Ring.Progress, 1.0)

	holding := z.At(75)
	require.NotNil(t, holding.Ring)
	assert.Equal(t, 1.0, holding.Ring.Progress)
	assert.Equal(t, 1.0, holding.Ring.Opacity)
	assert.GreaterOrEqual(t, holding.Ring.Scale, 1.0)
	assert.LessOrEqual(t, holding.Ring.Scale, 1.08+1e-9)

	// hold ends at 120, ring fades during 100..120
	assert.Less(t, z.At(110).Ring.Opacity, 1.0)
	assert.Nil(t, z.At(120).Ring)
}

func TestZoomCursorVariant(t *testing.T) {
	z := DefaultZoom()
	z.AtFrame = 40
	z.ShowCursor = true

	st := z.At(30)
	assert.Nil(t, st.Ring)
	require.NotNil(t, st.Cursor)

	c := z.Cursor()
	assert.Equal(t, timebase.Frame(16), c.StartFrame)
	assert.Equal(t, timebase.Frame(38), *c.ClickAt)

	hold := z.At(z.AtFrame + z.ZoomDuration + 5)
	require.NotNil(t, hold.Cursor)
	assert.InDelta(t, z.Scale, hold.Cursor.Scale, 1e-9)
}

func TestZoomSpotlight(t *testing.T) {
	z, err := ResolveZoom("spotlight", ZoomOverride{AtFrame: frame(20)})
	require.NoError(t, err)
	assert.Nil(t, z.At(0).Glow)
	peak := z.At(z.AtFrame + z.ZoomDuration)
	require.NotNil(t, peak.Glow)
	assert.InDelta(t, 1.0, peak.Glow.Opacity, 1e-9)
}

func TestCarouselIndex(t *testing.T) {
	c := Carousel{Count: 3, Slide: 75, Transition: 18}
	require.NoError(t, c.Validate())

	prev := 0
	for f := timebase.Frame(-5); f < 600; f++ {
		idx := c.IndexAt(f)
		require.GreaterOrEqual(t, idx, prev)
		require.Less(t, idx, 3)
		prev = idx
	}
	assert.Equal(t, 0, c.IndexAt(92))
	assert.Equal(t, 1, c.IndexAt(93))
	assert.Equal(t, 2, c.IndexAt(10_000))
}

func TestCarouselTransition(t *testing.T) {
	c := Carousel{Count: 3, Slide: 75, Transition: 18}

	st := c.At(10)
	assert.Equal(t, 0.0, st.Progress)
	require.Len(t, st.Items, 1)
	assert.Equal(t, 0.0, st.Items[0].Offset)

	st = c.At(84)
	assert.Greater(t, st.Progress, 0.0)
	assert.Len(t, st.Items, 2)

	// last item holds without a transition
	st = c.At(c.Duration() + 50)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, 0.0, st.Progress)
}

func TestCarouselCentered(t *testing.T) {
	c := Carousel{Count: 4, Slide: 75, Transition: 18, Variant: CarouselCentered}
	st := c.At(0)

	byIndex := map[int]CarouselItem{}
	for _, it := range st.Items {
		byIndex[it.Index] = it
	}
	require.Contains(t, byIndex, 0)
	require.Contains(t, byIndex, 1)
	require.Contains(t, byIndex, 3)

	assert.Equal(t, 1.0, byIndex[0].Scale)
	assert.Equal(t, 0.0, byIndex[0].Blur)
	assert.InDelta(t, 0.9, byIndex[1].Scale, 1e-9)
	assert.InDelta(t, 0.4, byIndex[1].Opacity, 1e-9)
	assert.InDelta(t, 50.0, byIndex[1].Offset, 1e-9)
	// wrapped: the last item peeks from the left
	assert.InDelta(t, -50.0, byIndex[3].Offset, 1e-9)
}

func TestCarouselValidate(t *testing.T) {
	assert.ErrorIs(t, Carousel{Count: 0, Slide: 10}.Validate(), ErrCarousel)
	assert.ErrorIs(t, Carousel{Count: 2, Slide: 0}.Validate(), ErrCarousel)
	assert.Equal(t, 0, Carousel{Count: 1, Slide: 10}.At(500).Index)
}

func TestCrossfadeEnergy(t *testing.T) {
	c := Crossfade{Duration: 360, Transition: 18}
	assert.Equal(t, timebase.Frame(180), c.SwitchFrame())

	for f := timebase.Frame(0); f < 360; f++ {
		a, b := c.At(f)
		require.InDelta(t, 1.0, a+b, 1e-9)
		if f < 171 || f >= 189 {
			require.True(t, (a == 1 && b == 0) || (a == 0 && b == 1), "frame %d", f)
		}
	}
	a, b := c.At(180)
	assert.InDelta(t, 0.5, a, 1e-6)
	assert.InDelta(t, 0.5, b, 1e-6)

	a, b = Crossfade{Duration: 240}.At(120)
	assert.Equal(t, 0.0, a)
	assert.Equal(t, 1.0, b)
}

func TestCardStack(t *testing.T) {
	s := DefaultCardStack(7)
	assert.Equal(t, timebase.Frame(55), s.Settled())
	assert.Equal(t, 0.0, s.StackOpacity(0))
	assert.Equal(t, 1.0, s.StackOpacity(8))

	cards := s.At(0)
	require.Len(t, cards, 7)
	assert.Equal(t, 900.0, cards[0].Y)
	assert.Equal(t, 4.0, cards[0].Scale)
	assert.Equal(t, 0.0, cards[0].Opacity)

	cards = s.At(12)
	assert.Equal(t, 1.0, cards[0].Opacity)
	assert.Less(t, cards[0].Y, 900.0)
	assert.Equal(t, 0.0, cards[2].Opacity)

	cards = s.At(s.Settled())
	for i, c := range cards {
		assert.InDelta(t, float64(i)*18, c.Y, 1e-9)
		assert.Equal(t, 1.0, c.Scale)
		assert.Equal(t, i, c.Z)
	}
}

func TestWaveDotsDeterministic(t *testing.T) {
	w := DefaultWaveDots(1920, 1080)
	a := w.At(42)
	b := w.At(42)
	assert.Equal(t, a, b)
	// 96+2 cols plus 2 buffer on the left, 54+2 rows plus 2 on top
	assert.Len(t, a, 100*58)
	for _, d := range a {
		require.GreaterOrEqual(t, d.Opacity, 0.4-1e-9)
		require.LessOrEqual(t, d.Opacity, 1.0+1e-9)
		require.GreaterOrEqual(t, d.Scale, 0.85-1e-9)
		require.LessOrEqual(t, d.Scale, 1.15+1e-9)
	}
	assert.NotEqual(t, w.At(0)[500].Opacity, w.At(30)[500].Opacity)
}

func TestChaosCardsAreSeededByIndex(t *testing.T) {
	first := ChaosCardAt(0)
	assert.Equal(t, 0.0, first.Angle)
	assert.Equal(t, 1000.0, first.Distance)
	assert.Equal(t, -45.0, first.Rotation)
	assert.Equal(t, timebase.Frame(0), first.Delay)
	assert.Equal(t, Point{X: 20, Y: 25}, first.Land)

	second := ChaosCardAt(1)
	assert.InDelta(t, 0.4567*2*math.Pi, second.Angle, 1e-6)
	assert.InDelta(t, 1413.4, second.Distance, 1e-3)
	assert.InDelta(t, -3.897, second.Rotation, 1e-3)

	want := []timebase.Frame{0, 9, 19, 25, 35}
	for i, d := range want {
		assert.Equal(t, d, ChaosCardAt(i).Delay, "card %d", i)
	}
	for i := 0; i < 40; i++ {
		c := ChaosCardAt(i)
		require.Equal(t, c, ChaosCardAt(i))
		require.GreaterOrEqual(t, c.Delay, timebase.Frame(i)*8)
		require.Less(t, c.Delay, timebase.Frame(i)*8+4)
		require.GreaterOrEqual(t, c.Distance, 1000.0)
		require.Less(t, c.Distance, 1500.0)
		require.GreaterOrEqual(t, c.Rotation, -45.0)
		require.Less(t, c.Rotation, 45.0)
		require.GreaterOrEqual(t, c.Land.X, 10.0)
		require.LessOrEqual(t, c.Land.X, 90.0)
		require.GreaterOrEqual(t, c.Land.Y, 10.0)
		require.LessOrEqual(t, c.Land.Y, 92.0)
	}
}

func TestChaosThrow(t *testing.T) {
	c := DefaultChaosThrow(25, 1920, 1080)
	assert.Equal(t, timebase.Frame(481), c.End())
	assert.Equal(t, ChaosState{}, c.At(139))
	assert.Equal(t, ChaosState{}, c.At(481))

	launch := c.At(140)
	require.Len(t, launch.Cards, 1)
	assert.Equal(t, 1.0, launch.Opacity)
	card := launch.Cards[0]
	assert.InDelta(t, 50+1000.0/1920*100, card.Pos.X, 1e-9)
	assert.InDelta(t, 50, card.Pos.Y, 1e-9)
	assert.Equal(t, 1.8, card.Scale)
	assert.Equal(t, 0.0, card.Opacity)
	assert.Equal(t, -45.0, card.Rotation)

	landed := c.At(140 + ChaosThrowFrames)
	require.Len(t, landed.Cards, 2)
	card = landed.Cards[0]
	assert.InDelta(t, 20, card.Pos.X, 1e-9)
	assert.InDelta(t, 25, card.Pos.Y, 1e-9)
	assert.InDelta(t, 1, card.Scale, 1e-9)
	assert.InDelta(t, -13.5, card.Rotation, 1e-9)
	assert.Equal(t, 1.0, card.Opacity)
	assert.Less(t, landed.Cards[1].Opacity, 1.0)
	assert.Equal(t, 0.0, landed.CrossOut)

	all := c.At(140 + 200)
	assert.Len(t, all.Cards, 25)
	assert.Equal(t, all, c.At(140+200))

	assert.Equal(t, 0.0, c.At(380).CrossOut)
	assert.Equal(t, 0.0, c.At(380).CrossOutOpacity)
	mid := c.At(430)
	assert.InDelta(t, 0.5, mid.CrossOut, 1e-9)
	assert.Equal(t, 1.0, mid.CrossOutOpacity)
	assert.InDelta(t, 0.5, c.At(465).Opacity, 1e-9)
	assert.Equal(t, 0.0, c.At(480).Opacity)
	assert.Equal(t, 1.0, c.At(480).CrossOut)
}

func TestCrossOutPath(t *testing.T) {
	path := CrossOutPath()
	require.Len(t, path, 241)
	assert.Equal(t, Point{X: 100, Y: 150}, path[0])
	assert.InDelta(t, 1700, path[len(path)-1].X, 1e-9)
	assert.InDelta(t, 1020, path[len(path)-1].Y, 1e-9)
	assert.Equal(t, path, CrossOutPath())
}

func TestTrimPath(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}}
	assert.Nil(t, TrimPath(pts, 0))
	assert.Equal(t, pts, TrimPath(pts, 1))
	assert.Equal(t, []Point{{0, 0}, {5, 0}}, TrimPath(pts, 0.25))
	assert.Equal(t, []Point{{0, 0}, {10, 0}, {10, 5}}, TrimPath(pts, 0.75))
	assert.Nil(t, TrimPath(pts[:1], 0.5))
}
