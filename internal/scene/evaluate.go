package scene

import (
	"image/color"
	"math"
	"sort"

	"github.com/ivlev/promoreel/internal/anim"
	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/theme"
	"github.com/ivlev/promoreel/internal/timebase"
)

var white = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}

const (
	cardWidth      = 550
	cardHeight     = 309
	cardStackTop   = 420
	cardChrome     = 22
	finaleFadeIn   = 20
	outroSlide     = 15
	paginationStep = 18
)

// Evaluate returns the display list of scene s at local frame f. It is a
// pure function of its arguments.
func Evaluate(s Scene, f timebase.Frame) FrameState {
	st := FrameState{Frame: f, SceneID: s.ID}
	lc := s.Transition().At(f, s.Duration)
	if !lc.Visible {
		return st
	}

	var layers []Layer
	switch s.Kind {
	case KindIntro:
		layers = introLayers(s, f)
	case KindFeature:
		layers = featureLayers(s, f)
	case KindSection:
		layers = sectionLayers(s, f)
	case KindFinale:
		layers = finaleLayers(s, f)
	case KindStack:
		layers = stackLayers(s, f)
	case KindOutro:
		layers = outroLayers(s, f)
	}

	life := lc.Transform()
	for i := range layers {
		layers[i].Transform = layers[i].Transform.Then(life)
		layers[i].Opacity *= lc.Opacity
	}
	st.Layers = layers
	return st
}

func newLayer(kind LayerKind, r Rect) Layer {
	return Layer{Kind: kind, Rect: r, Transform: anim.Identity(), Opacity: 1}
}

func fill(r Rect, c color.RGBA, radius float64) Layer {
	l := newLayer(LayerFill, r)
	l.Color = c
	l.Radius = radius
	return l
}

func text(cx, cy float64, s string, size float64, c color.RGBA, bold bool) Layer {
	l := newLayer(LayerText, Rect{X: cx, Y: cy})
	l.Text = s
	l.Size = size
	l.Color = c
	l.Bold = bold
	return l
}

func words(cx, cy float64, ws []anim.WordState, size float64, c color.RGBA) Layer {
	l := newLayer(LayerWords, Rect{X: cx, Y: cy})
	l.Words = ws
	l.Size = size
	l.Color = c
	l.Bold = true
	return l
}

func fade(layers []Layer, opacity float64) []Layer {
	for i := range layers {
		layers[i].Opacity *= opacity
	}
	return layers
}

func shot(s Scene, i int) string {
	if i < 0 || i >= len(s.Screenshots) {
		return ""
	}
	return s.Screenshots[i]
}

func progress(f timebase.Frame, start, dur float64) float64 {
	return interp.Progress(float64(f), start, dur, interp.Material)
}

// contentRect is the browser-framed screenshot area of feature scenes.
func contentRect() Rect {
	return Rect{X: theme.ContentX, Y: theme.ContentY, W: theme.ContentW, H: theme.ContentH}
}

// imageArea is the part of a framed card below its chrome bar.
func imageArea(r Rect, chrome float64) Rect {
	return Rect{X: r.X, Y: r.Y + chrome, W: r.W, H: r.H - chrome}
}

// cardFrame draws a browser-style card with the screenshot inside.
func cardFrame(r Rect, chrome float64, ref string, imageOpacity float64) []Layer {
	layers := []Layer{
		fill(Rect{X: r.X + 6, Y: r.Y + 10, W: r.W, H: r.H}, theme.Shadow, theme.CornerRadius),
		fill(r, theme.Card, theme.CornerRadius),
		fill(Rect{X: r.X, Y: r.Y, W: r.W, H: chrome}, theme.Chrome, theme.CornerRadius),
	}
	for i := 0; i < 3; i++ {
		d := fill(Rect{X: r.X + 14 + float64(i)*16, Y: r.Y + chrome/2 - 5, W: 10, H: 10}, theme.TextSecondary, 5)
		d.Opacity = 0.4
		layers = append(layers, d)
	}
	img := newLayer(LayerImage, imageArea(r, chrome))
	img.Image = ref
	img.Opacity = imageOpacity
	return append(layers, img)
}

func titleLayers(s Scene, f timebase.Frame, y float64) []Layer {
	ft := anim.FeatureTitle{Title: anim.WordStagger{Text: s.Title}, Subtitle: s.Subtitle}
	ts := ft.At(f)
	layers := []Layer{words(theme.Width/2, y, ts.Words, theme.FontFeature, theme.Text)}
	if s.Subtitle != "" {
		sub := text(theme.Width/2, y+62+ts.SubtitleY, s.Subtitle, theme.FontSubtitle, theme.TextSecondary, false)
		sub.Opacity = ts.SubtitleOpacity
		layers = append(layers, sub)
	}
	return layers
}

// showcase lays out the scene screenshots in r, applies the zoom and adds
// the cursor on top.
func showcase(s Scene, f timebase.Frame, r Rect) []Layer {
	chrome := float64(theme.ChromeHeight)
	if s.Layout == LayoutFullscreen {
		r = Rect{W: theme.Width, H: theme.Height}
		chrome = 0
	}
	area := imageArea(r, chrome)

	var content []Layer
	switch s.Layout {
	case LayoutCarousel:
		content = carouselLayers(s, f, r, chrome)
	case LayoutCrossfade:
		a, b := s.Crossfade().At(f)
		content = cardFrame(r, chrome, shot(s, 0), a)
		second := newLayer(LayerImage, area)
		second.Image = shot(s, 1)
		second.Opacity = b
		content = append(content, second)
	case LayoutFullscreen:
		img := newLayer(LayerImage, area)
		img.Image = shot(s, 0)
		content = []Layer{img}
	default:
		content = cardFrame(r, chrome, shot(s, 0), 1)
	}

	zt := anim.Identity()
	var overlays []Layer
	if s.Zoom != nil {
		zs := s.Zoom.At(f)
		zt = zs.Transform(area.X, area.Y, area.W, area.H)
		overlays = zoomOverlays(*s.Zoom, zs, area, zt)
	}
	for i := range content {
		content[i].Transform = content[i].Transform.Then(zt)
	}
	layers := append(content, overlays...)
	if s.Cursor != nil {
		layers = append(layers, cursorLayers(s.Cursor.At(f), area, zt)...)
	}
	if s.Layout == LayoutCarousel {
		layers = append(layers, paginationLayers(s.Carousel().IndexAt(f), len(s.Screenshots))...)
	}
	return layers
}

func carouselLayers(s Scene, f timebase.Frame, r Rect, chrome float64) []Layer {
	st := s.Carousel().At(f)
	items := append([]anim.CarouselItem(nil), st.Items...)
	// farthest first so the current item ends up on top
	sort.SliceStable(items, func(i, j int) bool {
		return math.Abs(items[i].Offset) > math.Abs(items[j].Offset)
	})
	cx, cy := r.Center()
	var layers []Layer
	for _, it := range items {
		t := anim.ScaleAbout(it.Scale, cx, cy).Then(anim.Translate(r.W*it.Offset/100, 0))
		for _, l := range cardFrame(r, chrome, shot(s, it.Index), 1) {
			l.Transform = t
			l.Opacity *= it.Opacity
			if l.Kind == LayerImage {
				l.Blur = it.Blur
			}
			layers = append(layers, l)
		}
	}
	return layers
}

func paginationLayers(active, n int) []Layer {
	if n < 2 {
		return nil
	}
	size := float64(theme.PaginationDot * 2)
	x0 := theme.Width/2 - float64(n-1)*paginationStep/2
	layers := make([]Layer, 0, n)
	for i := 0; i < n; i++ {
		c := theme.AccentLight
		if i == active {
			c = theme.Accent
		}
		x := x0 + float64(i)*paginationStep
		layers = append(layers, fill(Rect{X: x - size/2, Y: theme.PaginationY - size/2, W: size, H: size}, c, size/2))
	}
	return layers
}

func zoomOverlays(z anim.ZoomSpec, zs anim.ZoomState, area Rect, zt anim.Transform) []Layer {
	var layers []Layer
	if zs.Vignette > 0 {
		v := newLayer(LayerVignette, Rect{W: theme.Width, H: theme.Height})
		v.Opacity = zs.Vignette
		layers = append(layers, v)
	}
	tx, ty := zt.Apply(area.At(z.Target))
	if g := zs.Glow; g != nil && g.Opacity > 0 {
		l := newLayer(LayerGlow, Rect{X: tx, Y: ty})
		l.Radius = z.RingSize * g.Scale
		l.Opacity = g.Opacity
		l.Color = theme.AccentLight
		layers = append(layers, l)
	}
	if r := zs.Ring; r != nil {
		l := newLayer(LayerRing, Rect{X: tx, Y: ty})
		l.Radius = r.Size / 2 * r.Scale
		l.Progress = r.Progress
		l.Opacity = r.Opacity
		l.Color = theme.Accent
		layers = append(layers, l)
	}
	if zs.Cursor != nil {
		layers = append(layers, cursorLayers(*zs.Cursor, area, zt)...)
	}
	return layers
}

// cursorLayers places the cursor tip at its percent position inside area,
// follows the zoom with its position only and keeps its own scale.
func cursorLayers(c anim.CursorState, area Rect, zt anim.Transform) []Layer {
	if !c.Visible {
		return nil
	}
	x, y := zt.Apply(area.At(anim.Point{X: c.X, Y: c.Y}))
	var layers []Layer
	if r := c.Ripple; r != nil {
		l := newLayer(LayerRipple, Rect{X: x, Y: y})
		l.Radius = r.Radius * theme.CursorSize
		l.Opacity = r.Opacity * c.Opacity
		l.Color = theme.Accent
		layers = append(layers, l)
	}
	cur := newLayer(LayerCursor, Rect{X: x, Y: y, W: theme.CursorSize, H: theme.CursorSize})
	cur.Transform = anim.ScaleAbout(c.Scale, x, y)
	cur.Opacity = c.Opacity
	cur.Color = theme.Text
	return append(layers, cur)
}

// Intro choreography, in scene frames.
const (
	introBrandOut    = 110
	introBrandFade   = 20
	introDashboardAt = 480
	introDashFade    = 30
	introDashGrow    = 35
	chipSize         = 28
	strikeWidth      = 10
)

var (
	crossOut    = anim.CrossOutPath()
	chipPalette = []color.RGBA{theme.Accent, theme.AccentLight, theme.TextSecondary}
)

// grow fades a layer in over [start, start+fade] and scales it about its
// centre from s0 to 1 over [start, start+scale]. Text layers scale about
// their anchor.
func grow(l Layer, f timebase.Frame, start, fade, scale, s0 float64) Layer {
	cx, cy := l.Rect.Center()
	l.Opacity *= interp.Progress(float64(f), start, fade, interp.Linear)
	l.Transform = anim.ScaleAbout(interp.Lerp(s0, 1, progress(f, start, scale)), cx, cy)
	return l
}

// introLayers builds the brand, throws the chaos cards and crosses them out,
// then reveals the dashboard shot.
func introLayers(s Scene, f timebase.Frame) []Layer {
	layers := chaosLayers(s, f)

	var brand []Layer
	logo := Rect{X: theme.Width/2 - 60, Y: 270, W: 120, H: 120}
	brand = append(brand, grow(fill(logo, theme.Accent, 28), f, 5, 10, 20, 0.9))
	if s.Label != "" {
		lx, ly := logo.Center()
		mark := text(lx, ly, s.Label, theme.FontFeature, white, true)
		brand = append(brand, grow(mark, f, 5, 10, 20, 0.9))
	}
	title := text(theme.Width/2, 470, s.Title, theme.FontHero, theme.Accent, true)
	brand = append(brand, grow(title, f, 20, 12, 25, 0.95))
	if s.Subtitle != "" {
		sub := text(theme.Width/2, 545, s.Subtitle, theme.FontSubtitle, theme.TextSecondary, false)
		sub.Opacity = interp.Progress(float64(f), 40, 12, interp.Linear)
		sub.Transform = anim.Translate(0, 20*(1-progress(f, 40, 25)))
		brand = append(brand, sub)
	}
	if s.Badge != "" {
		w := float64(len(s.Badge))*11 + 48
		pill := Rect{X: theme.Width/2 - w/2, Y: 600, W: w, H: 44}
		label := text(theme.Width/2, 622, s.Badge, theme.FontLabel, white, true)
		brand = append(brand,
			grow(fill(pill, theme.Accent, 22), f, 60, 12, 25, 0.85),
			grow(label, f, 60, 12, 25, 0.85))
	}
	switch {
	case len(s.Chaos) > 0:
		brand = fade(brand, 1-interp.Progress(float64(f), introBrandOut, introBrandFade, interp.Linear))
	case len(s.Screenshots) > 0:
		brand = fade(brand, 1-interp.Progress(float64(f), introDashboardAt, introDashFade, interp.Linear))
	}
	layers = append(layers, brand...)

	if len(s.Screenshots) > 0 && f >= introDashboardAt {
		r := Rect{X: theme.Width * 0.025, Y: theme.Height * 0.05, W: theme.Width * 0.95, H: theme.Height * 0.9}
		cx, cy := r.Center()
		zoom := anim.ScaleAbout(interp.Lerp(0.92, 1, progress(f, introDashboardAt, introDashGrow)), cx, cy)
		op := interp.Progress(float64(f), introDashboardAt, introDashFade, interp.Linear)
		for _, l := range cardFrame(r, theme.ChromeHeight, shot(s, 0), 1) {
			l.Transform = zoom
			l.Opacity *= op
			layers = append(layers, l)
		}
	}
	return layers
}

// chaosLayers throws one chip per chaos label and draws the cross-out.
func chaosLayers(s Scene, f timebase.Frame) []Layer {
	if len(s.Chaos) == 0 {
		return nil
	}
	st := anim.DefaultChaosThrow(len(s.Chaos), theme.Width, theme.Height).At(f)
	if st.Opacity <= 0 {
		return nil
	}
	var layers []Layer
	for _, c := range st.Cards {
		x, y := c.Pos.X*theme.Width/100, c.Pos.Y*theme.Height/100
		l := newLayer(LayerChip, Rect{X: x, Y: y})
		l.Text = s.Chaos[c.Index]
		l.Size = chipSize
		l.Color = chipPalette[c.Index%len(chipPalette)]
		l.Rotation = c.Rotation
		l.Transform = anim.ScaleAbout(c.Scale, x, y)
		l.Opacity = c.Opacity * st.Opacity
		layers = append(layers, l)
	}
	if st.CrossOut > 0 {
		l := newLayer(LayerStroke, Rect{})
		l.Path = anim.TrimPath(crossOut, st.CrossOut)
		l.Size = strikeWidth
		l.Color = theme.Strike
		l.Opacity = st.CrossOutOpacity * st.Opacity
		layers = append(layers, l)
	}
	return layers
}

func featureLayers(s Scene, f timebase.Frame) []Layer {
	var layers []Layer
	if s.Layout != LayoutFullscreen {
		layers = titleLayers(s, f, 120)
	}
	return append(layers, showcase(s, f, contentRect())...)
}

func sectionLayers(s Scene, f timebase.Frame) []Layer {
	w := anim.WordStagger{Text: s.Title}
	if s.Dramatic {
		w.Delay = 5
		w.WordDuration = 12
	}
	return []Layer{words(theme.Width/2, theme.Height/2, w.At(f), theme.FontSection, theme.Text)}
}

func finaleLayers(s Scene, f timebase.Frame) []Layer {
	var layers []Layer
	if s.Badge != "" {
		op := progress(f, 10, theme.TransitionFade)
		pill := fill(Rect{X: theme.Width/2 - 120, Y: 70, W: 240, H: 44}, theme.Accent, 22)
		label := text(theme.Width/2, 92, s.Badge, theme.FontLabel, white, true)
		layers = append(layers, fade([]Layer{pill, label}, op)...)
	}
	if s.Title != "" {
		op := progress(f, 15, theme.TransitionFade)
		title := text(theme.Width/2, 170, s.Title, theme.FontFeature, theme.Text, true)
		title.Opacity = op
		layers = append(layers, title)
		if s.Subtitle != "" {
			sub := text(theme.Width/2, 220, s.Subtitle, theme.FontSubtitle, theme.TextSecondary, false)
			sub.Opacity = op
			layers = append(layers, sub)
		}
	}
	content := showcase(s, f, contentRect())
	return append(layers, fade(content, progress(f, 0, finaleFadeIn))...)
}

func stackLayers(s Scene, f timebase.Frame) []Layer {
	top := anim.WordStagger{Text: s.Title, WordDuration: 8, Stagger: 2}
	second := anim.WordStagger{Text: s.Subtitle, Delay: 3, WordDuration: 8, Stagger: 2}
	layers := []Layer{words(theme.Width/2, 170, top.At(f), theme.FontHero, theme.Text)}
	if s.Subtitle != "" {
		layers = append(layers, words(theme.Width/2, 270, second.At(f), 64, theme.Accent))
	}

	stack := anim.DefaultCardStack(len(s.Screenshots))
	so := stack.StackOpacity(f)
	for _, c := range stack.At(f) {
		if c.Opacity <= 0 {
			continue
		}
		r := Rect{X: theme.Width/2 - cardWidth/2, Y: cardStackTop + c.Y, W: cardWidth, H: cardHeight}
		cx, cy := r.Center()
		t := anim.ScaleAbout(c.Scale, cx, cy)
		for _, l := range cardFrame(r, cardChrome, shot(s, c.Index), 1) {
			l.Transform = t
			l.Opacity *= c.Opacity * so
			layers = append(layers, l)
		}
	}
	return layers
}

func outroLayers(s Scene, f timebase.Frame) []Layer {
	var layers []Layer
	add := func(l Layer, start, dur float64) {
		l.Opacity *= progress(f, start, dur)
		layers = append(layers, l)
	}
	if s.Label != "" {
		add(text(theme.Width/2, 330, s.Label, theme.FontFeature, theme.Accent, true), 15, 15)
	}
	add(text(theme.Width/2, 460, s.Title, theme.FontHero, theme.Text, true), 25, 20)
	if s.Subtitle != "" {
		add(text(theme.Width/2, 560, s.Subtitle, theme.FontSubtitle, theme.TextSecondary, false), 40, 20)
	}
	if s.CTA != "" {
		add(fill(Rect{X: theme.Width/2 - 160, Y: 640, W: 320, H: 64}, theme.Accent, 32), 60, 15)
		add(text(theme.Width/2, 672, s.CTA, theme.FontSubtitle, white, true), 60, 15)
	}
	if s.URL != "" {
		qr := newLayer(LayerQR, Rect{X: theme.Width - 260, Y: theme.Height - 260, W: 180, H: 180})
		qr.Text = s.URL
		qr.Color = theme.Text
		add(qr, 60, 15)
	}

	slide := interp.Interpolate(float64(f), []float64{0, outroSlide}, []float64{theme.Height, 0}, interp.Clamped(interp.Material))
	for i := range layers {
		layers[i].Transform = layers[i].Transform.Then(anim.Translate(0, slide))
	}
	return layers
}
