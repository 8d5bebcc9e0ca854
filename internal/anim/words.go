package anim

import (
	"strings"

	"github.com/ivlev/promoreel/internal/interp"
	"github.com/ivlev/promoreel/internal/timebase"
)

const (
	DefaultWordDuration timebase.Frame = 10
	DefaultWordStagger  timebase.Frame = 3

	wordRise       = 20.0
	wordStartScale = 0.95

	subtitleLead     timebase.Frame = 8
	subtitleDuration timebase.Frame = 12
	subtitleRise                    = 15.0
)

// WordStagger reveals the words of Text one after another. Zero durations
// take the defaults.
type WordStagger struct {
	Text         string
	Delay        timebase.Frame
	WordDuration timebase.Frame
	Stagger      timebase.Frame
}

// WordState is the per-word visual state.
type WordState struct {
	Word       string
	Index      int
	Opacity    float64
	TranslateY float64
	Scale      float64
}

func (w WordStagger) normalized() WordStagger {
	if w.WordDuration <= 0 {
		w.WordDuration = DefaultWordDuration
	}
	if w.Stagger <= 0 {
		w.Stagger = DefaultWordStagger
	}
	return w
}

// Words splits Text on whitespace.
func (w WordStagger) Words() []string { return strings.Fields(w.Text) }

// WordStart is the first frame of word i.
func (w WordStagger) WordStart(i int) timebase.Frame {
	w = w.normalized()
	return w.Delay + timebase.Frame(i)*w.Stagger
}

// Duration is the frame at which the last word has fully arrived.
func (w WordStagger) Duration() timebase.Frame {
	n := len(w.Words())
	if n == 0 {
		return w.Delay
	}
	w = w.normalized()
	return w.WordStart(n-1) + w.WordDuration
}

// At evaluates every word at local frame f.
func (w WordStagger) At(f timebase.Frame) []WordState {
	w = w.normalized()
	words := w.Words()
	states := make([]WordState, len(words))
	for i, word := range words {
		p := interp.Progress(float64(f), float64(w.WordStart(i)), float64(w.WordDuration), interp.Material)
		states[i] = WordState{
			Word:       word,
			Index:      i,
			Opacity:    p,
			TranslateY: interp.Lerp(wordRise, 0, p),
			Scale:      interp.Lerp(wordStartScale, 1, p),
		}
	}
	return states
}

// FeatureTitle is a staggered title followed by a subtitle that fades in
// once every word has started.
type FeatureTitle struct {
	Title    WordStagger
	Subtitle string
}

// TitleState is the evaluated FeatureTitle.
type TitleState struct {
	Words           []WordState
	SubtitleOpacity float64
	SubtitleY       float64
}

// SubtitleStart is the first frame of the subtitle fade.
func (t FeatureTitle) SubtitleStart() timebase.Frame {
	w := t.Title.normalized()
	return w.Delay + timebase.Frame(len(w.Words()))*w.Stagger + subtitleLead
}

// At evaluates the title at local frame f.
func (t FeatureTitle) At(f timebase.Frame) TitleState {
	st := TitleState{Words: t.Title.At(f)}
	if t.Subtitle == "" {
		return st
	}
	p := interp.Progress(float64(f), float64(t.SubtitleStart()), float64(subtitleDuration), interp.Material)
	st.SubtitleOpacity = p
	st.SubtitleY = interp.Lerp(subtitleRise, 0, p)
	return st
}
