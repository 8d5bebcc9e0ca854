// Package preview is a terminal scrubber over a compiled timeline. It shows
// the scene layout, the active scene and the audio sounding at the playhead
// without rendering any pixels.
package preview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/promoreel/internal/timebase"
	"github.com/ivlev/promoreel/internal/timeline"
)

// jump is the shift+arrow step: one second.
const jump timebase.Frame = timebase.FPS

// Model is the scrubber state.
type Model struct {
	Timeline *timeline.Timeline
	Frame    timebase.Frame
	Playing  bool
}

// Seek moves the playhead by delta frames, clamped to the timeline.
func (m *Model) Seek(delta timebase.Frame) {
	m.Frame = max(0, min(m.Frame+delta, m.Timeline.Total-1))
}

// Tick advances playback by one frame and stops at the last one.
func (m *Model) Tick() {
	if !m.Playing {
		return
	}
	if m.Frame >= m.Timeline.Total-1 {
		m.Playing = false
		return
	}
	m.Frame++
}

// HandleKey applies a key press and reports whether the user asked to quit.
func (m *Model) HandleKey(ev *tcell.EventKey) bool {
	step := timebase.Frame(1)
	if ev.Modifiers()&tcell.ModShift != 0 {
		step = jump
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		m.Seek(-step)
	case tcell.KeyRight:
		m.Seek(step)
	case tcell.KeyHome:
		m.Frame = 0
	case tcell.KeyEnd:
		m.Frame = m.Timeline.Total - 1
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			m.Playing = !m.Playing
		case 'h':
			m.Seek(-1)
		case 'l':
			m.Seek(1)
		case 'H':
			m.Seek(-jump)
		case 'L':
			m.Seek(jump)
		}
	}
	return false
}

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleScenes = [2]tcell.Style{
		tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite),
		tcell.StyleDefault.Background(tcell.ColorDarkCyan).Foreground(tcell.ColorBlack),
	}
)

func put(s tcell.Screen, x, y int, text string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// column maps frame f onto a bar of width w.
func column(f, total timebase.Frame, w int) int {
	if total <= 0 || w <= 0 {
		return 0
	}
	return min(int(int64(f)*int64(w)/int64(total)), w-1)
}

// Draw paints the model onto the screen.
func Draw(s tcell.Screen, m *Model) {
	s.Clear()
	w, h := s.Size()
	tl := m.Timeline

	state := "paused"
	if m.Playing {
		state = "playing"
	}
	put(s, 0, 0, fmt.Sprintf("%s / %s  frame %d/%d  [%s]",
		m.Frame.Timecode(tl.FPS), tl.Total.Timecode(tl.FPS), m.Frame, tl.Total, state), styleHead)

	// Scene bar: each slot gets an alternating band labelled with its ID.
	for i, slot := range tl.Slots {
		from := column(slot.Start, tl.Total, w)
		to := column(slot.End(), tl.Total, w)
		if slot.End() >= tl.Total {
			to = w
		}
		label := []rune(slot.Scene.ID)
		for x := from; x < to; x++ {
			r := ' '
			if k := x - from; k < len(label) && to-from > len(label) {
				r = label[k]
			}
			s.SetContent(x, 2, r, nil, styleScenes[i%2])
		}
	}
	put(s, column(m.Frame, tl.Total, w), 3, "^", styleHead)

	if slot, local, ok := tl.SceneAt(m.Frame); ok {
		put(s, 0, 5, fmt.Sprintf("scene  %s (%s)  %d/%d", slot.Scene.ID, slot.Scene.Kind, local, slot.Scene.Duration), styleText)
		if title := slot.Scene.Title; title != "" {
			put(s, 7, 6, title, styleDim)
		}
	} else {
		put(s, 0, 5, "scene  -", styleDim)
	}

	row := 8
	put(s, 0, row, "audio", styleText)
	sounding := tl.AudioAt(m.Frame)
	if len(sounding) == 0 {
		put(s, 7, row, "-", styleDim)
	}
	for _, a := range sounding {
		if row >= h-2 {
			break
		}
		put(s, 7, row, fmt.Sprintf("%-5s %-24s %3.0f%%  @%s",
			a.Track.Kind, a.Track.ID, a.Volume*100, a.Offset.Timecode(tl.FPS)), styleText)
		row++
	}

	help := "←/→ frame  shift ±1s  home/end  space play  q quit"
	put(s, 0, h-1, help, styleDim)
	s.Show()
}

// Run drives the scrubber until the user quits or ctx ends. The caller owns
// the screen: Init before, Fini after.
func Run(ctx context.Context, s tcell.Screen, tl *timeline.Timeline) error {
	if tl.Total <= 0 {
		return fmt.Errorf("timeline is empty")
	}
	m := &Model{Timeline: tl}

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	fps := tl.FPS
	if fps <= 0 {
		fps = timebase.FPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	Draw(s, m)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !m.Playing {
				continue
			}
			m.Tick()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if m.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				s.Sync()
			}
		}
		Draw(s, m)
	}
}

// Summary is a plain-text outline of the timeline for non-interactive output.
func Summary(tl *timeline.Timeline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d frames (%s) at %d fps\n", tl.Total, tl.Total.Timecode(tl.FPS), tl.FPS)
	for _, slot := range tl.Slots {
		fmt.Fprintf(&b, "  %-6d %-8s %-20s %d\n", slot.Start, slot.Scene.Kind, slot.Scene.ID, slot.Scene.Duration)
	}
	for _, tr := range tl.Tracks {
		fmt.Fprintf(&b, "  %-6d %-8s %-20s %d\n", tr.Start, tr.Kind, tr.ID, tr.Duration)
	}
	return b.String()
}
