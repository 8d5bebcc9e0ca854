// Package theme holds the visual constants shared by scene layouts and the
// compositor.
package theme

import "image/color"

// Reference canvas. Layouts are computed at this size and scaled by the
// compositor to the output resolution.
const (
	Width  = 1920
	Height = 1080
)

var (
	Background    = color.RGBA{0xF8, 0xF8, 0xF8, 0xFF}
	DotGrid       = color.RGBA{0xE0, 0xDD, 0xD8, 0xFF}
	Text          = color.RGBA{0x1A, 0x1A, 0x1A, 0xFF}
	TextSecondary = color.RGBA{0x6B, 0x72, 0x80, 0xFF}
	Accent        = color.RGBA{0x00, 0x43, 0x6E, 0xFF}
	AccentLight   = color.RGBA{0x8B, 0xBD, 0xC7, 0xFF}
	Card          = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Chrome        = color.RGBA{0xEE, 0xEC, 0xE8, 0xFF}
	Shadow        = color.RGBA{0x00, 0x00, 0x00, 0x22}
	Strike        = color.RGBA{0xEF, 0x44, 0x44, 0xFF}
)

// Font sizes in reference pixels.
const (
	FontHero     = 80
	FontSection  = 72
	FontFeature  = 48
	FontSubtitle = 24
	FontLabel    = 18
)

// Transition durations in frames.
const (
	TransitionFade  = 15
	TransitionSlide = 18
	TransitionScale = 21
)

// Screenshot frame used by feature scenes.
const (
	ContentX      = 240
	ContentY      = 250
	ContentW      = 1440
	ContentH      = 770
	ChromeHeight  = 36
	CornerRadius  = 16
	CursorSize    = 32
	PaginationY   = 1050
	DotRadius     = 1.2
	PaginationDot = 5
)
