package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette hex values shared by the icon generator, the popup and the
// terminal surface.
const (
	hexBackground = "#ffffff"
	hexHeader     = "#2d2d2d"
	hexLabel      = "#505050"
	hexMuted      = "#8c8c8c"
	hexGreen      = "#228b22"
	hexYellow     = "#c89600"
	hexRed        = "#c82828"
	hexSeparator  = "#dcdcdc"

	// The yellow icon is a brighter goldenrod than the yellow text, with
	// dark foreground for contrast.
	hexIconYellow = "#daa520"
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	ColorBackground = mustHex(hexBackground)
	ColorHeader     = mustHex(hexHeader)
	ColorLabel      = mustHex(hexLabel)
	ColorMuted      = mustHex(hexMuted)
	ColorSeparator  = mustHex(hexSeparator)
	// ColorBarTrack is the unfilled part of a progress bar.
	ColorBarTrack = ColorMuted.BlendLab(ColorBackground, 0.8).Clamped()
)

// LevelColor is the popup text/bar color for a level.
func LevelColor(l Level) colorful.Color {
	switch l {
	case LevelGreen:
		return mustHex(hexGreen)
	case LevelYellow:
		return mustHex(hexYellow)
	case LevelRed:
		return mustHex(hexRed)
	default:
		return ColorMuted
	}
}

// TcellColor converts a palette color for the terminal surface.
func TcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Tag returns a tview dynamic color tag such as "[#228b22]".
func Tag(c colorful.Color) string {
	return "[" + c.Hex() + "]"
}
