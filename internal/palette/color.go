package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/lineconf/internal/errs"
)

// Color is one of the sixteen console colors.
type Color uint8

// Console colors, in the classic console order.
const (
	Black Color = iota
	DarkBlue
	DarkGreen
	DarkCyan
	DarkRed
	DarkMagenta
	DarkYellow
	Gray
	DarkGray
	Blue
	Green
	Cyan
	Red
	Magenta
	Yellow
	White

	numColors
)

var colorNames = [numColors]string{
	"Black", "DarkBlue", "DarkGreen", "DarkCyan", "DarkRed", "DarkMagenta", "DarkYellow", "Gray",
	"DarkGray", "Blue", "Green", "Cyan", "Red", "Magenta", "Yellow", "White",
}

// Reference RGB values used to snap hex colors to the console palette.
var colorRGB = [numColors]string{
	"#000000", "#000080", "#008000", "#008080", "#800000", "#800080", "#808000", "#c0c0c0",
	"#808080", "#0000ff", "#00ff00", "#00ffff", "#ff0000", "#ff00ff", "#ffff00", "#ffffff",
}

// ANSI palette index for each console color.
var ansiIndex = [numColors]int{0, 4, 2, 6, 1, 5, 3, 7, 8, 12, 10, 14, 9, 13, 11, 15}

// Valid reports whether c is one of the sixteen console colors.
func (c Color) Valid() bool {
	return c < numColors
}

// String returns the console color name.
func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", c)
	}
	return colorNames[c]
}

// TCell returns the terminal palette color for c.
func (c Color) TCell() tcell.Color {
	if !c.Valid() {
		return tcell.ColorDefault
	}
	return tcell.PaletteColor(ansiIndex[c])
}

// ANSI returns the ANSI palette index (0-15) for c, or -1 if c is invalid.
func (c Color) ANSI() int {
	if !c.Valid() {
		return -1
	}
	return ansiIndex[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a color specification. Accepted forms are a console
// color name ("DarkCyan", case-insensitive), a console color number 0-15,
// or "#rrggbb", which is snapped to the nearest console color.
func ParseColor(spec string) (Color, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, errs.NewParseError(spec, "", "empty color specification")
	}

	for i, name := range colorNames {
		if strings.EqualFold(s, name) {
			return Color(i), nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= int(numColors) {
			return 0, errs.NewParseError(spec, s, "color number out of range")
		}
		return Color(n), nil
	}

	if strings.HasPrefix(s, "#") {
		target, err := colorful.Hex(s)
		if err != nil {
			return 0, &errs.ParseError{Input: spec, Message: "malformed hex color", Err: err}
		}
		return nearest(target), nil
	}

	return 0, errs.NewParseError(spec, s, "unknown color")
}

// nearest returns the console color closest to target in Lab space.
func nearest(target colorful.Color) Color {
	best := Black
	bestDist := -1.0
	for i, hex := range colorRGB {
		ref, _ := colorful.Hex(hex)
		d := target.DistanceLab(ref)
		if bestDist < 0 || d < bestDist {
			best, bestDist = Color(i), d
		}
	}
	return best
}
