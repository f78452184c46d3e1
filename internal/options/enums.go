package options

import (
	"fmt"
	"strings"

	"github.com/dshills/lineconf/internal/errs"
)

// EditMode selects the stock key bindings.
type EditMode uint8

const (
	// EditModeWindows uses Windows console style bindings.
	EditModeWindows EditMode = iota

	// EditModeEmacs uses Emacs style bindings.
	EditModeEmacs

	numEditModes
)

var editModeNames = [numEditModes]string{"Windows", "Emacs"}

// String returns the mode name.
func (m EditMode) String() string {
	if m >= numEditModes {
		return fmt.Sprintf("EditMode(%d)", m)
	}
	return editModeNames[m]
}

// Valid reports whether m is a known mode.
func (m EditMode) Valid() bool { return m < numEditModes }

// ParseEditMode resolves a mode name, case-insensitively.
func ParseEditMode(s string) (EditMode, error) {
	i, err := parseEnum(s, editModeNames[:], "edit mode")
	return EditMode(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (m EditMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *EditMode) UnmarshalText(b []byte) error {
	v, err := ParseEditMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// BellStyle controls how Ding signals the user.
type BellStyle uint8

const (
	// BellNone does nothing.
	BellNone BellStyle = iota

	// BellVisual flashes the input.
	BellVisual

	// BellAudible sounds a tone.
	BellAudible

	numBellStyles
)

var bellStyleNames = [numBellStyles]string{"None", "Visual", "Audible"}

// String returns the style name.
func (b BellStyle) String() string {
	if b >= numBellStyles {
		return fmt.Sprintf("BellStyle(%d)", b)
	}
	return bellStyleNames[b]
}

// Valid reports whether b is a known style.
func (b BellStyle) Valid() bool { return b < numBellStyles }

// ParseBellStyle resolves a style name, case-insensitively.
func ParseBellStyle(s string) (BellStyle, error) {
	i, err := parseEnum(s, bellStyleNames[:], "bell style")
	return BellStyle(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (b BellStyle) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BellStyle) UnmarshalText(text []byte) error {
	v, err := ParseBellStyle(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// HistorySaveStyle controls when the history log is written.
type HistorySaveStyle uint8

const (
	// SaveIncrementally appends each accepted line.
	SaveIncrementally HistorySaveStyle = iota

	// SaveAtExit writes the history when the session ends.
	SaveAtExit

	// SaveNothing never writes history.
	SaveNothing

	numSaveStyles
)

var saveStyleNames = [numSaveStyles]string{"SaveIncrementally", "SaveAtExit", "SaveNothing"}

// String returns the style name.
func (h HistorySaveStyle) String() string {
	if h >= numSaveStyles {
		return fmt.Sprintf("HistorySaveStyle(%d)", h)
	}
	return saveStyleNames[h]
}

// Valid reports whether h is a known style.
func (h HistorySaveStyle) Valid() bool { return h < numSaveStyles }

// ParseHistorySaveStyle resolves a style name, case-insensitively.
func ParseHistorySaveStyle(s string) (HistorySaveStyle, error) {
	i, err := parseEnum(s, saveStyleNames[:], "history save style")
	return HistorySaveStyle(i), err
}

// MarshalText implements encoding.TextMarshaler.
func (h HistorySaveStyle) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HistorySaveStyle) UnmarshalText(text []byte) error {
	v, err := ParseHistorySaveStyle(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func parseEnum(s string, names []string, what string) (int, error) {
	t := strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(t, n) {
			return i, nil
		}
	}
	return 0, errs.NewParseError(s, "", "unknown "+what)
}
