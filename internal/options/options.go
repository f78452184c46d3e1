// Package options holds the line editor's tunable settings and the merge
// that applies a sparse Update to them.
package options

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/lineconf/internal/palette"
)

// AddToHistoryFunc decides whether an accepted line is recorded in history.
type AddToHistoryFunc func(line string) bool

// ValidationFunc checks an accepted line. A non-nil error keeps the line
// in the buffer and is shown to the user.
type ValidationFunc func(line string) error

// Compiled-in defaults.
const (
	DefaultContinuationPrompt   = ">>> "
	DefaultMaximumHistoryCount  = 1024
	DefaultMaximumKillRingCount = 10
	DefaultDingTone             = 1221
	DefaultDingDuration         = 50 * time.Millisecond
	DefaultCompletionQueryItems = 100

	// DefaultWordDelimiters includes the en dash, em dash and horizontal bar.
	DefaultWordDelimiters = ";:,.[]{}()/\\|^&*-=+–—―"
)

// Configuration is the aggregate of every editor setting. Values are
// replaced wholesale by Apply; a Configuration obtained from a Store must
// be treated as read-only.
type Configuration struct {
	EditMode EditMode

	// ContinuationPrompt is shown before each additional line of input.
	// Its colors live in Palette.ContinuationPrompt.
	ContinuationPrompt   string
	ExtraPromptLineCount int

	// AddToHistoryHandler filters lines before they are added to history.
	// Nil records every line.
	AddToHistoryHandler AddToHistoryFunc

	// ValidationHandler checks lines before they are accepted. Nil accepts
	// every line.
	ValidationHandler ValidationFunc

	HistoryNoDuplicates           bool
	MaximumHistoryCount           int
	MaximumKillRingCount          int
	HistorySearchCursorMovesToEnd bool
	HistorySearchCaseSensitive    bool
	HistorySavePath               string
	HistorySaveStyle              HistorySaveStyle

	ShowToolTips bool

	DingTone     int
	DingDuration time.Duration
	BellStyle    BellStyle

	CompletionQueryItems int
	WordDelimiters       string

	Palette palette.Palette
}

// Defaults returns the compiled-in configuration for the named host.
func Defaults(host string) Configuration {
	return DefaultsWithTerminal(host, palette.DefaultTerminal)
}

// DefaultsWithTerminal is Defaults for a terminal with the given default
// colors.
func DefaultsWithTerminal(host string, term palette.Pair) Configuration {
	return Configuration{
		EditMode:             EditModeWindows,
		ContinuationPrompt:   DefaultContinuationPrompt,
		MaximumHistoryCount:  DefaultMaximumHistoryCount,
		MaximumKillRingCount: DefaultMaximumKillRingCount,
		HistorySavePath:      DefaultHistorySavePath(host),
		HistorySaveStyle:     SaveIncrementally,
		DingTone:             DefaultDingTone,
		DingDuration:         DefaultDingDuration,
		BellStyle:            BellAudible,
		CompletionQueryItems: DefaultCompletionQueryItems,
		WordDelimiters:       DefaultWordDelimiters,
		Palette:              palette.Defaults(term),
	}
}

// DefaultHistorySavePath returns <user config dir>/lineconf/<host>_history.txt.
func DefaultHistorySavePath(host string) string {
	if host == "" {
		host = "lineconf"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lineconf", host+"_history.txt")
}

// IsWordDelimiter reports whether r separates words. Whitespace always
// does.
func (c *Configuration) IsWordDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return strings.ContainsRune(c.WordDelimiters, r)
}

// HistoryEqual compares two history lines honouring
// HistorySearchCaseSensitive.
func (c *Configuration) HistoryEqual(a, b string) bool {
	if c.HistorySearchCaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// HistoryHasPrefix reports whether line starts with prefix, honouring
// HistorySearchCaseSensitive.
func (c *Configuration) HistoryHasPrefix(line, prefix string) bool {
	if len(prefix) > len(line) {
		return false
	}
	return c.HistoryEqual(line[:len(prefix)], prefix)
}
