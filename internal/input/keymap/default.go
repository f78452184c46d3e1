package keymap

import (
	"fmt"
	"strings"
)

// DefaultBinding pairs a chord with a built-in function name.
type DefaultBinding struct {
	Chord    string
	Function string
}

// Edit mode names understood by DefaultBindings.
const (
	ModeWindows = "Windows"
	ModeEmacs   = "Emacs"
)

var windowsBindings = []DefaultBinding{
	{"Enter", "AcceptLine"},
	{"Shift+Enter", "AddLine"},
	{"Escape", "RevertLine"},
	{"LeftArrow", "BackwardChar"},
	{"RightArrow", "ForwardChar"},
	{"Ctrl+LeftArrow", "BackwardWord"},
	{"Ctrl+RightArrow", "ForwardWord"},
	{"Home", "BeginningOfLine"},
	{"End", "EndOfLine"},
	{"Backspace", "BackwardDeleteChar"},
	{"Delete", "DeleteChar"},
	{"Ctrl+Home", "BackwardKillLine"},
	{"Ctrl+End", "KillLine"},
	{"Ctrl+v", "Yank"},
	{"Ctrl+c", "Abort"},
}

var emacsBindings = []DefaultBinding{
	{"Enter", "AcceptLine"},
	{"Shift+Enter", "AddLine"},
	{"Ctrl+a", "BeginningOfLine"},
	{"Ctrl+e", "EndOfLine"},
	{"Ctrl+b", "BackwardChar"},
	{"Ctrl+f", "ForwardChar"},
	{"LeftArrow", "BackwardChar"},
	{"RightArrow", "ForwardChar"},
	{"Alt+b", "BackwardWord"},
	{"Alt+f", "ForwardWord"},
	{"Ctrl+d", "DeleteChar"},
	{"Ctrl+h", "BackwardDeleteChar"},
	{"Backspace", "BackwardDeleteChar"},
	{"Ctrl+k", "KillLine"},
	{"Ctrl+u", "BackwardKillLine"},
	{"Ctrl+y", "Yank"},
	{"Ctrl+g", "Abort"},
	{"Alt+r", "RevertLine"},
	{"Escape,r", "RevertLine"},
	{"Escape,b", "BackwardWord"},
	{"Escape,f", "ForwardWord"},
}

// DefaultBindings returns the stock bindings for an edit mode.
func DefaultBindings(mode string) ([]DefaultBinding, error) {
	switch {
	case strings.EqualFold(mode, ModeWindows):
		return windowsBindings, nil
	case strings.EqualFold(mode, ModeEmacs):
		return emacsBindings, nil
	default:
		return nil, fmt.Errorf("no default bindings for edit mode %q", mode)
	}
}

// LoadDefaults replaces every binding in t with the stock bindings for mode.
// The new table is built aside and swapped in whole. Bindings that share a
// function are bound in one call so they are listed together.
func LoadDefaults(t *Table, mode string) error {
	defaults, err := DefaultBindings(mode)
	if err != nil {
		return err
	}

	var order []string
	byFunction := make(map[string][]string)
	for _, d := range defaults {
		if _, ok := byFunction[d.Function]; !ok {
			order = append(order, d.Function)
		}
		byFunction[d.Function] = append(byFunction[d.Function], d.Chord)
	}

	staged := t.Staging()
	for _, fn := range order {
		if _, err := staged.Bind(byFunction[fn], Function(fn)); err != nil {
			return fmt.Errorf("loading %s bindings: %w", mode, err)
		}
	}
	t.Replace(staged)
	return nil
}
