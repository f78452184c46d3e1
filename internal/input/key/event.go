package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Event describes a single key press: a key and the modifiers held with it.
// Events are comparable with == and are safe to use as map keys.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events. Letters are always stored
	// in lower case; Shift is carried in Modifiers.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
// Upper case letters are folded to lower case.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      unicode.ToLower(r),
		Modifiers: mods,
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if Ctrl or Alt is held. Shift alone on a
// character is treated as typing, not as a modified key.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt) != 0
	}
	return e.Modifiers != ModNone
}

// IsSpecial returns true if this is a special (non-character) key.
func (e Event) IsSpecial() bool {
	return e.Key.IsSpecial()
}

// KeyName returns the canonical name of the key without modifiers.
func (e Event) KeyName() string {
	if e.Key != KeyRune {
		return e.Key.String()
	}
	switch e.Rune {
	case ' ':
		return "Spacebar"
	case '+':
		return "Plus"
	case ',':
		return "Comma"
	}
	return string(e.Rune)
}

// String returns the canonical form, e.g. "Ctrl+Alt+x", "Shift+Tab", "F5".
// The result parses back to an equal Event.
func (e Event) String() string {
	if e.Modifiers.IsEmpty() {
		return e.KeyName()
	}
	return e.Modifiers.String() + "+" + e.KeyName()
}

// Text returns the text a character event inserts, honouring Shift for
// letters. Special keys and Ctrl/Alt combinations insert nothing.
func (e Event) Text() string {
	if !e.IsChar() || e.IsModified() {
		return ""
	}
	if e.Modifiers.HasShift() {
		return string(unicode.ToUpper(e.Rune))
	}
	return string(e.Rune)
}

// Equals returns true if two events represent the same key press.
func (e Event) Equals(other Event) bool {
	return e == other
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}

// IsEscape returns true if this is the Escape key (with no modifiers).
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key (with no modifiers).
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// WithModifier returns a copy with the specified modifier added.
func (e Event) WithModifier(mod Modifier) Event {
	e.Modifiers = e.Modifiers.With(mod)
	return e
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, strings.ReplaceAll(e.Modifiers.String(), "+", "|"))
}
