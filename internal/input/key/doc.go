// Package key provides key press descriptors and the chord parser.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: The modifier set {Ctrl, Alt, Shift}
//   - Event: A single key press with its modifiers
//   - Chord: One or more key presses bound as a unit
//
// # Chord Specifications
//
// Key presses are written as modifiers and a key joined with "+", and
// multi-key chords join key presses with ",":
//
//   - Simple keys: "a", "Enter", "Escape", "F13", "Spacebar"
//   - With modifiers: "Ctrl+r", "Alt+F4", "Ctrl+Shift+Tab"
//   - Sequences: "Ctrl+x,Ctrl+e", "Escape,b"
//   - Separator keys: "Ctrl++" or "Ctrl+Plus", "Alt+," or "Alt+Comma"
//
// Parsing is case-insensitive and modifier-order-insensitive; parsed chords
// are normalized so that equal key presses compare equal with ==.
package key
