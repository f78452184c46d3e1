package key

import "strings"

// ChordSeparator separates the key presses of a multi-key chord.
const ChordSeparator = ","

// ModifierSeparator separates modifiers from each other and from the key.
const ModifierSeparator = "+"

// Chord is an ordered, non-empty series of key presses bound as a unit.
// Examples: "Ctrl+r", "Ctrl+x,Ctrl+e".
type Chord struct {
	// Events contains the key presses in order.
	Events []Event
}

// NewChord creates a chord from the given events.
func NewChord(events ...Event) Chord {
	return Chord{Events: events}
}

// Len returns the number of key presses in the chord.
func (c Chord) Len() int {
	return len(c.Events)
}

// IsEmpty returns true if the chord has no key presses.
func (c Chord) IsEmpty() bool {
	return len(c.Events) == 0
}

// First returns the first event, or nil if empty.
func (c Chord) First() *Event {
	if len(c.Events) == 0 {
		return nil
	}
	return &c.Events[0]
}

// String returns the canonical chord specification.
func (c Chord) String() string {
	parts := make([]string, len(c.Events))
	for i, e := range c.Events {
		parts[i] = e.String()
	}
	return strings.Join(parts, ChordSeparator)
}

// Equals returns true if two chords consist of the same key presses.
func (c Chord) Equals(other Chord) bool {
	if len(c.Events) != len(other.Events) {
		return false
	}
	for i, e := range c.Events {
		if e != other.Events[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this chord starts with the given prefix.
func (c Chord) HasPrefix(prefix Chord) bool {
	if len(prefix.Events) > len(c.Events) {
		return false
	}
	for i, e := range prefix.Events {
		if e != c.Events[i] {
			return false
		}
	}
	return true
}

// Append returns a new chord with the event added at the end.
func (c Chord) Append(e Event) Chord {
	events := make([]Event, len(c.Events), len(c.Events)+1)
	copy(events, c.Events)
	return Chord{Events: append(events, e)}
}

// Clone returns a copy of the chord.
func (c Chord) Clone() Chord {
	events := make([]Event, len(c.Events))
	copy(events, c.Events)
	return Chord{Events: events}
}

// ParseChord parses a chord specification such as "Ctrl+x,Ctrl+e".
// Every key press is normalized, so "ctrl+R" and "Ctrl+r" parse to equal
// chords.
func ParseChord(spec string) (Chord, error) {
	segments, err := splitChord(spec)
	if err != nil {
		return Chord{}, err
	}

	events := make([]Event, 0, len(segments))
	for _, seg := range segments {
		event, err := parseSegment(spec, seg)
		if err != nil {
			return Chord{}, err
		}
		events = append(events, event)
	}
	return Chord{Events: events}, nil
}

// MustParseChord parses a chord and panics on error.
// Use only for known-valid chords in initialization code.
func MustParseChord(spec string) Chord {
	c, err := ParseChord(spec)
	if err != nil {
		panic("invalid chord: " + spec + ": " + err.Error())
	}
	return c
}

// NormalizeChord parses and re-formats a chord to its canonical form.
func NormalizeChord(spec string) (string, error) {
	c, err := ParseChord(spec)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
