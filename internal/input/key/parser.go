package key

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/lineconf/internal/errs"
)

// Parse errors, available through errors.Is on the returned *errs.ParseError.
var (
	ErrEmptySpec         = errors.New("empty key specification")
	ErrUnknownKey        = errors.New("unknown key")
	ErrUnknownModifier   = errors.New("unknown modifier")
	ErrDuplicateModifier = errors.New("duplicate modifier")
)

// Parse parses a single key press such as "a", "Enter", "Ctrl+Shift+F5" or
// "Alt+Plus". Use ParseChord for multi-key sequences.
//
// Modifiers may appear in any order and any case; the key must come last.
func Parse(spec string) (Event, error) {
	return parseSegment(spec, spec)
}

func parseErr(input, segment string, cause error) error {
	return &errs.ParseError{Input: input, Segment: segment, Message: cause.Error(), Err: cause}
}

// splitChord splits a chord specification on the chord separator. A comma
// that starts a segment or directly follows a modifier separator is the
// comma key itself, so "Ctrl+," and "," parse as expected.
func splitChord(spec string) ([]string, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, parseErr(spec, "", ErrEmptySpec)
	}

	var segments []string
	var cur strings.Builder
	for _, r := range spec {
		if r == ',' {
			text := strings.TrimSpace(cur.String())
			if text != "" && !strings.HasSuffix(text, ModifierSeparator) {
				segments = append(segments, text)
				cur.Reset()
				continue
			}
		}
		cur.WriteRune(r)
	}

	last := strings.TrimSpace(cur.String())
	if last == "" {
		return nil, parseErr(spec, "", ErrEmptySpec)
	}
	return append(segments, last), nil
}

// parseSegment parses one key press of a chord.
func parseSegment(input, segment string) (Event, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return Event{}, parseErr(input, segment, ErrEmptySpec)
	}

	keyPart, modPart, hasMods := splitKey(segment)
	if keyPart == "" {
		return Event{}, parseErr(input, segment, ErrEmptySpec)
	}

	var mods Modifier
	if hasMods {
		for _, name := range strings.Split(modPart, ModifierSeparator) {
			mod := ModifierFromName(name)
			if mod == ModNone {
				return Event{}, parseErr(input, strings.TrimSpace(name), ErrUnknownModifier)
			}
			if mods.Has(mod) {
				return Event{}, parseErr(input, strings.TrimSpace(name), ErrDuplicateModifier)
			}
			mods = mods.With(mod)
		}
	}

	return parseKeyWithModifiers(input, keyPart, mods)
}

// splitKey separates the trailing key name from the leading modifiers.
// A trailing "++" means the plus key.
func splitKey(segment string) (keyPart, modPart string, hasMods bool) {
	if segment == ModifierSeparator {
		return segment, "", false
	}
	if strings.HasSuffix(segment, "++") {
		return ModifierSeparator, segment[:len(segment)-2], true
	}
	idx := strings.LastIndex(segment, ModifierSeparator)
	if idx < 0 {
		return segment, "", false
	}
	return strings.TrimSpace(segment[idx+1:]), segment[:idx], true
}

// parseKeyWithModifiers resolves a key name against the closed vocabulary.
func parseKeyWithModifiers(input, keyPart string, mods Modifier) (Event, error) {
	lower := strings.ToLower(keyPart)

	if k, ok := keyNameMap[lower]; ok {
		return NewSpecialEvent(k, mods), nil
	}
	if r, ok := runeNameMap[lower]; ok {
		return NewRuneEvent(r, mods), nil
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return NewRuneEvent(r, mods), nil
		}
	}

	return Event{}, parseErr(input, keyPart, ErrUnknownKey)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}
