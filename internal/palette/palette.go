// Package palette holds the foreground/background colors used when drawing
// classified input tokens and the editor's special display slots.
package palette

import (
	"fmt"
	"strings"

	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/optional"
)

// TokenKind is the classification the syntax classifier assigns to a span
// of input. It is only used here as a palette key.
type TokenKind uint8

// Token classifications.
const (
	TokenNone TokenKind = iota
	TokenComment
	TokenKeyword
	TokenString
	TokenOperator
	TokenVariable
	TokenCommand
	TokenParameter
	TokenType
	TokenNumber
	TokenMember

	// NumTokenKinds is the size of the classification set.
	NumTokenKinds
)

var tokenNames = [NumTokenKinds]string{
	"None", "Comment", "Keyword", "String", "Operator", "Variable",
	"Command", "Parameter", "Type", "Number", "Member",
}

// String returns the classification name.
func (k TokenKind) String() string {
	if k >= NumTokenKinds {
		return fmt.Sprintf("TokenKind(%d)", k)
	}
	return tokenNames[k]
}

// Slot addresses one palette entry: a token classification or one of the
// special slots.
type Slot uint8

// Special slots follow the token classifications.
const (
	SlotEmphasis Slot = Slot(NumTokenKinds) + iota
	SlotError
	SlotContinuationPrompt

	numSlots
)

// TokenSlot returns the slot for a token classification.
func TokenSlot(k TokenKind) Slot {
	return Slot(k)
}

// TokenKind returns the classification addressed by s, if any.
func (s Slot) TokenKind() (TokenKind, bool) {
	if s < Slot(NumTokenKinds) {
		return TokenKind(s), true
	}
	return 0, false
}

// Valid reports whether s addresses a palette entry.
func (s Slot) Valid() bool {
	return s < numSlots
}

// String returns the slot name.
func (s Slot) String() string {
	if k, ok := s.TokenKind(); ok {
		return k.String()
	}
	switch s {
	case SlotEmphasis:
		return "Emphasis"
	case SlotError:
		return "Error"
	case SlotContinuationPrompt:
		return "ContinuationPrompt"
	default:
		return fmt.Sprintf("Slot(%d)", s)
	}
}

// Slots returns every slot in order.
func Slots() []Slot {
	out := make([]Slot, numSlots)
	for i := range out {
		out[i] = Slot(i)
	}
	return out
}

// ParseSlot resolves a slot name, case-insensitively. "Default" is accepted
// as an alias for the None classification.
func ParseSlot(name string) (Slot, error) {
	n := strings.TrimSpace(name)
	if strings.EqualFold(n, "Default") {
		return TokenSlot(TokenNone), nil
	}
	for _, s := range Slots() {
		if strings.EqualFold(n, s.String()) {
			return s, nil
		}
	}
	return 0, errs.NewParseError(name, "", "unknown token kind")
}

// Pair is a foreground/background color pair.
type Pair struct {
	FG Color
	BG Color
}

// Override carries optional replacements for the channels of one slot.
type Override struct {
	FG optional.Value[Color]
	BG optional.Value[Color]
}

// IsEmpty reports whether neither channel is present.
func (o Override) IsEmpty() bool {
	return !o.FG.IsSet() && !o.BG.IsSet()
}

// Validate checks that present channels hold console colors.
func (o Override) Validate(field string) error {
	if c, ok := o.FG.Get(); ok && !c.Valid() {
		return errs.NewValidationError(field+"ForegroundColor", "invalid color", c)
	}
	if c, ok := o.BG.Get(); ok && !c.Valid() {
		return errs.NewValidationError(field+"BackgroundColor", "invalid color", c)
	}
	return nil
}

// Default foreground colors for token classifications. The None
// classification uses the terminal's default foreground.
var defaultTokenFG = [NumTokenKinds]Color{
	TokenComment:   DarkGreen,
	TokenKeyword:   Green,
	TokenString:    DarkCyan,
	TokenOperator:  DarkGray,
	TokenVariable:  Green,
	TokenCommand:   Yellow,
	TokenParameter: DarkGray,
	TokenType:      Gray,
	TokenNumber:    White,
	TokenMember:    Gray,
}

// Default foregrounds for the special slots.
const (
	DefaultEmphasisFG = Cyan
	DefaultErrorFG    = Red
)

// DefaultTerminal is the terminal color pair assumed when the host does not
// report one.
var DefaultTerminal = Pair{FG: Gray, BG: Black}

// Palette maps every token classification and special slot to a color pair.
// Every entry always holds two valid colors.
type Palette struct {
	Tokens             [NumTokenKinds]Pair
	Emphasis           Pair
	Error              Pair
	ContinuationPrompt Pair
}

// Defaults returns the compiled-in palette for a terminal whose default
// colors are term.
func Defaults(term Pair) Palette {
	var p Palette
	p.Reset(term)
	return p
}

// Reset restores every entry to its compiled-in default.
func (p *Palette) Reset(term Pair) {
	for k := range p.Tokens {
		p.Tokens[k] = Pair{FG: defaultTokenFG[k], BG: term.BG}
	}
	p.Tokens[TokenNone].FG = term.FG
	p.Emphasis = Pair{FG: DefaultEmphasisFG, BG: term.BG}
	p.Error = Pair{FG: DefaultErrorFG, BG: term.BG}
	p.ContinuationPrompt = term
}

// Get returns the color pair of a slot.
func (p *Palette) Get(s Slot) (Pair, error) {
	ptr, err := p.entry(s)
	if err != nil {
		return Pair{}, err
	}
	return *ptr, nil
}

// Token returns the color pair of a token classification.
func (p Palette) Token(k TokenKind) Pair {
	if k >= NumTokenKinds {
		return p.Tokens[TokenNone]
	}
	return p.Tokens[k]
}

// Set updates the present channels of one slot. It reports whether anything
// was present to apply; an override with neither channel is a no-op.
func (p *Palette) Set(s Slot, o Override) (bool, error) {
	ptr, err := p.entry(s)
	if err != nil {
		return false, err
	}
	if err := o.Validate(s.String()); err != nil {
		return false, err
	}
	if o.IsEmpty() {
		return false, nil
	}
	o.FG.Apply(&ptr.FG)
	o.BG.Apply(&ptr.BG)
	return true, nil
}

func (p *Palette) entry(s Slot) (*Pair, error) {
	if k, ok := s.TokenKind(); ok {
		return &p.Tokens[k], nil
	}
	switch s {
	case SlotEmphasis:
		return &p.Emphasis, nil
	case SlotError:
		return &p.Error, nil
	case SlotContinuationPrompt:
		return &p.ContinuationPrompt, nil
	default:
		return nil, errs.NewValidationError("TokenKind", "unknown palette slot", s)
	}
}
