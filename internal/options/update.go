package options

import (
	"maps"
	"slices"
	"time"

	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/optional"
	"github.com/dshills/lineconf/internal/palette"
)

// Update is a sparse change to a Configuration. Every field is either
// absent, leaving the current value alone, or present. A present handler
// field holding nil clears the handler.
type Update struct {
	EditMode             optional.Value[EditMode]
	ContinuationPrompt   optional.Value[string]
	ExtraPromptLineCount optional.Value[int]

	AddToHistoryHandler optional.Value[AddToHistoryFunc]
	ValidationHandler   optional.Value[ValidationFunc]

	HistoryNoDuplicates           optional.Value[bool]
	MaximumHistoryCount           optional.Value[int]
	MaximumKillRingCount          optional.Value[int]
	HistorySearchCursorMovesToEnd optional.Value[bool]
	HistorySearchCaseSensitive    optional.Value[bool]
	HistorySavePath               optional.Value[string]
	HistorySaveStyle              optional.Value[HistorySaveStyle]

	ShowToolTips optional.Value[bool]

	DingTone     optional.Value[int]
	DingDuration optional.Value[time.Duration]
	BellStyle    optional.Value[BellStyle]

	CompletionQueryItems optional.Value[int]
	WordDelimiters       optional.Value[string]

	// ResetTokenColors restores the whole palette to its defaults before
	// any color override in the same Update is applied.
	ResetTokenColors optional.Value[bool]

	Emphasis                 palette.Override
	Error                    palette.Override
	ContinuationPromptColors palette.Override

	// TokenColors overrides individual token classifications.
	TokenColors map[palette.TokenKind]palette.Override
}

// Validate checks every present field without applying anything.
func (u *Update) Validate() error {
	if m, ok := u.EditMode.Get(); ok && !m.Valid() {
		return errs.NewValidationError("EditMode", "unknown edit mode", m)
	}
	if b, ok := u.BellStyle.Get(); ok && !b.Valid() {
		return errs.NewValidationError("BellStyle", "unknown bell style", b)
	}
	if h, ok := u.HistorySaveStyle.Get(); ok && !h.Valid() {
		return errs.NewValidationError("HistorySaveStyle", "unknown history save style", h)
	}
	if p, ok := u.HistorySavePath.Get(); ok && p == "" {
		return errs.NewValidationError("HistorySavePath", "must not be empty", nil)
	}
	if d, ok := u.DingDuration.Get(); ok && d < 0 {
		return errs.NewValidationError("DingDuration", "must not be negative", d)
	}

	counts := []struct {
		name string
		v    optional.Value[int]
	}{
		{"ExtraPromptLineCount", u.ExtraPromptLineCount},
		{"MaximumHistoryCount", u.MaximumHistoryCount},
		{"MaximumKillRingCount", u.MaximumKillRingCount},
		{"DingTone", u.DingTone},
		{"CompletionQueryItems", u.CompletionQueryItems},
	}
	for _, c := range counts {
		if n, ok := c.v.Get(); ok && n < 0 {
			return errs.NewValidationError(c.name, "must not be negative", n)
		}
	}

	if err := u.Emphasis.Validate("Emphasis"); err != nil {
		return err
	}
	if err := u.Error.Validate("Error"); err != nil {
		return err
	}
	if err := u.ContinuationPromptColors.Validate("ContinuationPrompt"); err != nil {
		return err
	}
	for k, o := range u.TokenColors {
		if k >= palette.NumTokenKinds {
			return errs.NewValidationError("TokenKind", "unknown token kind", k)
		}
		if err := o.Validate(k.String()); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the names of the present fields in declaration order.
func (u *Update) Fields() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("EditMode", u.EditMode.IsSet())
	add("ContinuationPrompt", u.ContinuationPrompt.IsSet())
	add("ExtraPromptLineCount", u.ExtraPromptLineCount.IsSet())
	add("AddToHistoryHandler", u.AddToHistoryHandler.IsSet())
	add("ValidationHandler", u.ValidationHandler.IsSet())
	add("HistoryNoDuplicates", u.HistoryNoDuplicates.IsSet())
	add("MaximumHistoryCount", u.MaximumHistoryCount.IsSet())
	add("MaximumKillRingCount", u.MaximumKillRingCount.IsSet())
	add("HistorySearchCursorMovesToEnd", u.HistorySearchCursorMovesToEnd.IsSet())
	add("HistorySearchCaseSensitive", u.HistorySearchCaseSensitive.IsSet())
	add("HistorySavePath", u.HistorySavePath.IsSet())
	add("HistorySaveStyle", u.HistorySaveStyle.IsSet())
	add("ShowToolTips", u.ShowToolTips.IsSet())
	add("DingTone", u.DingTone.IsSet())
	add("DingDuration", u.DingDuration.IsSet())
	add("BellStyle", u.BellStyle.IsSet())
	add("CompletionQueryItems", u.CompletionQueryItems.IsSet())
	add("WordDelimiters", u.WordDelimiters.IsSet())
	add("ResetTokenColors", u.ResetTokenColors.Or(false))
	add("Palette.Emphasis", !u.Emphasis.IsEmpty())
	add("Palette.Error", !u.Error.IsEmpty())
	add("Palette.ContinuationPrompt", !u.ContinuationPromptColors.IsEmpty())
	for _, k := range slices.Sorted(maps.Keys(u.TokenColors)) {
		add("Palette."+k.String(), !u.TokenColors[k].IsEmpty())
	}
	return out
}

// IsEmpty reports whether the update changes nothing.
func (u *Update) IsEmpty() bool {
	return len(u.Fields()) == 0
}

type slotOverride struct {
	slot palette.Slot
	o    palette.Override
}

// Apply returns current with u merged in, using the default terminal
// colors for a palette reset. current is not modified. An invalid update
// returns the zero Configuration and a ValidationError.
func Apply(current Configuration, u Update) (Configuration, error) {
	return ApplyWithTerminal(current, u, palette.DefaultTerminal)
}

// ApplyWithTerminal is Apply for a terminal with the given default colors.
func ApplyWithTerminal(current Configuration, u Update, term palette.Pair) (Configuration, error) {
	if err := u.Validate(); err != nil {
		return Configuration{}, err
	}

	next := current

	if u.ResetTokenColors.Or(false) {
		next.Palette.Reset(term)
	}
	overrides := []slotOverride{
		{palette.SlotEmphasis, u.Emphasis},
		{palette.SlotError, u.Error},
		{palette.SlotContinuationPrompt, u.ContinuationPromptColors},
	}
	for _, k := range slices.Sorted(maps.Keys(u.TokenColors)) {
		overrides = append(overrides, slotOverride{palette.TokenSlot(k), u.TokenColors[k]})
	}
	for _, ov := range overrides {
		if _, err := next.Palette.Set(ov.slot, ov.o); err != nil {
			return Configuration{}, err
		}
	}

	u.EditMode.Apply(&next.EditMode)
	u.ContinuationPrompt.Apply(&next.ContinuationPrompt)
	u.ExtraPromptLineCount.Apply(&next.ExtraPromptLineCount)
	u.AddToHistoryHandler.Apply(&next.AddToHistoryHandler)
	u.ValidationHandler.Apply(&next.ValidationHandler)
	u.HistoryNoDuplicates.Apply(&next.HistoryNoDuplicates)
	u.MaximumHistoryCount.Apply(&next.MaximumHistoryCount)
	u.MaximumKillRingCount.Apply(&next.MaximumKillRingCount)
	u.HistorySearchCursorMovesToEnd.Apply(&next.HistorySearchCursorMovesToEnd)
	u.HistorySearchCaseSensitive.Apply(&next.HistorySearchCaseSensitive)
	u.HistorySavePath.Apply(&next.HistorySavePath)
	u.HistorySaveStyle.Apply(&next.HistorySaveStyle)
	u.ShowToolTips.Apply(&next.ShowToolTips)
	u.DingTone.Apply(&next.DingTone)
	u.DingDuration.Apply(&next.DingDuration)
	u.BellStyle.Apply(&next.BellStyle)
	u.CompletionQueryItems.Apply(&next.CompletionQueryItems)
	u.WordDelimiters.Apply(&next.WordDelimiters)

	return next, nil
}
