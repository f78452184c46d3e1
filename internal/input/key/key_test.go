package key

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyEnter, "Enter"},
		{KeyUp, "UpArrow"},
		{KeyF1, "F1"},
		{KeyF24, "F24"},
		{Key(999), "Key(999)"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestKeyFromName(t *testing.T) {
	if KeyFromName("F13") != KeyF13 {
		t.Error("KeyFromName(F13) should be KeyF13")
	}
	if KeyFromName("  PgDn ") != KeyPageDown {
		t.Error("KeyFromName(PgDn) should be KeyPageDown")
	}
	if KeyFromName("bogus") != KeyNone {
		t.Error("KeyFromName(bogus) should be KeyNone")
	}
}

func TestKeyClassification(t *testing.T) {
	if !KeyF20.IsFunctionKey() || KeyPause.IsFunctionKey() {
		t.Error("IsFunctionKey misclassified")
	}
	if !KeyLeft.IsArrowKey() || KeyHome.IsArrowKey() {
		t.Error("IsArrowKey misclassified")
	}
	if !KeyPageUp.IsNavigationKey() || KeyTab.IsNavigationKey() {
		t.Error("IsNavigationKey misclassified")
	}
	if KeyRune.IsSpecial() || !KeyEnter.IsSpecial() {
		t.Error("IsSpecial misclassified")
	}
}

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModShift | ModCtrl, "Ctrl+Shift"},
		{ModShift | ModAlt | ModCtrl, "Ctrl+Alt+Shift"},
	}

	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Modifier(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}

func TestModifierWithWithout(t *testing.T) {
	mod := ModNone.With(ModCtrl).With(ModAlt)
	if !mod.HasCtrl() || !mod.HasAlt() || mod.HasShift() {
		t.Errorf("With = %v, want Ctrl+Alt", mod)
	}
	mod = mod.Without(ModCtrl)
	if mod != ModAlt {
		t.Errorf("Without(Ctrl) = %v, want Alt", mod)
	}
	if !ModNone.IsEmpty() {
		t.Error("ModNone should be empty")
	}
}

func TestEventText(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('a', ModShift), "A"},
		{NewRuneEvent('a', ModCtrl), ""},
		{NewRuneEvent(' ', ModNone), " "},
		{NewSpecialEvent(KeyEnter, ModNone), ""},
	}

	for _, tt := range tests {
		if got := tt.event.Text(); got != tt.want {
			t.Errorf("%s.Text() = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestEventMatches(t *testing.T) {
	ev := NewRuneEvent('R', ModCtrl)
	if !ev.Matches("ctrl+r") {
		t.Error("Ctrl+r should match ctrl+r")
	}
	if ev.Matches("Alt+r") {
		t.Error("Ctrl+r should not match Alt+r")
	}
	if !NewSpecialEvent(KeyEscape, ModNone).IsEscape() {
		t.Error("IsEscape should be true")
	}
}

func TestChordHelpers(t *testing.T) {
	c := MustParseChord("Ctrl+x,Ctrl+e")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	prefix := NewChord(NewRuneEvent('x', ModCtrl))
	if !c.HasPrefix(prefix) {
		t.Error("HasPrefix(Ctrl+x) should be true")
	}
	if prefix.HasPrefix(c) {
		t.Error("shorter chord cannot have longer prefix")
	}
	if !prefix.Append(NewRuneEvent('e', ModCtrl)).Equals(c) {
		t.Error("Append should build Ctrl+x,Ctrl+e")
	}
	if prefix.Len() != 1 {
		t.Error("Append must not modify the receiver")
	}
	if (Chord{}).First() != nil || !(Chord{}).IsEmpty() {
		t.Error("empty chord helpers misbehave")
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), NewRuneEvent('x', ModNone)},
		{"upper rune", tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModNone), NewRuneEvent('x', ModShift)},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModAlt), NewRuneEvent('b', ModAlt)},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl), NewRuneEvent('r', ModCtrl)},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), NewSpecialEvent(KeyEnter, ModNone)},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), NewSpecialEvent(KeyTab, ModShift)},
		{"f13", tcell.NewEventKey(tcell.KeyF13, 0, tcell.ModNone), NewSpecialEvent(KeyF13, ModNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTcell(tt.ev); got != tt.want {
				t.Errorf("FromTcell = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFromTcellSharedControlCodes(t *testing.T) {
	tests := []struct {
		k    tcell.Key
		want Key
	}{
		{tcell.KeyCtrlH, KeyBackspace},
		{tcell.KeyCtrlI, KeyTab},
		{tcell.KeyCtrlM, KeyEnter},
	}
	for _, tt := range tests {
		got := FromTcell(tcell.NewEventKey(tt.k, 0, tcell.ModNone))
		if got.Key != tt.want || got.Modifiers.HasCtrl() {
			t.Errorf("FromTcell(%v) = %v, want %v without Ctrl", tt.k, got, tt.want)
		}
	}
}
