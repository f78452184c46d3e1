package key

import "github.com/gdamore/tcell/v2"

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyPause:      KeyPause,
	tcell.KeyPrint:      KeyPrintScreen,
}

// FromTcell converts a terminal key event into a key press descriptor.
// Control characters reported by the terminal (Ctrl+A through Ctrl+Z) are
// expanded to a Ctrl modifier on the corresponding letter, except the three
// that share a code with a named key: Ctrl+H arrives as Backspace, Ctrl+I as
// Tab and Ctrl+M as Enter. Chords such as Ctrl+h stay bindable for hosts
// that report them separately.
func FromTcell(ev *tcell.EventKey) Event {
	var mods Modifier
	tm := ev.Modifiers()
	if tm&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if tm&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if tm&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}

	k := ev.Key()
	if k == tcell.KeyBacktab {
		mods = mods.With(ModShift)
	}
	if mapped, ok := tcellKeys[k]; ok {
		return NewSpecialEvent(mapped, mods)
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF24 {
		return NewSpecialEvent(KeyF1+Key(k-tcell.KeyF1), mods)
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return NewRuneEvent('a'+rune(k-tcell.KeyCtrlA), mods.With(ModCtrl))
	}

	r := ev.Rune()
	if r >= 'A' && r <= 'Z' && !mods.HasCtrl() {
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods)
}
