// Package terminal runs an interactive prompt on a tcell screen, feeding
// key events to an editing session and drawing the line with the live
// palette.
package terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/lineconf/internal/palette"
)

// Terminal wraps a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// New opens the controlling terminal.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewWithScreen wraps an existing screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init takes over the terminal.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// PollEvent blocks for the next event. It returns nil after Shutdown.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Wake interrupts PollEvent so the caller can redraw.
func (t *Terminal) Wake() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // queue full means a wake is already pending
}

// Beep sounds the terminal bell.
func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.screen.Beep() // not every terminal has one
}

// Sync redraws the whole screen after a resize.
func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Sync()
}

// Style converts a palette pair to a tcell style.
func Style(p palette.Pair) tcell.Style {
	return tcell.StyleDefault.Foreground(p.FG.TCell()).Background(p.BG.TCell())
}

// canvas is a locked drawing pass over the screen.
type canvas struct {
	screen        tcell.Screen
	width, height int
}

func (t *Terminal) draw(fn func(c *canvas)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	t.screen.Clear()
	fn(&canvas{screen: t.screen, width: w, height: h})
	t.screen.Show()
}

// text writes s at (x, y) grapheme by grapheme and returns the column after
// it. Text past the right edge is dropped.
func (c *canvas) text(x, y int, s string, style tcell.Style) int {
	if y < 0 || y >= c.height {
		return x
	}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if x+w > c.width {
			break
		}
		c.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

func (c *canvas) cursor(x, y int) {
	c.screen.ShowCursor(x, y)
}

// width returns the display width of s in cells.
func width(s string) int {
	return uniseg.StringWidth(s)
}
