package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lineconf/internal/input/key"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/options"
)

// Outcome reports what a key press did to the session.
type Outcome uint8

const (
	// OutcomeHandled means a binding ran and input continues.
	OutcomeHandled Outcome = iota

	// OutcomePending means the key started a multi-key chord.
	OutcomePending

	// OutcomeUnbound means no binding matched; the bell was rung.
	OutcomeUnbound

	// OutcomeAccepted means the line was accepted. See Session.Accepted.
	OutcomeAccepted

	// OutcomeRejected means the validation handler refused the line.
	// See Session.Rejection.
	OutcomeRejected

	// OutcomeAborted means Abort ran.
	OutcomeAborted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomePending:
		return "pending"
	case OutcomeUnbound:
		return "unbound"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Bell signals the user.
type Bell interface {
	Ring(style options.BellStyle, tone int, duration time.Duration)
}

// BellFunc adapts a function to Bell.
type BellFunc func(style options.BellStyle, tone int, duration time.Duration)

// Ring implements Bell.
func (f BellFunc) Ring(style options.BellStyle, tone int, duration time.Duration) {
	f(style, tone, duration)
}

// Session is one line of input being edited.
type Session struct {
	store   *options.Store
	table   *keymap.Table
	actions *Actions
	bell    Bell
	logger  *slog.Logger

	buf     []rune
	cursor  int
	pending key.Chord

	kills   KillRing
	history History

	status    Outcome
	accepted  string
	rejection error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBell sets how Ding is delivered. The default logs at debug level.
func WithBell(b Bell) SessionOption {
	return func(s *Session) {
		if b != nil {
			s.bell = b
		}
	}
}

// WithLogger sets the session's logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates an empty session reading settings from store and
// bindings from table.
func NewSession(store *options.Store, table *keymap.Table, actions *Actions, opts ...SessionOption) *Session {
	s := &Session{
		store:   store,
		table:   table,
		actions: actions,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bell == nil {
		s.bell = BellFunc(func(style options.BellStyle, tone int, d time.Duration) {
			s.logger.Debug("ding", "style", style.String(), "tone", tone, "duration", d)
		})
	}
	return s
}

// Line returns the current input.
func (s *Session) Line() string {
	return string(s.buf)
}

// Cursor returns the cursor position in runes.
func (s *Session) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor, clamped to the input.
func (s *Session) SetCursor(pos int) {
	s.cursor = max(0, min(pos, len(s.buf)))
}

// Insert inserts text at the cursor through the internal Insert action.
func (s *Session) Insert(text string) error {
	return s.actions.call(s, "Insert", nil, text)
}

// insertText inserts text at the cursor and moves the cursor past it.
func (s *Session) insertText(text string) {
	r := []rune(text)
	s.buf = append(s.buf[:s.cursor], append(r, s.buf[s.cursor:]...)...)
	s.cursor += len(r)
}

// Accepted returns the most recently accepted line.
func (s *Session) Accepted() string {
	return s.accepted
}

// Rejection returns the validation error from the last rejected accept.
func (s *Session) Rejection() error {
	return s.rejection
}

// History returns the session's history.
func (s *Session) History() *History {
	return &s.history
}

// KillRing returns the session's kill ring.
func (s *Session) KillRing() *KillRing {
	return &s.kills
}

// Pending returns the buffered prefix of a multi-key chord.
func (s *Session) Pending() key.Chord {
	return s.pending
}

// HandleTcell dispatches a terminal key event.
func (s *Session) HandleTcell(ev *tcell.EventKey) (Outcome, error) {
	return s.HandleKey(key.FromTcell(ev))
}

// HandleKey dispatches one key press. A key that extends a bound chord is
// buffered. When a buffered prefix is not continued, the prefix's own
// binding runs, if any, and the new key is dispatched on its own.
func (s *Session) HandleKey(ev key.Event) (Outcome, error) {
	chord := s.pending.Append(ev)
	if s.table.HasPrefix(chord) {
		s.pending = chord
		return OutcomePending, nil
	}
	s.pending = key.Chord{}

	if h, ok := s.table.Lookup(chord); ok {
		return s.run(h, ev)
	}

	if chord.Len() > 1 {
		prefix := key.NewChord(chord.Events[:chord.Len()-1]...)
		h, ok := s.table.Lookup(prefix)
		if !ok {
			s.logger.Debug("chord not bound", "chord", chord.String())
			s.ring()
			return OutcomeUnbound, nil
		}
		out, err := s.run(h, prefix.Events[prefix.Len()-1])
		if err != nil || out != OutcomeHandled {
			return out, err
		}
		return s.HandleKey(ev)
	}

	if ev.Text() != "" {
		return s.runAction("SelfInsert", ev)
	}
	s.logger.Debug("key not bound", "key", ev.String())
	s.ring()
	return OutcomeUnbound, nil
}

func (s *Session) run(h keymap.Handler, ev key.Event) (Outcome, error) {
	switch h.Kind {
	case keymap.KindFunction:
		return s.runAction(h.Function, ev)
	case keymap.KindBlock:
		s.status = OutcomeHandled
		if err := h.Block.Run(&ev, s); err != nil {
			return OutcomeHandled, fmt.Errorf("%s: %w", h.Name(), err)
		}
		return s.status, nil
	default:
		return OutcomeHandled, fmt.Errorf("handler %s: unknown kind", h.Kind)
	}
}

func (s *Session) runAction(name string, ev key.Event) (Outcome, error) {
	s.status = OutcomeHandled
	if err := s.actions.Invoke(s, name, &ev, nil); err != nil {
		return OutcomeHandled, err
	}
	return s.status, nil
}

// Invoke runs a named key-handler action against the session.
func (s *Session) Invoke(name string, ev *key.Event, arg any) error {
	return s.actions.Invoke(s, name, ev, arg)
}

func (s *Session) ring() {
	cfg := s.store.Get()
	if cfg.BellStyle == options.BellNone {
		return
	}
	s.bell.Ring(cfg.BellStyle, cfg.DingTone, cfg.DingDuration)
}

func (s *Session) reset() {
	s.buf = s.buf[:0]
	s.cursor = 0
}
