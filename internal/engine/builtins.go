package engine

import (
	"fmt"

	"github.com/dshills/lineconf/internal/input/key"
)

func abort(s *Session, _ *key.Event, _ any) error {
	s.pending = key.Chord{}
	s.status = OutcomeAborted
	return nil
}

func acceptLine(s *Session, _ *key.Event, _ any) error {
	cfg := s.store.Get()
	line := s.Line()

	if cfg.ValidationHandler != nil {
		if err := cfg.ValidationHandler(line); err != nil {
			s.rejection = err
			s.status = OutcomeRejected
			s.ring()
			return nil
		}
	}

	s.rejection = nil
	if s.history.add(&cfg, line) {
		s.logger.Debug("history recorded", "count", s.history.Len())
	}
	s.accepted = line
	s.reset()
	s.status = OutcomeAccepted
	return nil
}

func addLine(s *Session, _ *key.Event, _ any) error {
	s.insertText("\n")
	return nil
}

func backwardChar(s *Session, _ *key.Event, _ any) error {
	s.SetCursor(s.cursor - 1)
	return nil
}

func forwardChar(s *Session, _ *key.Event, _ any) error {
	s.SetCursor(s.cursor + 1)
	return nil
}

func beginningOfLine(s *Session, _ *key.Event, _ any) error {
	s.cursor = 0
	return nil
}

func endOfLine(s *Session, _ *key.Event, _ any) error {
	s.cursor = len(s.buf)
	return nil
}

func backwardDeleteChar(s *Session, _ *key.Event, _ any) error {
	if s.cursor == 0 {
		s.ring()
		return nil
	}
	s.buf = append(s.buf[:s.cursor-1], s.buf[s.cursor:]...)
	s.cursor--
	return nil
}

func deleteChar(s *Session, _ *key.Event, _ any) error {
	if s.cursor >= len(s.buf) {
		s.ring()
		return nil
	}
	s.buf = append(s.buf[:s.cursor], s.buf[s.cursor+1:]...)
	return nil
}

// backwardWord moves to the start of the word before the cursor.
func backwardWord(s *Session, _ *key.Event, _ any) error {
	cfg := s.store.Get()
	i := s.cursor
	for i > 0 && cfg.IsWordDelimiter(s.buf[i-1]) {
		i--
	}
	for i > 0 && !cfg.IsWordDelimiter(s.buf[i-1]) {
		i--
	}
	s.cursor = i
	return nil
}

// forwardWord moves past the end of the word after the cursor.
func forwardWord(s *Session, _ *key.Event, _ any) error {
	cfg := s.store.Get()
	i := s.cursor
	for i < len(s.buf) && cfg.IsWordDelimiter(s.buf[i]) {
		i++
	}
	for i < len(s.buf) && !cfg.IsWordDelimiter(s.buf[i]) {
		i++
	}
	s.cursor = i
	return nil
}

func killLine(s *Session, _ *key.Event, _ any) error {
	killed := string(s.buf[s.cursor:])
	s.buf = s.buf[:s.cursor]
	s.kills.push(killed, s.store.Get().MaximumKillRingCount)
	return nil
}

func backwardKillLine(s *Session, _ *key.Event, _ any) error {
	killed := string(s.buf[:s.cursor])
	s.buf = append(s.buf[:0], s.buf[s.cursor:]...)
	s.cursor = 0
	s.kills.push(killed, s.store.Get().MaximumKillRingCount)
	return nil
}

func yank(s *Session, _ *key.Event, _ any) error {
	text, ok := s.kills.Top()
	if !ok {
		s.ring()
		return nil
	}
	s.insertText(text)
	return nil
}

func revertLine(s *Session, _ *key.Event, _ any) error {
	s.reset()
	return nil
}

func ding(s *Session, _ *key.Event, _ any) error {
	s.ring()
	return nil
}

// selfInsert inserts the typed character, or a string argument when
// invoked without a key.
func selfInsert(s *Session, ev *key.Event, arg any) error {
	if ev != nil {
		if text := ev.Text(); text != "" {
			s.insertText(text)
			return nil
		}
	}
	if text, ok := arg.(string); ok {
		s.insertText(text)
		return nil
	}
	s.ring()
	return nil
}

// insert is the internal helper behind programmatic insertion. It takes
// the text as its argument and ignores the key.
func insert(s *Session, _ *key.Event, arg any) error {
	text, ok := arg.(string)
	if !ok {
		return fmt.Errorf("Insert: %w: want string, got %T", ErrBadArgument, arg)
	}
	s.insertText(text)
	return nil
}
