package options

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/palette"
)

// Store holds the live Configuration. Readers get a consistent snapshot
// without locking; writers are serialized and publish a new value by
// pointer swap.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Configuration]

	terminal palette.Pair
	notifier *notify.Notifier
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTerminal sets the terminal colors used for palette defaults and
// resets.
func WithTerminal(term palette.Pair) StoreOption {
	return func(s *Store) { s.terminal = term }
}

// WithNotifier announces every applied change through n.
func WithNotifier(n *notify.Notifier) StoreOption {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store holding the defaults for host.
func NewStore(host string, opts ...StoreOption) *Store {
	s := &Store{
		terminal: palette.DefaultTerminal,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := DefaultsWithTerminal(host, s.terminal)
	s.current.Store(&initial)
	return s
}

// Get returns a snapshot of the live configuration.
func (s *Store) Get() Configuration {
	return *s.current.Load()
}

// Terminal returns the terminal colors used for palette defaults.
func (s *Store) Terminal() palette.Pair {
	return s.terminal
}

// Apply merges u into the live configuration. On error nothing changes.
func (s *Store) Apply(u Update) error {
	return s.ApplyFrom(u, "apply")
}

// ApplyFrom is Apply with the change source recorded in notifications.
func (s *Store) ApplyFrom(u Update, source string) error {
	s.mu.Lock()
	prev := s.current.Load()
	next, err := ApplyWithTerminal(*prev, u, s.terminal)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("options update rejected", "source", source, "error", err)
		return err
	}
	s.current.Store(&next)
	s.mu.Unlock()

	fields := u.Fields()
	s.logger.Debug("options updated", "source", source, "fields", fields)
	s.announce(prev, &next, fields, source)
	return nil
}

// SetColor updates one palette slot. An override with neither channel
// present leaves the configuration untouched and reports false.
func (s *Store) SetColor(slot palette.Slot, o palette.Override) (bool, error) {
	s.mu.Lock()
	prev := s.current.Load()
	next := *prev
	changed, err := next.Palette.Set(slot, o)
	if err != nil || !changed {
		s.mu.Unlock()
		return false, err
	}
	s.current.Store(&next)
	s.mu.Unlock()

	old, _ := prev.Palette.Get(slot)
	cur, _ := next.Palette.Get(slot)
	s.logger.Debug("palette slot set", "slot", slot.String(), "fg", cur.FG.String(), "bg", cur.BG.String())
	if s.notifier != nil {
		s.notifier.NotifySet(notify.Join(notify.SectionPalette, slot.String()), old, cur, "set-color")
	}
	return true, nil
}

// Subscribe registers fn for every option and palette change. It returns
// nil when the store has no notifier.
func (s *Store) Subscribe(fn notify.Observer) *notify.Subscription {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Subscribe(fn)
}

func (s *Store) announce(prev, next *Configuration, fields []string, source string) {
	if s.notifier == nil || len(fields) == 0 {
		return
	}

	batch := s.notifier.NewBatch()
	pv := reflect.ValueOf(*prev)
	nv := reflect.ValueOf(*next)
	for _, f := range fields {
		if f == "ResetTokenColors" {
			batch.Set(notify.SectionPalette, nil, nil, source)
			continue
		}
		if name, ok := strings.CutPrefix(f, "Palette."); ok {
			slot, err := palette.ParseSlot(name)
			if err != nil {
				continue
			}
			old, _ := prev.Palette.Get(slot)
			cur, _ := next.Palette.Get(slot)
			batch.Set(notify.Join(notify.SectionPalette, slot.String()), old, cur, source)
			continue
		}
		batch.Set(notify.Join(notify.SectionOptions, f), fieldValue(pv, f), fieldValue(nv, f), source)
	}
	batch.Commit()
}

// fieldValue reads a named field for change notifications. Handler fields
// are reported as whether a handler is installed.
func fieldValue(v reflect.Value, name string) any {
	f := v.FieldByName(name)
	if !f.IsValid() {
		return nil
	}
	if f.Kind() == reflect.Func {
		return !f.IsNil()
	}
	return f.Interface()
}
