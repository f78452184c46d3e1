package keymap

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/lineconf/internal/catalog"
	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/key"
	"github.com/dshills/lineconf/internal/optional"
)

// entry is one chord's binding. group identifies the Bind call that
// created it so chords bound together are reported together.
type entry struct {
	chord   key.Chord
	handler Handler
	group   uint64
}

// Table maps chords to handlers. Each chord has at most one handler; the
// last Bind wins.
type Table struct {
	mu sync.RWMutex

	entries map[string]*entry
	tree    *PrefixTree

	nextGroup uint64

	catalog *catalog.Catalog
	logger  *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for rebind diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTable creates an empty table that validates function names against cat.
func NewTable(cat *catalog.Catalog, opts ...Option) *Table {
	t := &Table{
		entries: make(map[string]*entry),
		tree:    NewPrefixTree(),
		catalog: cat,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BindResult reports the outcome of a successful Bind.
type BindResult struct {
	// Chords are the normalized chords that were bound.
	Chords []key.Chord

	// Warnings lists non-fatal conditions, one per chord that replaced an
	// existing binding.
	Warnings []*errs.Warning
}

// Bind maps every chord in chords to h. Chords are written all-or-nothing:
// any parse or validation failure leaves the table unchanged.
func (t *Table) Bind(chords []string, h Handler) (BindResult, error) {
	parsed, h, err := t.prepare(chords, h)
	if err != nil {
		return BindResult{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextGroup++
	result := BindResult{Chords: parsed}
	for _, c := range parsed {
		k := c.String()
		if prev, ok := t.entries[k]; ok {
			w := &errs.Warning{
				Subject: k,
				Message: fmt.Sprintf("already bound to %s, replacing", prev.handler.Name()),
			}
			result.Warnings = append(result.Warnings, w)
			t.logger.Warn("chord rebound", "chord", k, "previous", prev.handler.Name(), "handler", h.Name())
		}
		e := &entry{chord: c, handler: h, group: t.nextGroup}
		t.entries[k] = e
		t.tree.insert(e)
	}
	return result, nil
}

// Validate reports the error Bind would return for chords and h without
// changing the table.
func (t *Table) Validate(chords []string, h Handler) error {
	_, _, err := t.prepare(chords, h)
	return err
}

// prepare parses and deduplicates chords and checks h.
func (t *Table) prepare(chords []string, h Handler) ([]key.Chord, Handler, error) {
	if len(chords) == 0 {
		return nil, h, errs.NewValidationError("Chord", "at least one chord is required", nil)
	}
	if err := h.validateShape(); err != nil {
		return nil, h, err
	}

	parsed := make([]key.Chord, 0, len(chords))
	seen := make(map[string]bool, len(chords))
	for _, spec := range chords {
		c, err := key.ParseChord(spec)
		if err != nil {
			return nil, h, err
		}
		if seen[c.String()] {
			continue
		}
		seen[c.String()] = true
		parsed = append(parsed, c)
	}

	if h.Kind == KindFunction {
		if err := t.checkFunction(h.Function); err != nil {
			return nil, h, err
		}
		if h.BriefDescription == "" {
			h.BriefDescription = h.Function
		}
	}
	return parsed, h, nil
}

func (t *Table) checkFunction(name string) error {
	if t.catalog == nil {
		return fmt.Errorf("binding %q: no action catalog", name)
	}
	ok, err := t.catalog.Contains(name)
	if err != nil {
		return fmt.Errorf("binding %q: %w", name, err)
	}
	if !ok {
		return errs.NewValidationError("Function", "unknown function", name)
	}
	return nil
}

// Unbind removes the binding for one chord. It reports whether a binding
// existed.
func (t *Table) Unbind(spec string) (bool, error) {
	c, err := key.ParseChord(spec)
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := c.String()
	if _, ok := t.entries[k]; !ok {
		return false, nil
	}
	delete(t.entries, k)
	t.tree.remove(c)
	return true, nil
}

// Clear removes every binding.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*entry)
	t.tree = NewPrefixTree()
}

// Staging returns an empty table sharing t's catalog and logger. Bindings
// built there become visible only when passed to Replace.
func (t *Table) Staging() *Table {
	return &Table{
		entries: make(map[string]*entry),
		tree:    NewPrefixTree(),
		catalog: t.catalog,
		logger:  t.logger,
	}
}

// Replace installs src's bindings in t in one step. Readers see either the
// old bindings or the new ones, never a mix. src must not be used afterwards.
func (t *Table) Replace(src *Table) {
	if src == t {
		return
	}
	src.mu.Lock()
	entries, tree, groups := src.entries, src.tree, src.nextGroup
	src.entries, src.tree = make(map[string]*entry), NewPrefixTree()
	src.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = entries
	t.tree = tree
	t.nextGroup = groups
}

// Lookup returns the handler bound to chord.
func (t *Table) Lookup(chord key.Chord) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.tree.lookup(chord)
	if e == nil {
		return Handler{}, false
	}
	return e.handler, true
}

// LookupSpec parses spec and returns the handler bound to it.
func (t *Table) LookupSpec(spec string) (Handler, bool, error) {
	c, err := key.ParseChord(spec)
	if err != nil {
		return Handler{}, false, err
	}
	h, ok := t.Lookup(c)
	return h, ok, nil
}

// HasPrefix reports whether chord is the start of a longer bound chord, so
// the editing loop should wait for more keys.
func (t *Table) HasPrefix(chord key.Chord) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.hasLonger(chord)
}

// Len returns the number of bound chords.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// QueryRequest selects the partitions returned by Query. A flag left unset
// was not requested by the caller.
type QueryRequest struct {
	Bound   optional.Value[bool]
	Unbound optional.Value[bool]
}

// BoundEntry is a set of chords sharing one handler.
type BoundEntry struct {
	Chords  []key.Chord
	Handler Handler
}

// ChordString returns the entry's chords joined for display.
func (b BoundEntry) ChordString() string {
	parts := make([]string, len(b.Chords))
	for i, c := range b.Chords {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// QueryResult holds the partitions selected by a QueryRequest.
type QueryResult struct {
	Bound   []BoundEntry
	Unbound []string
}

// resolve applies the flag rules: with no flag set both partitions are
// wanted; with exactly one set the other defaults to false.
func (q QueryRequest) resolve() (bound, unbound bool) {
	b, bSet := q.Bound.Get()
	u, uSet := q.Unbound.Get()
	switch {
	case bSet && uSet:
		return b, u
	case bSet:
		return b, false
	case uSet:
		return false, u
	default:
		return true, true
	}
}

// Query returns the bound entries and/or the catalog names with no chord
// bound to them.
func (t *Table) Query(req QueryRequest) (QueryResult, error) {
	wantBound, wantUnbound := req.resolve()

	var names []string
	if wantUnbound {
		if t.catalog == nil {
			return QueryResult{}, fmt.Errorf("querying unbound functions: no action catalog")
		}
		var err error
		names, err = t.catalog.Names()
		if err != nil {
			return QueryResult{}, fmt.Errorf("querying unbound functions: %w", err)
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var result QueryResult
	if wantBound {
		result.Bound = t.boundLocked()
	}
	if wantUnbound {
		used := make(map[string]bool)
		for _, e := range t.entries {
			if e.handler.Kind == KindFunction {
				used[e.handler.Function] = true
			}
		}
		for _, name := range names {
			if !used[name] {
				result.Unbound = append(result.Unbound, name)
			}
		}
	}
	return result, nil
}

// boundLocked groups entries by the Bind call that created them.
// Caller must hold the read lock.
func (t *Table) boundLocked() []BoundEntry {
	groups := make(map[uint64]*BoundEntry)
	for _, e := range t.entries {
		g, ok := groups[e.group]
		if !ok {
			g = &BoundEntry{Handler: e.handler}
			groups[e.group] = g
		}
		g.Chords = append(g.Chords, e.chord)
	}

	out := make([]BoundEntry, 0, len(groups))
	for _, g := range groups {
		slices.SortFunc(g.Chords, func(a, b key.Chord) int {
			return strings.Compare(a.String(), b.String())
		})
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b BoundEntry) int {
		return strings.Compare(a.Chords[0].String(), b.Chords[0].String())
	})
	return out
}
