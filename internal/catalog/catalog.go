// Package catalog provides the registry of built-in editing actions that may
// be bound to chords by name.
//
// The catalog is computed once from the editing engine's action surface and
// then never changes. A failed build is not cached, so a later call can
// retry; a successful build is never replaced.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Convention describes how an action is called.
type Convention uint8

const (
	// ConventionKeyHandler actions accept an optional key press and an
	// arbitrary argument. Only these may be bound by name.
	ConventionKeyHandler Convention = iota

	// ConventionInternal actions are engine helpers with another signature.
	ConventionInternal
)

// String returns the convention name.
func (c Convention) String() string {
	switch c {
	case ConventionKeyHandler:
		return "key-handler"
	case ConventionInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ActionInfo describes one action exposed by the editing engine.
type ActionInfo struct {
	Name       string
	Convention Convention
}

// Source exposes the editing engine's actions.
type Source interface {
	BindableActions() ([]ActionInfo, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() ([]ActionInfo, error)

// BindableActions implements Source.
func (f SourceFunc) BindableActions() ([]ActionInfo, error) {
	return f()
}

// Catalog is the lazily built, immutable set of bindable action names.
type Catalog struct {
	src    Source
	logger *slog.Logger

	mu    sync.Mutex
	names atomic.Pointer[[]string]
	index atomic.Pointer[map[string]struct{}]
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a catalog backed by src. Nothing is queried until first use.
func New(src Source, opts ...Option) *Catalog {
	c := &Catalog{src: src, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Names returns the sorted action names. The first successful call queries
// the source; later calls return the cached slice. Callers must not modify
// the returned slice.
func (c *Catalog) Names() ([]string, error) {
	if p := c.names.Load(); p != nil {
		return *p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p := c.names.Load(); p != nil {
		return *p, nil
	}

	if c.src == nil {
		return nil, fmt.Errorf("building action catalog: no action source")
	}
	actions, err := c.src.BindableActions()
	if err != nil {
		c.logger.Warn("action catalog build failed", "error", err)
		return nil, fmt.Errorf("building action catalog: %w", err)
	}

	index := make(map[string]struct{}, len(actions))
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Convention != ConventionKeyHandler || a.Name == "" {
			continue
		}
		if _, dup := index[a.Name]; dup {
			continue
		}
		index[a.Name] = struct{}{}
		names = append(names, a.Name)
	}
	slices.Sort(names)

	c.index.Store(&index)
	c.names.Store(&names)
	c.logger.Debug("action catalog built", "actions", len(names))
	return names, nil
}

// Contains reports whether name is a bindable action.
func (c *Catalog) Contains(name string) (bool, error) {
	if _, err := c.Names(); err != nil {
		return false, err
	}
	_, ok := (*c.index.Load())[name]
	return ok, nil
}

// Built reports whether the catalog has been computed.
func (c *Catalog) Built() bool {
	return c.names.Load() != nil
}

var (
	sharedMu sync.Mutex
	shared   *Catalog
)

// Shared returns the process-wide catalog, creating it around src on first
// use. Later calls ignore src and opts and return the same catalog.
func Shared(src Source, opts ...Option) *Catalog {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = New(src, opts...)
	}
	return shared
}
