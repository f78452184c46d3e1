// Package notify delivers change events for options, palette slots and key
// bindings to subscribed observers.
//
// Changes are addressed by dot-separated paths rooted at a section:
//
//	options.MaximumHistoryCount
//	palette.Emphasis
//	keys.Ctrl+r
//
// An observer subscribed to a section receives every change beneath it.
package notify

import (
	"strings"
	"sync"
)

// Path roots.
const (
	SectionOptions = "options"
	SectionPalette = "palette"
	SectionKeys    = "keys"
)

// ChangeType classifies a change event.
type ChangeType int

const (
	// ChangeSet indicates an option or color was written.
	ChangeSet ChangeType = iota

	// ChangeBind indicates a chord was bound or rebound.
	ChangeBind

	// ChangeUnbind indicates a chord binding was removed.
	ChangeUnbind

	// ChangeReload indicates the settings file was reloaded as a whole.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeBind:
		return "bind"
	case ChangeUnbind:
		return "unbind"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is one change event.
type Change struct {
	// Path addresses the changed item. Empty for reloads.
	Path string

	Type ChangeType

	OldValue any
	NewValue any

	// Source names the entry point that made the change, such as "apply",
	// "set-color" or a settings file path.
	Source string
}

// Join builds a change path from its parts.
func Join(parts ...string) string {
	return strings.Join(parts, ".")
}

// Observer receives change events.
type Observer func(change Change)

// Subscription is a registered observer.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type subscriber struct {
	prefix   string
	observer Observer
}

// Notifier fans change events out to observers. Delivery is synchronous
// unless WithAsync is given.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[uint64]subscriber
	nextID uint64
	closed bool

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers events from a background goroutine through a buffer
// of the given size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		subs: make(map[uint64]subscriber),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.run()
	}
	return n
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for changes at path or beneath it.
// Reload events reach every observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = subscriber{prefix: path, observer: observer}
	return &Subscription{id: id, notifier: n}
}

// Notify delivers change to matching observers. Events sent after Close
// are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// NotifySet reports a written option or color.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReload reports a whole-file reload.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// Close stops delivery, draining any buffered events first. Safe to call
// more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, s := range n.subs {
		if change.Type == ChangeReload || matches(s.prefix, change.Path) {
			observers = append(observers, s.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// matches reports whether path is prefix or lies beneath it.
// "options" matches "options.BellStyle" but not "optionsX".
func matches(prefix, path string) bool {
	if prefix == "" || prefix == path {
		return true
	}
	return strings.HasPrefix(path, prefix) && path[len(prefix)] == '.'
}

// Batch queues changes so a multi-field update is announced only after it
// has been committed to the store.
type Batch struct {
	notifier *Notifier
	mu       sync.Mutex
	changes  []Change
}

// NewBatch creates an empty batch.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Set queues a set change.
func (b *Batch) Set(path string, oldValue, newValue any, source string) {
	b.Add(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// Add queues a change.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Commit sends the queued changes in order and empties the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, c := range changes {
		b.notifier.Notify(c)
	}
}

// Discard empties the batch without sending.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of queued changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
