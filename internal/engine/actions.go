package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/lineconf/internal/catalog"
	"github.com/dshills/lineconf/internal/input/key"
)

// ActionFunc is the key-handler calling convention: an optional key press
// and an arbitrary argument.
type ActionFunc func(s *Session, ev *key.Event, arg any) error

// Action is one registered editing action.
type Action struct {
	Name        string
	Convention  catalog.Convention
	Description string
	Fn          ActionFunc
}

// Actions is the name to function dispatch table.
type Actions struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewActions returns a table holding the built-in actions.
func NewActions() *Actions {
	a := &Actions{actions: make(map[string]Action)}
	for _, act := range builtins() {
		if err := a.Register(act); err != nil {
			panic(err)
		}
	}
	return a
}

// Register adds an action. Names must be unique.
func (a *Actions) Register(act Action) error {
	if act.Name == "" || act.Fn == nil {
		return fmt.Errorf("register %q: name and function are required", act.Name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.actions[act.Name]; ok {
		return fmt.Errorf("register %q: %w", act.Name, ErrDuplicateAction)
	}
	a.actions[act.Name] = act
	return nil
}

// Get returns the action registered under name.
func (a *Actions) Get(name string) (Action, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	act, ok := a.actions[name]
	return act, ok
}

// BindableActions implements catalog.Source. Every registered action is
// reported with its convention; the catalog keeps the key handlers.
func (a *Actions) BindableActions() ([]catalog.ActionInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]catalog.ActionInfo, 0, len(a.actions))
	for _, act := range a.actions {
		out = append(out, catalog.ActionInfo{Name: act.Name, Convention: act.Convention})
	}
	slices.SortFunc(out, func(x, y catalog.ActionInfo) int {
		return strings.Compare(x.Name, y.Name)
	})
	return out, nil
}

// Invoke runs a key-handler action by name against s.
func (a *Actions) Invoke(s *Session, name string, ev *key.Event, arg any) error {
	act, ok := a.Get(name)
	if !ok {
		return fmt.Errorf("invoke %q: %w", name, ErrUnknownAction)
	}
	if act.Convention != catalog.ConventionKeyHandler {
		return fmt.Errorf("invoke %q: %w", name, ErrNotBindable)
	}
	return act.Fn(s, ev, arg)
}

// call runs any action, including internal helpers.
func (a *Actions) call(s *Session, name string, ev *key.Event, arg any) error {
	act, ok := a.Get(name)
	if !ok {
		return fmt.Errorf("call %q: %w", name, ErrUnknownAction)
	}
	return act.Fn(s, ev, arg)
}

func keyHandler(name, desc string, fn ActionFunc) Action {
	return Action{Name: name, Convention: catalog.ConventionKeyHandler, Description: desc, Fn: fn}
}

func builtins() []Action {
	return []Action{
		keyHandler("Abort", "Abort the current operation", abort),
		keyHandler("AcceptLine", "Accept the input if it passes validation", acceptLine),
		keyHandler("AddLine", "Start a new line of input without accepting", addLine),
		keyHandler("BackwardChar", "Move the cursor one character left", backwardChar),
		keyHandler("BackwardDeleteChar", "Delete the character before the cursor", backwardDeleteChar),
		keyHandler("BackwardKillLine", "Kill from the start of the input to the cursor", backwardKillLine),
		keyHandler("BackwardWord", "Move to the start of the previous word", backwardWord),
		keyHandler("BeginningOfLine", "Move to the start of the input", beginningOfLine),
		keyHandler("DeleteChar", "Delete the character under the cursor", deleteChar),
		keyHandler("Ding", "Signal the user with the configured bell", ding),
		keyHandler("EndOfLine", "Move to the end of the input", endOfLine),
		keyHandler("ForwardChar", "Move the cursor one character right", forwardChar),
		keyHandler("ForwardWord", "Move past the end of the next word", forwardWord),
		keyHandler("KillLine", "Kill from the cursor to the end of the input", killLine),
		keyHandler("RevertLine", "Discard all input", revertLine),
		keyHandler("SelfInsert", "Insert the typed character", selfInsert),
		keyHandler("Yank", "Insert the most recently killed text", yank),
		{
			Name:        "Insert",
			Convention:  catalog.ConventionInternal,
			Description: "Insert a string at the cursor",
			Fn:          insert,
		},
	}
}
