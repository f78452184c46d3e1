package keymap

import (
	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/key"
)

// HandlerKind tags the Handler variant.
type HandlerKind uint8

const (
	// KindFunction handlers name a built-in action from the catalog.
	KindFunction HandlerKind = iota

	// KindBlock handlers carry a caller-supplied executable payload.
	KindBlock
)

// String returns the kind name.
func (k HandlerKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Block is an opaque executable payload bound to a chord. The table never
// inspects it; the editing loop calls Run when the chord is pressed.
type Block interface {
	Run(ev *key.Event, arg any) error
}

// BlockFunc adapts a function to Block.
type BlockFunc func(ev *key.Event, arg any) error

// Run implements Block.
func (f BlockFunc) Run(ev *key.Event, arg any) error {
	return f(ev, arg)
}

// Handler is the action triggered by a chord: either a named built-in
// function or a Block.
type Handler struct {
	Kind HandlerKind

	// Function is the action name for KindFunction handlers.
	Function string

	// Block is the payload for KindBlock handlers.
	Block Block

	// BriefDescription is a short label for display.
	BriefDescription string

	// LongDescription is free-form help text.
	LongDescription string
}

// Function returns a handler that invokes the named built-in action.
func Function(name string) Handler {
	return Handler{Kind: KindFunction, Function: name}
}

// BlockHandler returns a handler that runs b.
func BlockHandler(b Block) Handler {
	return Handler{Kind: KindBlock, Block: b}
}

// WithDescriptions returns a copy of h with the given descriptions.
func (h Handler) WithDescriptions(brief, long string) Handler {
	h.BriefDescription = brief
	h.LongDescription = long
	return h
}

// Name returns the label shown for the handler: the brief description if
// set, otherwise the function name.
func (h Handler) Name() string {
	if h.BriefDescription != "" {
		return h.BriefDescription
	}
	if h.Kind == KindFunction {
		return h.Function
	}
	return "<block>"
}

// validateShape checks the handler is a well-formed variant. Catalog
// membership is checked separately by Table.Bind.
func (h Handler) validateShape() error {
	switch h.Kind {
	case KindFunction:
		if h.Function == "" {
			return errs.NewValidationError("Function", "function name is required", nil)
		}
	case KindBlock:
		if h.Block == nil {
			return errs.NewValidationError("ScriptBlock", "block is required", nil)
		}
	default:
		return errs.NewValidationError("Handler", "unknown handler kind", h.Kind)
	}
	return nil
}
