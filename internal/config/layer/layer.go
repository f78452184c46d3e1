// Package layer stacks lineconf settings sources by priority.
//
// A settings file, the environment and per-session overrides each form one
// layer. Merging applies layers from lowest to highest priority so that a
// higher layer overrides individual keys of a lower one.
package layer

import "fmt"

// Source indicates where a layer came from.
type Source uint8

const (
	// SourceFile is a settings file on disk.
	SourceFile Source = iota
	// SourceEnv is LINECONF_ environment variables.
	SourceEnv
	// SourceArgs is command-line overrides.
	SourceArgs
	// SourceSession is overrides made while running.
	SourceSession
)

// Standard priorities. Higher values win.
const (
	PriorityFile    = 100
	PriorityEnv     = 500
	PriorityArgs    = 600
	PrioritySession = 1000
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceEnv:
		return "environment"
	case SourceArgs:
		return "arguments"
	case SourceSession:
		return "session"
	default:
		return fmt.Sprintf("Source(%d)", s)
	}
}

// DefaultPriority returns the standard priority for source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceEnv:
		return PriorityEnv
	case SourceArgs:
		return PriorityArgs
	case SourceSession:
		return PrioritySession
	default:
		return PriorityFile
	}
}

// Layer is one settings source.
type Layer struct {
	Name     string
	Source   Source
	Priority int

	// Path is the file the layer was read from, if any.
	Path string

	Data map[string]any
}

// New returns an empty layer at the standard priority for source.
func New(name string, source Source) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     make(map[string]any),
	}
}

// WithData returns a layer holding data at the standard priority for source.
func WithData(name string, source Source, data map[string]any) *Layer {
	l := New(name, source)
	if data != nil {
		l.Data = data
	}
	return l
}

// Clone returns a deep copy of l.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Data = cloneMap(l.Data)
	return &c
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
