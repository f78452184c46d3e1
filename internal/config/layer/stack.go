package layer

import (
	"slices"
	"strings"
	"sync"

	"github.com/dshills/lineconf/internal/config/loader"
)

// Stack holds layers sorted by priority and caches their merge.
type Stack struct {
	mu     sync.RWMutex
	layers []*Layer
	merged map[string]any
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Put adds l, replacing any layer with the same name.
func (s *Stack) Put(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = slices.DeleteFunc(s.layers, func(x *Layer) bool { return x.Name == l.Name })
	s.layers = append(s.layers, l)
	slices.SortStableFunc(s.layers, func(a, b *Layer) int { return a.Priority - b.Priority })
	s.merged = nil
}

// Remove drops the named layer and reports whether it existed.
func (s *Stack) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.layers)
	s.layers = slices.DeleteFunc(s.layers, func(x *Layer) bool { return x.Name == name })
	if len(s.layers) == n {
		return false
	}
	s.merged = nil
	return true
}

// Get returns the named layer or nil.
func (s *Stack) Get(name string) *Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(name)
}

func (s *Stack) find(name string) *Layer {
	for _, l := range s.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Layers returns the layers, lowest priority first.
func (s *Stack) Layers() []*Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.layers)
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Merge returns a fresh copy of all layers merged by priority.
func (s *Stack) Merge() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.merged == nil {
		merged := make(map[string]any)
		for _, l := range s.layers {
			merged = loader.DeepMerge(merged, cloneMap(l.Data))
		}
		s.merged = merged
	}
	return cloneMap(s.merged)
}

// Set stores value at a dotted path in the named layer, creating the layer
// as a session layer if it does not exist.
func (s *Stack) Set(name, path string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.find(name)
	if l == nil {
		l = New(name, SourceSession)
		s.layers = append(s.layers, l)
		slices.SortStableFunc(s.layers, func(a, b *Layer) int { return a.Priority - b.Priority })
	}
	setPath(l.Data, path, value)
	s.merged = nil
}

// Origin returns the name of the highest layer that sets path.
func (s *Stack) Origin(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range slices.Backward(s.layers) {
		if _, ok := getPath(l.Data, path); ok {
			return l.Name, true
		}
	}
	return "", false
}

func getPath(data map[string]any, path string) (any, bool) {
	var cur any = data
	for part := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	m := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
