package keymap

import "github.com/dshills/lineconf/internal/input/key"

// PrefixTree indexes bindings by chord for exact and prefix lookup.
type PrefixTree struct {
	root *prefixNode
}

type prefixNode struct {
	children map[key.Event]*prefixNode
	entry    *entry
}

// NewPrefixTree creates a new prefix tree.
func NewPrefixTree() *PrefixTree {
	return &PrefixTree{root: newPrefixNode()}
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[key.Event]*prefixNode)}
}

// insert stores e at the node for its chord, replacing any previous entry.
func (t *PrefixTree) insert(e *entry) {
	node := t.root
	for _, ev := range e.chord.Events {
		child, ok := node.children[ev]
		if !ok {
			child = newPrefixNode()
			node.children[ev] = child
		}
		node = child
	}
	node.entry = e
}

// remove deletes the entry for chord and prunes empty nodes.
func (t *PrefixTree) remove(chord key.Chord) {
	if chord.IsEmpty() {
		return
	}

	path := make([]*prefixNode, 0, chord.Len()+1)
	path = append(path, t.root)

	node := t.root
	for _, ev := range chord.Events {
		child, ok := node.children[ev]
		if !ok {
			return
		}
		path = append(path, child)
		node = child
	}
	node.entry = nil

	// Prune empty nodes from leaf to root
	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		if current.entry != nil || len(current.children) > 0 {
			break
		}
		delete(path[i-1].children, chord.Events[i-1])
	}
}

// lookup finds the entry bound to exactly chord.
func (t *PrefixTree) lookup(chord key.Chord) *entry {
	node := t.find(chord)
	if node == nil {
		return nil
	}
	return node.entry
}

// hasLonger reports whether some bound chord strictly extends chord.
func (t *PrefixTree) hasLonger(chord key.Chord) bool {
	node := t.find(chord)
	return node != nil && len(node.children) > 0
}

func (t *PrefixTree) find(chord key.Chord) *prefixNode {
	node := t.root
	for _, ev := range chord.Events {
		child, ok := node.children[ev]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
