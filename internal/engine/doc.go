// Package engine is a minimal line-editing engine driven by the key binding
// table and the options store.
//
// # Actions
//
// Built-in editing actions live in an Actions dispatch table built once at
// construction. Each action is registered with a calling convention; only
// key-handler actions are exposed to the binding catalog:
//
//	acts := engine.NewActions()
//	cat := catalog.New(acts)
//	table := keymap.NewTable(cat)
//
// # Sessions
//
// A Session owns one input line. HandleKey resolves each key press through
// the binding table, buffering multi-key prefixes, and runs the bound
// action or Block. Unbound printable characters are inserted.
//
//	s := engine.NewSession(store, table, acts)
//	out, err := s.HandleKey(key.NewRuneEvent('x', key.ModNone))
//
// Sessions are not safe for concurrent use; the options store and the
// binding table they read from are.
package engine
