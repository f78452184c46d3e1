// Package keymap provides the key binding table of the line editor.
//
// The table maps chords to handlers. A handler is either the name of a
// built-in function, validated against the action catalog, or an opaque
// Block supplied by the caller.
//
// # Binding
//
// Bind takes a set of chords and one handler. All chords are parsed and the
// handler validated before anything is written, so a failing call leaves
// the table as it was. Rebinding a chord replaces its handler and reports a
// non-fatal warning.
//
//	table := keymap.NewTable(catalog.New(engineActions))
//	res, err := table.Bind([]string{"Ctrl+r", "F8"}, keymap.Function("ReverseSearchHistory"))
//
// # Lookup
//
// Multi-key chords are stored in a prefix tree so the editing loop can ask
// whether the keys typed so far may still complete a binding:
//
//	if h, ok := table.Lookup(pending); ok {
//	    // dispatch h
//	} else if table.HasPrefix(pending) {
//	    // wait for more keys
//	}
//
// # Query
//
// Query partitions the catalog into bound entries and unbound function
// names. With no flag set both partitions are returned; setting only one
// flag returns only that partition.
package keymap
