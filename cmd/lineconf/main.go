// Command lineconf inspects and exercises line editor settings: it prints
// the effective options and key bindings, checks settings files and runs an
// interactive prompt with live reload.
package main

import "os"

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
