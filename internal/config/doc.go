// Package config loads lineconf settings files and applies them to a live
// options store and key binding table.
//
// A settings file has three sections:
//
//	[options]
//	edit_mode = "Emacs"
//	bell_style = "None"
//	maximum_history_count = 1000
//	validation_handler = 'if arg == "" then return "empty line" end'
//
//	[colors]
//	Error = { fg = "Red", bg = "Black" }
//	Comment = "DarkYellow"
//
//	[[keyhandler]]
//	chords = ["Ctrl+d"]
//	function = "DeleteChar"
//
//	[[keyhandler]]
//	chords = "Alt+h"
//	script = 'arg.insert("hello")'
//	brief = "greet"
//
// Files may be TOML or YAML. LINECONF_ environment variables override the
// options section, and session overrides set through Config.Set override
// both. Applying settings is all-or-nothing: nothing is changed unless
// every option and key handler validates.
package config
