package engine

import "github.com/dshills/lineconf/internal/options"

// History is the list of accepted lines, oldest first.
type History struct {
	lines []string
}

// Lines returns a copy of the recorded lines.
func (h *History) Lines() []string {
	return append([]string(nil), h.lines...)
}

// Len returns the number of recorded lines.
func (h *History) Len() int {
	return len(h.lines)
}

// add records line under the policy in cfg. It reports whether the line
// was recorded.
func (h *History) add(cfg *options.Configuration, line string) bool {
	if line == "" {
		return false
	}
	if cfg.AddToHistoryHandler != nil && !cfg.AddToHistoryHandler(line) {
		return false
	}
	if cfg.HistoryNoDuplicates {
		for i, prev := range h.lines {
			if cfg.HistoryEqual(prev, line) {
				h.lines = append(h.lines[:i], h.lines[i+1:]...)
				break
			}
		}
	}
	h.lines = append(h.lines, line)
	h.trim(cfg.MaximumHistoryCount)
	return true
}

func (h *History) trim(limit int) {
	if limit <= 0 {
		h.lines = h.lines[:0]
		return
	}
	if over := len(h.lines) - limit; over > 0 {
		h.lines = append(h.lines[:0], h.lines[over:]...)
	}
}
