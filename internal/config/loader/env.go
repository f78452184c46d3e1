package loader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEnvPrefix is the prefix of environment variables read into the
// options section.
const DefaultEnvPrefix = "LINECONF_"

// EnvLoader reads prefixed environment variables into the "options"
// section: LINECONF_BELL_STYLE=None becomes options.bell_style = "None".
type EnvLoader struct {
	prefix  string
	environ func() []string
	skip    map[string]bool
}

// NewEnvLoader creates an environment loader. Variables named in skip are
// ignored; they are typically consumed by the command line layer.
func NewEnvLoader(prefix string, skip ...string) *EnvLoader {
	l := &EnvLoader{prefix: prefix, environ: os.Environ, skip: make(map[string]bool)}
	for _, s := range skip {
		l.skip[s] = true
	}
	return l
}

// WithEnviron replaces the environment source, for tests.
func (l *EnvLoader) WithEnviron(environ func() []string) *EnvLoader {
	l.environ = environ
	return l
}

// Load returns the options found in the environment, or nil if none.
func (l *EnvLoader) Load() (map[string]any, error) {
	opts := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) || l.skip[name] {
			continue
		}
		field := strings.ToLower(strings.TrimPrefix(name, l.prefix))
		if field == "" {
			continue
		}
		opts[field] = ParseValue(value)
	}
	if len(opts) == 0 {
		return nil, nil
	}
	return map[string]any{"options": opts}, nil
}

// ParseValue guesses the type of an environment or command line value. Numbers stay
// numbers so that "1" is a count, not a boolean.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return s
}
