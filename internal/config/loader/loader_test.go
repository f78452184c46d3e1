package loader

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/lineconf/internal/errs"
)

func TestTOMLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"lineconf.toml": {Data: []byte(`
[options]
EditMode = "Emacs"
MaximumHistoryCount = 500
DingDuration = "80ms"

[colors]
Emphasis = { fg = "Cyan" }

[[keyhandler]]
chords = ["Ctrl+r"]
function = "RevertLine"
`)},
	}

	m, err := NewTOMLLoaderWithFS(fsys, "lineconf.toml").Load()
	require.NoError(t, err)

	opts := m["options"].(map[string]any)
	assert.Equal(t, "Emacs", opts["EditMode"])
	assert.Equal(t, int64(500), opts["MaximumHistoryCount"])

	handlers := m["keyhandler"].([]any)
	require.Len(t, handlers, 1)
	assert.Equal(t, "RevertLine", handlers[0].(map[string]any)["function"])
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	m, err := NewTOMLLoaderWithFS(fstest.MapFS{}, "nope.toml").Load()
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestTOMLParseError(t *testing.T) {
	_, err := ParseTOML("bad.toml", []byte("[options]\nEditMode = \n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrParse))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.toml", pe.Path)
	assert.Equal(t, 2, pe.Line)
}

func TestYAMLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"lineconf.yaml": {Data: []byte(`
options:
  BellStyle: Visual
  MaximumKillRingCount: 3
colors:
  Error: {fg: Yellow, bg: 0}
keyhandler:
  - chords: [Escape]
    function: RevertLine
`)},
	}

	m, err := NewYAMLLoaderWithFS(fsys, "lineconf.yaml").Load()
	require.NoError(t, err)

	opts := m["options"].(map[string]any)
	assert.Equal(t, "Visual", opts["BellStyle"])
	assert.Equal(t, int64(3), opts["MaximumKillRingCount"])

	colors := m["colors"].(map[string]any)
	assert.Equal(t, int64(0), colors["Error"].(map[string]any)["bg"])

	handlers := m["keyhandler"].([]any)
	chords := handlers[0].(map[string]any)["chords"].([]any)
	assert.Equal(t, []any{"Escape"}, chords)
}

func TestYAMLErrors(t *testing.T) {
	_, err := ParseYAML("list.yaml", []byte("- a\n- b\n"))
	assert.ErrorIs(t, err, errs.ErrParse)

	_, err = ParseYAML("bad.yaml", []byte("options: [unclosed\n"))
	assert.ErrorIs(t, err, errs.ErrParse)

	m, err := ParseYAML("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestNewFileLoader(t *testing.T) {
	fsys := fstest.MapFS{}

	l, err := NewFileLoader(fsys, "x.YML")
	require.NoError(t, err)
	assert.IsType(t, &YAMLLoader{}, l)

	l, err = NewFileLoader(fsys, "x.toml")
	require.NoError(t, err)
	assert.IsType(t, &TOMLLoader{}, l)

	_, err = NewFileLoader(fsys, "x.json")
	assert.Error(t, err)
}

func TestEnvLoader(t *testing.T) {
	env := []string{
		"HOME=/home/u",
		"LINECONF_BELL_STYLE=None",
		"LINECONF_MAXIMUM_HISTORY_COUNT=1",
		"LINECONF_SHOW_TOOL_TIPS=yes",
		"LINECONF_DING_DURATION=75ms",
		"LINECONF_CONFIG=/tmp/x.toml",
		"LINECONF_=ignored",
	}
	l := NewEnvLoader(DefaultEnvPrefix, "LINECONF_CONFIG").WithEnviron(func() []string { return env })

	m, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"options": map[string]any{
			"bell_style":            "None",
			"maximum_history_count": int64(1),
			"show_tool_tips":        true,
			"ding_duration":         75 * time.Millisecond,
		},
	}, m)

	empty := NewEnvLoader(DefaultEnvPrefix).WithEnviron(func() []string { return []string{"PATH=/bin"} })
	m, err = empty.Load()
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"options": map[string]any{"a": 1, "b": 2},
		"colors":  map[string]any{"Error": "Red"},
	}
	src := map[string]any{
		"options": map[string]any{"b": 3},
		"colors":  "replaced",
	}
	got := DeepMerge(dst, src)
	assert.Equal(t, map[string]any{
		"options": map[string]any{"a": 1, "b": 3},
		"colors":  "replaced",
	}, got)
	assert.Equal(t, map[string]any{"x": 1}, DeepMerge(nil, map[string]any{"x": 1}))
}
