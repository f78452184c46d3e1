package config

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/lineconf/internal/catalog"
	"github.com/dshills/lineconf/internal/config/loader"
	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/config/watcher"
	"github.com/dshills/lineconf/internal/engine"
	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/key"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/optional"
	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/palette"
)

const sampleTOML = `
[options]
EditMode = "Emacs"
bell_style = "none"
maximum-history-count = 50
ding_duration = 75
history_save_path = "history.txt"
validation_handler = 'if arg == "bad" then return "no bad lines" end'
add_to_history_handler = 'return not string.find(arg, "secret")'

[colors]
Error = { fg = "Red", bg = "Black" }
Comment = "DarkYellow"

[[keyhandler]]
chords = ["Ctrl+d", "Alt+d"]
function = "DeleteChar"

[[keyhandler]]
chords = "Alt+h"
script = 'arg.insert("hello")'
brief = "greet"

[[keyhandler]]
chords = "Alt+w"
script_file = "scripts/world.lua"
`

type fixture struct {
	acts     *engine.Actions
	store    *options.Store
	table    *keymap.Table
	notifier *notify.Notifier
	cfg      *Config
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, fsys loader.FileSystem, path string, env ...string) *fixture {
	t.Helper()
	f := &fixture{
		acts:     engine.NewActions(),
		notifier: notify.New(),
		logs:     &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.store = options.NewStore("test", options.WithNotifier(f.notifier))
	f.table = keymap.NewTable(catalog.New(f.acts))
	require.NoError(t, keymap.LoadDefaults(f.table, keymap.ModeWindows))

	envLoader := loader.NewEnvLoader(loader.DefaultEnvPrefix).WithEnviron(func() []string { return env })
	f.cfg = New(f.store, f.table,
		WithPath(path),
		WithFS(fsys),
		WithEnv(envLoader),
		WithNotifier(f.notifier),
		WithLogger(logger))
	return f
}

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"lineconf.toml":     {Data: []byte(sampleTOML)},
		"scripts/world.lua": {Data: []byte(`arg.insert("world")`)},
	}
}

func TestLoadAppliesOptions(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")
	require.NoError(t, f.cfg.Load(context.Background()))

	cfg := f.store.Get()
	assert.Equal(t, options.EditModeEmacs, cfg.EditMode)
	assert.Equal(t, options.BellNone, cfg.BellStyle)
	assert.Equal(t, 50, cfg.MaximumHistoryCount)
	assert.Equal(t, 75*time.Millisecond, cfg.DingDuration)
	assert.Equal(t, "history.txt", cfg.HistorySavePath)
	assert.Equal(t, palette.Pair{FG: palette.Red, BG: palette.Black}, cfg.Palette.Error)
	assert.Equal(t, palette.DarkYellow, cfg.Palette.Token(palette.TokenComment).FG)

	// Untouched options keep their defaults.
	def := options.Defaults("test")
	assert.Equal(t, def.MaximumKillRingCount, cfg.MaximumKillRingCount)
	assert.Equal(t, def.WordDelimiters, cfg.WordDelimiters)

	require.NotNil(t, cfg.ValidationHandler)
	assert.EqualError(t, cfg.ValidationHandler("bad"), "no bad lines")
	assert.NoError(t, cfg.ValidationHandler("good"))

	require.NotNil(t, cfg.AddToHistoryHandler)
	assert.False(t, cfg.AddToHistoryHandler("my secret"))
	assert.True(t, cfg.AddToHistoryHandler("ls"))
}

func TestLoadBindsKeyHandlers(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")
	require.NoError(t, f.cfg.Load(context.Background()))

	for _, spec := range []string{"Ctrl+d", "Alt+d"} {
		h, ok, err := f.table.LookupSpec(spec)
		require.NoError(t, err)
		require.True(t, ok, spec)
		assert.Equal(t, "DeleteChar", h.Function)
	}

	h, ok, err := f.table.LookupSpec("Alt+h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, keymap.KindBlock, h.Kind)
	assert.Equal(t, "greet", h.Name())

	// Defaults for the new edit mode were loaded underneath.
	_, ok, err = f.table.LookupSpec("Ctrl+a")
	require.NoError(t, err)
	assert.True(t, ok, "emacs BeginningOfLine default")

	s := engine.NewSession(f.store, f.table, f.acts)
	for _, spec := range []string{"Alt+h", "Alt+w"} {
		for _, ev := range key.MustParseChord(spec).Events {
			_, err := s.HandleKey(ev)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, "helloworld", s.Line())
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{"lineconf.yaml": {Data: []byte(`
options:
  bell_style: Visual
  ding_duration: 20ms
colors:
  Keyword:
    foreground: Cyan
keyhandler:
  - chords: [Ctrl+k]
    function: KillLine
`)}}
	f := newFixture(t, fsys, "lineconf.yaml")
	require.NoError(t, f.cfg.Load(context.Background()))

	cfg := f.store.Get()
	assert.Equal(t, options.BellVisual, cfg.BellStyle)
	assert.Equal(t, 20*time.Millisecond, cfg.DingDuration)
	assert.Equal(t, palette.Cyan, cfg.Palette.Token(palette.TokenKeyword).FG)

	h, ok, err := f.table.LookupSpec("Ctrl+k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "KillLine", h.Function)
}

func TestLayerPrecedence(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml",
		"LINECONF_BELL_STYLE=Audible",
		"LINECONF_MAXIMUM_HISTORY_COUNT=10",
		"UNRELATED=1")
	f.cfg.Set("options.maximum_history_count", int64(5))
	require.NoError(t, f.cfg.Load(context.Background()))

	cfg := f.store.Get()
	assert.Equal(t, options.BellAudible, cfg.BellStyle, "environment beats file")
	assert.Equal(t, 5, cfg.MaximumHistoryCount, "session beats environment")

	origin, ok := f.cfg.Layers().Origin("options.bell_style")
	require.True(t, ok)
	assert.Equal(t, LayerEnv, origin)
}

func TestMissingFileUsesEnvironmentOnly(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "absent.toml", "LINECONF_SHOW_TOOL_TIPS=false")
	require.NoError(t, f.cfg.Load(context.Background()))

	assert.False(t, f.store.Get().ShowToolTips)
	assert.Nil(t, f.cfg.Layers().Get(LayerFile))
}

func TestApplyIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		toml string
		is   error
	}{
		{
			name: "unknown function",
			toml: "[options]\nbell_style = \"None\"\n[[keyhandler]]\nchords = \"Ctrl+d\"\nfunction = \"NoSuchThing\"\n",
			is:   errs.ErrValidation,
		},
		{
			name: "bad chord",
			toml: "[options]\nbell_style = \"None\"\n[[keyhandler]]\nchords = \"Ctrl+Nope\"\nfunction = \"DeleteChar\"\n",
			is:   errs.ErrParse,
		},
		{
			name: "negative count",
			toml: "[options]\nbell_style = \"None\"\nmaximum_history_count = -1\n",
			is:   errs.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"lineconf.toml": {Data: []byte(tt.toml)}}
			f := newFixture(t, fsys, "lineconf.toml")
			before := f.table.Len()

			err := f.cfg.Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.Equal(t, options.BellAudible, f.store.Get().BellStyle, "options unchanged")
			assert.Equal(t, before, f.table.Len(), "bindings unchanged")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		is   error
	}{
		{"unknown section", map[string]any{"bogus": map[string]any{}}, errs.ErrValidation},
		{"unknown option", map[string]any{"options": map[string]any{"color_depth": int64(8)}}, errs.ErrValidation},
		{"wrong type", map[string]any{"options": map[string]any{"bell_style": int64(1)}}, errs.ErrValidation},
		{"bad enum", map[string]any{"options": map[string]any{"edit_mode": "Vi"}}, errs.ErrValidation},
		{"fractional int", map[string]any{"options": map[string]any{"ding_tone": 1.5}}, errs.ErrValidation},
		{"bad duration", map[string]any{"options": map[string]any{"ding_duration": "soon"}}, errs.ErrValidation},
		{"unknown slot", map[string]any{"colors": map[string]any{"Sparkle": "Red"}}, errs.ErrValidation},
		{"bad color", map[string]any{"colors": map[string]any{"Error": "Mauve"}}, errs.ErrParse},
		{"bad color key", map[string]any{"colors": map[string]any{"Error": map[string]any{"fill": "Red"}}}, errs.ErrValidation},
		{"handler without action", map[string]any{"keyhandler": []any{map[string]any{"chords": "Ctrl+a"}}}, errs.ErrValidation},
		{"handler with two actions", map[string]any{"keyhandler": []any{map[string]any{
			"chords": "Ctrl+a", "function": "Abort", "script": "return 1",
		}}}, errs.ErrValidation},
		{"bad script", map[string]any{"keyhandler": []any{map[string]any{
			"chords": "Ctrl+a", "script": "this is not lua",
		}}}, errs.ErrParse},
		{"bad history handler", map[string]any{"options": map[string]any{"add_to_history_handler": "return ("}}, errs.ErrParse},
	}

	f := newFixture(t, fstest.MapFS{}, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cfg.Decode(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestDecodeMissingScriptFile(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "conf/lineconf.toml")
	_, err := f.cfg.Decode(map[string]any{"keyhandler": []any{map[string]any{
		"chords": "Ctrl+a", "script_file": "missing.lua",
	}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join("conf", "missing.lua"))
}

func TestDecodeClearsHandler(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "")
	s, err := f.cfg.Decode(map[string]any{"options": map[string]any{"validation_handler": ""}})
	require.NoError(t, err)

	h, ok := s.Update.ValidationHandler.Get()
	assert.True(t, ok)
	assert.Nil(t, h)
}

func TestDecodeResetTokenColors(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "")
	require.NoError(t, f.store.Apply(options.Update{
		TokenColors: map[palette.TokenKind]palette.Override{
			palette.TokenString: {FG: optional.Some(palette.Magenta)},
		},
	}))

	s, err := f.cfg.Decode(map[string]any{"colors": map[string]any{"reset_token_colors": true}})
	require.NoError(t, err)
	require.NoError(t, f.cfg.Apply(s, "test"))

	def := options.Defaults("test")
	assert.Equal(t, def.Palette.Token(palette.TokenString), f.store.Get().Palette.Token(palette.TokenString))
}

func TestApplyNotifies(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")

	var (
		mu      sync.Mutex
		changes []notify.Change
	)
	sub := f.notifier.Subscribe(func(c notify.Change) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
	})
	defer sub.Unsubscribe()

	require.NoError(t, f.cfg.Load(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, changes)
	assert.Equal(t, notify.ChangeReload, changes[len(changes)-1].Type)

	var bound []string
	for _, c := range changes {
		if c.Type == notify.ChangeBind {
			bound = append(bound, c.Path)
			assert.Equal(t, "lineconf.toml", c.Source)
		}
	}
	assert.Contains(t, bound, "keys.Ctrl+d")
	assert.Contains(t, bound, "keys.Alt+h")
}

func TestApplyLogsRebinds(t *testing.T) {
	fsys := fstest.MapFS{"lineconf.toml": {Data: []byte("[[keyhandler]]\nchords = \"Ctrl+v\"\nfunction = \"EndOfLine\"\n")}}
	f := newFixture(t, fsys, "lineconf.toml")
	require.NoError(t, f.cfg.Load(context.Background()))

	assert.Contains(t, f.logs.String(), "settings rebound chord")
	h, _, err := f.table.LookupSpec("Ctrl+v")
	require.NoError(t, err)
	assert.Equal(t, "EndOfLine", h.Function)
}

func TestLoadCanceled(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.cfg.Load(ctx), context.Canceled)
}

func TestWatchWithoutPath(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "")
	assert.ErrorIs(t, f.cfg.Watch(context.Background()), ErrNoPath)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lineconf.toml")
	require.NoError(t, os.WriteFile(path, []byte("[options]\nbell_style = \"None\"\n"), 0o644))

	f := newFixture(t, loader.OSFS{}, path)
	require.NoError(t, f.cfg.Load(context.Background()))
	require.Equal(t, options.BellNone, f.store.Get().BellStyle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.cfg.Watch(ctx, watcher.WithDebounce(20*time.Millisecond)) }()
	defer func() {
		cancel()
		err := <-done
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Watch: %v", err)
		}
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[options]\nbell_style = \"Visual\"\n"), 0o644))

	assert.Eventually(t, func() bool {
		return f.store.Get().BellStyle == options.BellVisual
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCheckDoesNotApply(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")
	s, err := f.cfg.Read()
	require.NoError(t, err)
	require.NoError(t, f.cfg.Check(s))

	assert.Equal(t, options.EditModeWindows, f.store.Get().EditMode)
	_, ok, err := f.table.LookupSpec("Alt+h")
	require.NoError(t, err)
	assert.False(t, ok)

	s.KeyHandlers = append(s.KeyHandlers, KeyHandler{Chords: []string{"Ctrl+x"}, Handler: keymap.Function("Nope")})
	assert.ErrorIs(t, f.cfg.Check(s), errs.ErrValidation)
}

func TestOrigin(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml", "LINECONF_DING_TONE=300")
	f.cfg.Set("options.show_tool_tips", false)
	_, err := f.cfg.Read()
	require.NoError(t, err)

	tests := []struct {
		option string
		want   string
		ok     bool
	}{
		{"edit_mode", LayerFile, true},
		{"MaximumHistoryCount", LayerFile, true},
		{"ding_tone", LayerEnv, true},
		{"ShowToolTips", LayerSession, true},
		{"word_delimiters", "", false},
	}
	for _, tt := range tests {
		got, ok := f.cfg.Origin(tt.option)
		assert.Equal(t, tt.ok, ok, tt.option)
		assert.Equal(t, tt.want, got, tt.option)
	}
}

func TestReloadKeepsBindingsVisible(t *testing.T) {
	f := newFixture(t, sampleFS(), "lineconf.toml")
	require.NoError(t, f.cfg.Load(context.Background()))

	stop := make(chan struct{})
	misses := make(chan int, 1)
	go func() {
		n := 0
		for {
			select {
			case <-stop:
				misses <- n
				return
			default:
			}
			for _, chord := range []string{"Enter", "Alt+h", "Ctrl+d"} {
				if _, ok, _ := f.table.LookupSpec(chord); !ok {
					n++
				}
			}
		}
	}()

	for range 100 {
		require.NoError(t, f.cfg.Load(context.Background()))
	}
	close(stop)
	assert.Zero(t, <-misses, "a reader saw bindings mid-reload")
}
