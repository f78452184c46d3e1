package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/dshills/lineconf/internal/config/layer"
	"github.com/dshills/lineconf/internal/config/loader"
	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/config/watcher"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/script"
)

// Layer names used by Config.
const (
	LayerFile    = "file"
	LayerEnv     = "environment"
	LayerSession = "session"
)

// ErrNoPath is returned by Watch when no settings file is configured.
var ErrNoPath = errors.New("no settings file configured")

// Config ties the settings sources to a store and a binding table.
type Config struct {
	mu sync.Mutex

	path       string
	fs         loader.FileSystem
	env        *loader.EnvLoader
	layers     *layer.Stack
	store      *options.Store
	table      *keymap.Table
	notifier   *notify.Notifier
	logger     *slog.Logger
	scriptOpts []script.Option
}

// Option configures a Config.
type Option func(*Config)

// WithPath sets the settings file. Without it only the environment and
// session layers are read.
func WithPath(path string) Option {
	return func(c *Config) { c.path = path }
}

// WithFS reads the settings file and script files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) { c.fs = fsys }
}

// WithEnv replaces the environment loader. A nil loader disables the
// environment layer.
func WithEnv(env *loader.EnvLoader) Option {
	return func(c *Config) { c.env = env }
}

// WithNotifier announces key binding changes and reloads through n. Pass
// the same notifier to the options store to see option changes too.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Config) { c.notifier = n }
}

// WithLogger sets the logger for reload and rebinding messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithScriptOptions are passed to every script compiled from settings.
func WithScriptOptions(opts ...script.Option) Option {
	return func(c *Config) { c.scriptOpts = append(c.scriptOpts, opts...) }
}

// New creates a Config that applies settings to store and table.
func New(store *options.Store, table *keymap.Table, opts ...Option) *Config {
	c := &Config{
		fs:     loader.DefaultFS(),
		env:    loader.NewEnvLoader(loader.DefaultEnvPrefix, "LINECONF_CONFIG", "LINECONF_LOG_LEVEL"),
		layers: layer.NewStack(),
		store:  store,
		table:  table,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scriptOpts = append([]script.Option{script.WithLogger(c.logger)}, c.scriptOpts...)
	return c
}

// Path returns the settings file path.
func (c *Config) Path() string { return c.path }

// Layers returns the settings layers.
func (c *Config) Layers() *layer.Stack { return c.layers }

// Origin returns the name of the highest layer that sets the named option.
// Option names match loosely, as in settings files.
func (c *Config) Origin(option string) (string, bool) {
	want := normalizeKey(option)
	for _, l := range slices.Backward(c.layers.Layers()) {
		section, _ := l.Data[sectionOptions].(map[string]any)
		for k := range section {
			if normalizeKey(k) == want {
				return l.Name, true
			}
		}
	}
	return "", false
}

// Set records a session override at a dotted path such as
// "options.bell_style". It takes effect on the next Load.
func (c *Config) Set(path string, value any) {
	c.layers.Set(LayerSession, path, value)
}

// Read refreshes the file and environment layers and decodes the merged
// result. Nothing is applied.
func (c *Config) Read() (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refresh(); err != nil {
		return Settings{}, err
	}
	return c.Decode(c.layers.Merge())
}

func (c *Config) refresh() error {
	if c.path != "" {
		l, err := loader.NewFileLoader(c.fs, c.path)
		if err != nil {
			return err
		}
		data, err := l.Load()
		if err != nil {
			return err
		}
		if data == nil {
			c.logger.Debug("settings file not found", slog.String("path", c.path))
			c.layers.Remove(LayerFile)
		} else {
			fl := layer.WithData(LayerFile, layer.SourceFile, data)
			fl.Path = c.path
			c.layers.Put(fl)
		}
	}

	if c.env != nil {
		data, err := c.env.Load()
		if err != nil {
			return fmt.Errorf("reading environment: %w", err)
		}
		if data == nil {
			c.layers.Remove(LayerEnv)
		} else {
			c.layers.Put(layer.WithData(LayerEnv, layer.SourceEnv, data))
		}
	}
	return nil
}

// Decode converts a settings map into typed settings. Relative script and
// history paths resolve against the settings file's directory.
func (c *Config) Decode(m map[string]any) (Settings, error) {
	d := &decoder{fs: c.fs, scriptOpts: c.scriptOpts}
	if c.path != "" {
		d.dir = filepath.Dir(c.path)
	}
	return d.decode(m)
}

// Load reads every layer and applies the result.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := c.Read()
	if err != nil {
		return err
	}
	source := c.path
	if source == "" {
		source = "environment"
	}
	return c.Apply(s, source)
}

// Apply validates s completely and then applies it: options are merged into
// the store and the table is replaced by the defaults for the resulting edit
// mode plus the key handlers, bound in order. The new bindings are built
// aside and installed in one swap. On error nothing has changed.
func (c *Config) Apply(s Settings, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode, err := c.check(s)
	if err != nil {
		return err
	}

	staged := c.table.Staging()
	if err := keymap.LoadDefaults(staged, mode.String()); err != nil {
		return err
	}

	var changes []notify.Change
	for i, kh := range s.KeyHandlers {
		res, err := staged.Bind(kh.Chords, kh.Handler)
		if err != nil {
			// Validated above; a failure here means the catalog changed
			// underneath us.
			return fmt.Errorf("keyhandler %d: %w", i, err)
		}
		for _, w := range res.Warnings {
			c.logger.Warn("settings rebound chord",
				slog.String("chord", w.Subject),
				slog.String("source", source))
		}
		for _, ch := range res.Chords {
			changes = append(changes, notify.Change{
				Path:     notify.Join(notify.SectionKeys, ch.String()),
				Type:     notify.ChangeBind,
				NewValue: kh.Handler.Name(),
				Source:   source,
			})
		}
	}

	if err := c.store.ApplyFrom(s.Update, source); err != nil {
		return err
	}
	c.table.Replace(staged)

	var batch *notify.Batch
	if c.notifier != nil {
		batch = c.notifier.NewBatch()
		for _, ch := range changes {
			batch.Add(ch)
		}
	}

	c.logger.Info("settings applied",
		slog.String("source", source),
		slog.Int("options", len(s.Update.Fields())),
		slog.Int("key_handlers", len(s.KeyHandlers)))

	if batch != nil {
		batch.Commit()
		c.notifier.NotifyReload(source)
	}
	return nil
}

// Check validates s as Apply would, without applying it.
func (c *Config) Check(s Settings) error {
	_, err := c.check(s)
	return err
}

// check returns the edit mode s would leave in effect.
func (c *Config) check(s Settings) (options.EditMode, error) {
	if err := s.Update.Validate(); err != nil {
		return 0, err
	}
	for i, kh := range s.KeyHandlers {
		if err := c.table.Validate(kh.Chords, kh.Handler); err != nil {
			return 0, fmt.Errorf("keyhandler %d: %w", i, err)
		}
	}
	mode := s.Update.EditMode.Or(c.store.Get().EditMode)
	if _, err := keymap.DefaultBindings(mode.String()); err != nil {
		return 0, err
	}
	return mode, nil
}

// Watch reloads the settings file whenever it changes, until ctx is done.
// Reload failures are logged and leave the live settings unchanged.
func (c *Config) Watch(ctx context.Context, opts ...watcher.Option) error {
	if c.path == "" {
		return ErrNoPath
	}

	opts = append([]watcher.Option{watcher.WithLogger(c.logger)}, opts...)
	w, err := watcher.New(opts...)
	if err != nil {
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove {
			c.logger.Info("settings file removed; keeping current settings", slog.String("path", ev.Path))
			return
		}
		if err := c.Load(ctx); err != nil {
			c.logger.Error("reloading settings", slog.String("path", ev.Path), slog.Any("error", err))
		}
	})
	if err := w.Watch(c.path); err != nil {
		return err
	}
	return w.Run(ctx)
}
