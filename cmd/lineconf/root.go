package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/lineconf/internal/catalog"
	"github.com/dshills/lineconf/internal/config"
	"github.com/dshills/lineconf/internal/config/loader"
	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/engine"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/optional"
	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/palette"
)

// Flag and viper keys.
const (
	keyConfig   = "config"
	keyHost     = "host"
	keyLogLevel = "log_level"
	keyLogFile  = "log_file"
	keySet      = "set"
	keyColor    = "color"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lineconf",
		Short:         "lineconf manages line editor options, colors and key bindings.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "settings file (default "+defaultConfigPath()+")")
	flags.String(keyHost, "lineconf", "host name used for the default history file")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.StringArray(keySet, nil, "override an option for this run, e.g. --set bell_style=None")
	flags.StringArray(keyColor, nil, "override a color slot after loading, e.g. --color Error=Red:Black or --color Comment=:DarkBlue")

	_ = viper.BindPFlag(keyConfig, flags.Lookup(keyConfig))
	_ = viper.BindPFlag(keyHost, flags.Lookup(keyHost))
	_ = viper.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFile, flags.Lookup("log-file"))

	cmd.AddCommand(optionsCmd(), keysCmd(), checkCmd(), tryCmd())
	return cmd
}

// Execute runs the command line.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig lets LINECONF_CONFIG, LINECONF_HOST, LINECONF_LOG_LEVEL and
// LINECONF_LOG_FILE stand in for the flags.
func initConfig() {
	viper.SetEnvPrefix("LINECONF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lineconf.toml"
	}
	return filepath.Join(dir, "lineconf", "lineconf.toml")
}

func configPath() string {
	if p := viper.GetString(keyConfig); p != "" {
		return p
	}
	return defaultConfigPath()
}

// newLogger builds the process logger. With quiet set and no log file the
// logs are dropped, since stderr belongs to the screen.
func newLogger(quiet bool) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString(keyLogLevel))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", viper.GetString(keyLogLevel))
	}

	path := viper.GetString(keyLogFile)
	if path == "" {
		if quiet {
			return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// app is the wired set of components every command works with.
type app struct {
	logger   *slog.Logger
	closer   io.Closer
	notifier *notify.Notifier
	actions  *engine.Actions
	store    *options.Store
	table    *keymap.Table
	config   *config.Config
	colors   []colorFlag
}

// newApp wires the components for path. Nothing is loaded yet.
func newApp(cmd *cobra.Command, path string, quiet bool) (*app, error) {
	logger, closer, err := newLogger(quiet)
	if err != nil {
		return nil, err
	}

	a := &app{
		logger:   logger,
		closer:   closer,
		notifier: notify.New(),
		actions:  engine.NewActions(),
	}
	a.store = options.NewStore(viper.GetString(keyHost),
		options.WithNotifier(a.notifier),
		options.WithLogger(logger))
	a.table = keymap.NewTable(catalog.Shared(a.actions, catalog.WithLogger(logger)), keymap.WithLogger(logger))
	if err := keymap.LoadDefaults(a.table, a.store.Get().EditMode.String()); err != nil {
		return nil, err
	}
	a.config = config.New(a.store, a.table,
		config.WithPath(path),
		config.WithNotifier(a.notifier),
		config.WithLogger(logger))

	sets, err := cmd.Flags().GetStringArray(keySet)
	if err != nil {
		return nil, err
	}
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: expected name=value", kv)
		}
		a.config.Set("options."+name, loader.ParseValue(value))
	}

	colors, err := cmd.Flags().GetStringArray(keyColor)
	if err != nil {
		return nil, err
	}
	for _, spec := range colors {
		c, err := parseColorFlag(spec)
		if err != nil {
			return nil, err
		}
		a.colors = append(a.colors, c)
	}
	return a, nil
}

// colorFlag is one parsed --color value.
type colorFlag struct {
	slot     palette.Slot
	override palette.Override
}

// parseColorFlag parses Slot=fg[:bg]. Either color may be left empty to keep
// the current one.
func parseColorFlag(spec string) (colorFlag, error) {
	name, value, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return colorFlag{}, fmt.Errorf("--color %q: expected Slot=fg[:bg]", spec)
	}
	slot, err := palette.ParseSlot(name)
	if err != nil {
		return colorFlag{}, fmt.Errorf("--color %q: %w", spec, err)
	}

	fg, bg, _ := strings.Cut(value, ":")
	var o palette.Override
	if fg != "" {
		c, err := palette.ParseColor(fg)
		if err != nil {
			return colorFlag{}, fmt.Errorf("--color %q: %w", spec, err)
		}
		o.FG = optional.Some(c)
	}
	if bg != "" {
		c, err := palette.ParseColor(bg)
		if err != nil {
			return colorFlag{}, fmt.Errorf("--color %q: %w", spec, err)
		}
		o.BG = optional.Some(c)
	}
	if o.IsEmpty() {
		return colorFlag{}, fmt.Errorf("--color %q: no color given", spec)
	}
	return colorFlag{slot: slot, override: o}, nil
}

// load applies every settings layer and then the --color overrides.
func (a *app) load(ctx context.Context) error {
	if err := a.config.Load(ctx); err != nil {
		return err
	}
	for _, c := range a.colors {
		if _, err := a.store.SetColor(c.slot, c.override); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) Close() {
	a.notifier.Close()
	_ = a.closer.Close()
}
