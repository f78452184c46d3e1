package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/engine"
	"github.com/dshills/lineconf/internal/terminal"
)

func tryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "try",
		Short: "Edit lines interactively with the current settings",
		Long: `Edit lines interactively with the current settings.

The settings file is watched and reloaded while the prompt runs. Press
Ctrl+Q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("try needs an interactive terminal")
			}

			a, err := newApp(cmd, configPath(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.load(ctx); err != nil {
				return err
			}

			prompt, _ := cmd.Flags().GetString("prompt")
			return runPrompt(ctx, a, prompt)
		},
	}
	cmd.Flags().String("prompt", terminal.DefaultPrompt, "prompt text")
	return cmd
}

func runPrompt(ctx context.Context, a *app, promptText string) error {
	t, err := terminal.New()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := t.Init(); err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer t.Shutdown()

	p := terminal.NewPrompt(t, a.store, terminal.WithPrompt(promptText), terminal.WithLogger(a.logger))
	session := engine.NewSession(a.store, a.table, a.actions,
		engine.WithBell(p),
		engine.WithLogger(a.logger))

	sub := a.notifier.SubscribePath(notify.SectionPalette, func(notify.Change) { p.Refresh() })
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := a.config.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("settings will not reload", slog.Any("error", err))
		}
	}()

	err = p.Run(ctx, session)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
