package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/palette"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	originStyle = lipgloss.NewStyle().Padding(0, 1).Faint(true)
)

func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show the effective options and colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, configPath(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			color := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Fprintln(cmd.OutOrStdout(), renderOptions(a))
			fmt.Fprintln(cmd.OutOrStdout(), renderPalette(a.store.Get().Palette, color))
			return nil
		},
	}
}

type optionRow struct {
	name, key string
	value     any
}

func optionRows(cfg options.Configuration) []optionRow {
	handler := func(set bool) string {
		if set {
			return "installed"
		}
		return "none"
	}
	return []optionRow{
		{"EditMode", "edit_mode", cfg.EditMode},
		{"ContinuationPrompt", "continuation_prompt", strconv.Quote(cfg.ContinuationPrompt)},
		{"ExtraPromptLineCount", "extra_prompt_line_count", cfg.ExtraPromptLineCount},
		{"AddToHistoryHandler", "add_to_history_handler", handler(cfg.AddToHistoryHandler != nil)},
		{"ValidationHandler", "validation_handler", handler(cfg.ValidationHandler != nil)},
		{"HistoryNoDuplicates", "history_no_duplicates", cfg.HistoryNoDuplicates},
		{"MaximumHistoryCount", "maximum_history_count", cfg.MaximumHistoryCount},
		{"MaximumKillRingCount", "maximum_kill_ring_count", cfg.MaximumKillRingCount},
		{"HistorySearchCursorMovesToEnd", "history_search_cursor_moves_to_end", cfg.HistorySearchCursorMovesToEnd},
		{"HistorySearchCaseSensitive", "history_search_case_sensitive", cfg.HistorySearchCaseSensitive},
		{"HistorySavePath", "history_save_path", cfg.HistorySavePath},
		{"HistorySaveStyle", "history_save_style", cfg.HistorySaveStyle},
		{"ShowToolTips", "show_tool_tips", cfg.ShowToolTips},
		{"DingTone", "ding_tone", cfg.DingTone},
		{"DingDuration", "ding_duration", cfg.DingDuration.Round(time.Millisecond)},
		{"BellStyle", "bell_style", cfg.BellStyle},
		{"CompletionQueryItems", "completion_query_items", cfg.CompletionQueryItems},
		{"WordDelimiters", "word_delimiters", strconv.Quote(cfg.WordDelimiters)},
	}
}

func renderOptions(a *app) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("OPTION", "VALUE", "FROM").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return originStyle
			default:
				return cellStyle
			}
		})
	for _, r := range optionRows(a.store.Get()) {
		origin, ok := a.config.Origin(r.key)
		if !ok {
			origin = "default"
		}
		t.Row(r.name, fmt.Sprint(r.value), origin)
	}
	return t.String()
}

func renderPalette(p palette.Palette, color bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SLOT", "FOREGROUND", "BACKGROUND", "SAMPLE")
	for _, s := range palette.Slots() {
		pair, err := p.Get(s)
		if err != nil {
			continue
		}
		t.Row(s.String(), pair.FG.String(), pair.BG.String(), sample(pair, color))
	}
	return t.String()
}

// sample renders example text in pair's colors.
func sample(pair palette.Pair, color bool) string {
	if !color {
		return "Sample"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(strconv.Itoa(pair.FG.ANSI()))).
		Background(lipgloss.Color(strconv.Itoa(pair.BG.ANSI()))).
		Render("Sample")
}
