package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dshills/lineconf/internal/input/fuzzy"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/optional"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List key bindings and unbound functions",
		Long: `List key bindings and unbound functions.

With neither flag both lists are shown. Giving one flag shows only that
list unless the other is also given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, configPath(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			req, err := queryRequest(cmd)
			if err != nil {
				return err
			}
			res, err := a.table.Query(req)
			if err != nil {
				return err
			}

			if filter, _ := cmd.Flags().GetString("filter"); filter != "" {
				res = filterQuery(res, filter)
			}

			out := cmd.OutOrStdout()
			if len(res.Bound) > 0 {
				fmt.Fprintln(out, renderBound(res.Bound))
			}
			if len(res.Unbound) > 0 {
				fmt.Fprintln(out, headerStyle.Render("Unbound functions:"))
				fmt.Fprintln(out, cellStyle.Render(strings.Join(res.Unbound, "\n")))
			}
			return nil
		},
	}
	cmd.Flags().Bool("bound", false, "show bound chords")
	cmd.Flags().Bool("unbound", false, "show functions with no chord")
	cmd.Flags().StringP("filter", "f", "", "fuzzy filter on function names, e.g. bkl for BackwardKillLine")
	return cmd
}

// queryRequest passes on only the flags the user actually gave.
func queryRequest(cmd *cobra.Command) (keymap.QueryRequest, error) {
	var req keymap.QueryRequest
	for _, f := range []struct {
		name string
		dst  *optional.Value[bool]
	}{
		{"bound", &req.Bound},
		{"unbound", &req.Unbound},
	} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetBool(f.name)
		if err != nil {
			return req, err
		}
		*f.dst = optional.Some(v)
	}
	return req, nil
}

// filterQuery keeps the entries whose function name matches filter, best
// match first.
func filterQuery(res keymap.QueryResult, filter string) keymap.QueryResult {
	var out keymap.QueryResult
	for _, r := range fuzzy.Match(filter, res.Unbound, 0) {
		out.Unbound = append(out.Unbound, r.Name)
	}

	byName := make(map[string][]keymap.BoundEntry)
	names := make([]string, 0, len(res.Bound))
	for _, e := range res.Bound {
		n := e.Handler.Name()
		if _, seen := byName[n]; !seen {
			names = append(names, n)
		}
		byName[n] = append(byName[n], e)
	}
	for _, r := range fuzzy.Match(filter, names, 0) {
		out.Bound = append(out.Bound, byName[r.Name]...)
	}
	return out
}

func renderBound(entries []keymap.BoundEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CHORDS", "FUNCTION", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, e := range entries {
		function := e.Handler.Function
		if e.Handler.Kind == keymap.KindBlock {
			function = "<script>"
		}
		desc := e.Handler.BriefDescription
		if e.Handler.LongDescription != "" {
			desc = strings.TrimSpace(desc + " " + e.Handler.LongDescription)
		}
		t.Row(e.ChordString(), function, desc)
	}
	return t.String()
}
