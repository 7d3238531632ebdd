// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/explorer-mcp/internal/search"
	"github.com/jeranaias/explorer-mcp/internal/tools"
	"github.com/jeranaias/explorer-mcp/internal/util"
)

type findOptions struct {
	root  string
	max   int
	plain bool
}

func newCmdFind(a *app) *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <keyword>",
		Short: "Find files whose names contain a keyword.",
		Long: `Find walks --root (default: search.root from the config, or your home
directory) and lists files whose names contain <keyword>, ignoring case.

Excluded directories are never entered and symbolic links are not
followed. The walk stops as soon as --max matches are found, so a capped
listing may not be exhaustive.`,
		Example: "explorer-mcp find invoice --root ~/Documents --max 5",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(a, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Directory to search (default from config)")
	cmd.Flags().IntVarP(&opts.max, "max", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print the same text the find_file tool returns")
	return cmd
}

func runFind(a *app, out io.Writer, keyword string, opts *findOptions) error {
	root := opts.root
	if root == "" {
		root = a.cfg.Search.Root
	}
	limit := opts.max
	if limit <= 0 {
		limit = a.cfg.Search.MaxResults
	}

	res, err := a.newEngine().Search(search.Request{
		Keyword:    keyword,
		Root:       root,
		MaxResults: limit,
	})
	if err != nil {
		return &UsageError{Err: err}
	}
	if res.RootMissing() {
		return &NotFoundError{Resource: "search root", ID: res.Root}
	}

	if opts.plain || !IsTerminal(out) {
		fmt.Fprintln(out, tools.FormatResult(res))
		return nil
	}
	fmt.Fprint(out, renderResult(res, TerminalWidth(out)))
	return nil
}

// =============================================================================
// STYLED OUTPUT
// =============================================================================

// renderResult lays out one match per two lines: name, size and timestamp,
// then the path shortened to fit width.
func renderResult(res search.Result, width int) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Files matching %q", res.Keyword)))
	b.WriteString("\n")
	b.WriteString(RenderField("Root", res.Root))
	b.WriteString("\n")
	b.WriteString(RenderSeparator(min(width, 70)))
	b.WriteString("\n")

	if len(res.Matches) == 0 {
		b.WriteString(WarningStyle.Render("No matching files found."))
		b.WriteString("\n")
		return b.String()
	}

	nameWidth := 0
	for _, rec := range res.Matches {
		nameWidth = max(nameWidth, util.StringWidth(rec.Name))
	}
	nameWidth = min(nameWidth, width/2)

	for i, rec := range res.Matches {
		name := util.PadRight(util.TruncateMiddle(rec.Name, nameWidth), nameWidth)
		fmt.Fprintf(&b, "%3d  %s  %9s  %s\n",
			i+1,
			HighlightMatch(name, res.Keyword),
			util.HumanBytes(rec.Size),
			DimStyle.Render(rec.Timestamp),
		)
		b.WriteString("     ")
		b.WriteString(DimStyle.Render(util.TruncateMiddle(rec.Path, width-6)))
		b.WriteString("\n")
	}

	b.WriteString(RenderSeparator(min(width, 70)))
	b.WriteString("\n")
	b.WriteString(summaryLine(res))
	b.WriteString("\n")
	return b.String()
}

func summaryLine(res search.Result) string {
	noun := "matches"
	if len(res.Matches) == 1 {
		noun = "match"
	}
	line := SuccessStyle.Render(fmt.Sprintf("%d %s", len(res.Matches), noun)) +
		DimStyle.Render(fmt.Sprintf(" in %s", res.Duration.Round(time.Millisecond)))
	if res.State == search.StateCapped {
		line += " " + WarningStyle.Render("(limit reached, more may exist)")
	}
	if res.Skipped > 0 {
		line += " " + WarningStyle.Render(fmt.Sprintf("(%d unreadable)", res.Skipped))
	}
	return line
}
