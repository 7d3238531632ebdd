// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/explorer-mcp/internal/reveal"
)

func newCmdReveal(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <path>",
		Short: "Show a file or directory in the desktop file manager.",
		Long: `Reveal selects <path> in Finder on macOS, in Explorer on Windows, and
opens its parent directory with xdg-open elsewhere.`,
		Example: "explorer-mcp reveal ~/Documents/report_final.txt",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.newRevealer().Reveal(cmd.Context(), args[0])
			if errors.Is(err, reveal.ErrNotExist) {
				return &NotFoundError{Resource: "path", ID: target}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("Revealed"), target)
			return nil
		},
	}
}
