// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/explorer-mcp/internal/config"
)

var rawConfig = map[string]string{annotationRawConfig: "true"}

func newCmdConfig(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration file.",
		Long: `The configuration file is TOML. Environment variables (FILE_SEARCH_ROOT,
EXPLORER_*) override it at load time; show and get print the effective
values, set edits the file only.`,
	}

	cmd.AddCommand(
		newCmdConfigInit(a),
		newCmdConfigShow(a),
		newCmdConfigPath(a),
		newCmdConfigGet(a),
		newCmdConfigSet(a),
		newCmdConfigKeys(),
	)
	return cmd
}

func newCmdConfigInit(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings.",
		Args:        cobra.NoArgs,
		Annotations: rawConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &ConfigError{Path: path, Err: errors.New("file already exists (use --force to overwrite)")}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.Save(config.Default(), path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("Wrote"), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func newCmdConfigShow(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), a.cfg.String())
		},
	}
}

func newCmdConfigPath(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location.",
		Args:        cobra.NoArgs,
		Annotations: rawConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newCmdConfigGet(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one effective setting.",
		Example: "explorer-mcp config get search.max_results",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return &UsageError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		},
	}
}

func newCmdConfigSet(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file.",
		Long: `Set edits the config file in place. Lists are given comma-separated.
The result is validated before it is written.`,
		Example:     "explorer-mcp config set tools.disabled web_search,chat",
		Args:        exactArgs(2),
		Annotations: rawConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			cfg, err := config.ReadFile(path)
			if err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return &UsageError{Err: err}
			}
			if err := cfg.ValidateFile(); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.Save(cfg, path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", SuccessStyle.Render("Set"), args[0], args[1])
			return nil
		},
	}
}

func newCmdConfigKeys() *cobra.Command {
	return &cobra.Command{
		Use:         "keys",
		Short:       "List the settable keys.",
		Args:        cobra.NoArgs,
		Annotations: rawConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, key := range config.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
		},
	}
}

func formatValue(v interface{}) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprint(v)
}
