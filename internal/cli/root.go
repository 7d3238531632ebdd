// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jeranaias/explorer-mcp/internal/config"
	"github.com/jeranaias/explorer-mcp/internal/logging"
	"github.com/jeranaias/explorer-mcp/internal/ollama"
	"github.com/jeranaias/explorer-mcp/internal/rag"
	"github.com/jeranaias/explorer-mcp/internal/reveal"
	"github.com/jeranaias/explorer-mcp/internal/search"
	"github.com/jeranaias/explorer-mcp/internal/tools"
)

// annotationRawConfig marks commands that must run even when the config file
// is invalid. They read the file themselves.
const annotationRawConfig = "raw-config"

// =============================================================================
// APP STATE
// =============================================================================

// app carries the state shared by every command.
type app struct {
	version string

	// Flags
	cfgPath   string
	logLevel  string
	logFormat string

	// Set by the persistent pre-run.
	cfg    *config.Config
	logger *slog.Logger

	// Overrides for tests; nil means the real OS.
	fs       afero.Fs
	revealer *reveal.Revealer
}

// NewRootCommand builds the explorer-mcp command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&app{version: version})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explorer-mcp",
		Short: "Find files by name and serve local tools over MCP.",
		Long: `explorer-mcp searches a directory tree for files whose names contain a
keyword, pruning VCS metadata, caches and dependency directories, and
stopping as soon as enough matches are found.

The same search is served to MCP clients over stdio or SSE, together with
reveal-in-file-manager, arithmetic, web search, LLM chat and PDF question
answering tools.

  explorer-mcp find report --root ~/Documents
  explorer-mcp serve --toolset files
  explorer-mcp serve --transport sse --addr 127.0.0.1:8765`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Config file (default: ~/.explorer-mcp/config.toml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	cmd.AddCommand(
		newCmdServe(a),
		newCmdFind(a),
		newCmdReveal(a),
		newCmdConfig(a),
		newCmdVersion(a),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	cmd := NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		DisplayError(cmd.ErrOrStderr(), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads configuration and installs the logger. Flags override the
// config file; logs always go to stderr.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationRawConfig] != "true" {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	opts := logging.Options{Level: a.logLevel, Format: a.logFormat}
	if a.cfg != nil {
		if opts.Level == "" {
			opts.Level = a.cfg.Log.Level
		}
		if opts.Format == "" {
			opts.Format = a.cfg.Log.Format
		}
	}
	logger, err := logging.New(cmd.ErrOrStderr(), opts)
	if err != nil {
		return &UsageError{Err: err}
	}
	slog.SetDefault(logger)
	a.logger = logger
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.cfgPath != "" {
		cfg, err := config.LoadFromPath(a.cfgPath)
		if err != nil {
			return nil, &ConfigError{Path: a.cfgPath, Err: err}
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		path, _ := config.ConfigPath()
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// configPath is the file the config subcommands read and write.
func (a *app) configPath() (string, error) {
	if a.cfgPath != "" {
		return a.cfgPath, nil
	}
	return config.ConfigPath()
}

// =============================================================================
// COLLABORATORS
// =============================================================================

func (a *app) newEngine() *search.Engine {
	opts := []search.Option{
		search.WithPolicy(a.cfg.SearchPolicy()),
		search.WithStatTimeout(a.cfg.StatTimeout()),
		search.WithLogger(a.logger),
	}
	if a.fs != nil {
		opts = append(opts, search.WithFs(a.fs))
	}
	return search.New(opts...)
}

func (a *app) newRevealer() *reveal.Revealer {
	if a.revealer != nil {
		return a.revealer
	}
	return reveal.New()
}

// newLLM returns nil when the LLM is disabled.
func (a *app) newLLM() *ollama.Client {
	if !a.cfg.LLM.Enabled {
		return nil
	}
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      a.cfg.LLM.URL,
		Timeout:      time.Duration(a.cfg.LLM.TimeoutSecs) * time.Second,
		DefaultModel: a.cfg.LLM.Model,
	})
}

// newPDFIndex returns nil when the LLM is disabled.
func (a *app) newPDFIndex(llm *ollama.Client) *rag.Index {
	if llm == nil {
		return nil
	}
	opts := []rag.Option{
		rag.WithEmbedModel(a.cfg.PDF.EmbedModel),
		rag.WithChatModel(a.cfg.LLM.Model),
		rag.WithTopK(a.cfg.PDF.TopK),
		rag.WithChunking(a.cfg.PDF.ChunkSize, a.cfg.PDF.ChunkOverlap),
		rag.WithLogger(a.logger),
	}
	if a.fs != nil {
		opts = append(opts, rag.WithFs(a.fs))
	}
	return rag.New(llm, opts...)
}

// newRegistry registers the built-in tools selected by toolsets and not
// disabled in the config.
func (a *app) newRegistry(toolsets string) (*tools.Registry, []string, error) {
	selected, err := tools.ResolveToolsets(toolsets)
	if err != nil {
		return nil, nil, &UsageError{Err: err}
	}

	llm := a.newLLM()
	deps := tools.Dependencies{
		Engine:            a.newEngine(),
		DefaultRoot:       a.cfg.Search.Root,
		DefaultMaxResults: a.cfg.Search.MaxResults,
		Revealer:          a.newRevealer(),
		WebEnabled:        a.cfg.Web.Enabled,
		WebSearchURL:      a.cfg.Web.BaseURL,
		WebMaxResults:     a.cfg.Web.MaxResults,
		WebTimeout:        time.Duration(a.cfg.Web.TimeoutSecs) * time.Second,
		WebUserAgent:      a.cfg.Web.UserAgent,
		Summarize:         a.cfg.Web.Summarize,
		LLM:               llm,
		Model:             a.cfg.LLM.Model,
		SystemPrompt:      a.cfg.LLM.SystemPrompt,
		PDF:               a.newPDFIndex(llm),
		Logger:            a.logger,
	}

	registry := tools.NewRegistry()
	names := tools.RegisterBuiltins(registry, deps, func(name string) bool {
		return selected[name] && a.cfg.ToolEnabled(name)
	})
	if len(names) == 0 {
		return nil, nil, &UsageError{Err: fmt.Errorf("no tools enabled for toolset %q", toolsets)}
	}
	return registry, names, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}
