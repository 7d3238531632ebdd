// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/explorer-mcp/internal/config"
	"github.com/jeranaias/explorer-mcp/internal/server"
	"github.com/jeranaias/explorer-mcp/internal/tools"
)

type serveOptions struct {
	transport string
	addr      string
	toolset   string
}

func newCmdServe(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools to MCP clients over stdio or SSE.",
		Long: `Serve runs an MCP server exposing find_file, reveal_in_finder, add,
subtract, web_search, chat, upload_pdf, summarize and ask.

With --transport stdio (the default) the client launches explorer-mcp as a
subprocess and speaks JSON-RPC on stdin/stdout. With --transport sse the
server listens on --addr and serves /sse, /message and /health.

Toolsets: files, math, web, chat, pdf, all (comma-separated).`,
		Example: "explorer-mcp serve --toolset files,math",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.transport, "transport", "t", "", "Transport: stdio or sse (default from config)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "SSE listen address (default from config)")
	cmd.Flags().StringVar(&opts.toolset, "toolset", tools.ToolsetAll, "Toolsets to serve: files, math, web, chat, pdf, all")
	return cmd
}

func runServe(ctx context.Context, a *app, cmd *cobra.Command, opts *serveOptions) error {
	transport := strings.ToLower(opts.transport)
	if transport == "" {
		transport = strings.ToLower(a.cfg.Server.Transport)
	}
	if transport != config.TransportStdio && transport != config.TransportSSE {
		return &UsageError{Err: fmt.Errorf("unknown transport %q (valid: stdio, sse)", transport)}
	}

	addr := opts.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	registry, names, err := a.newRegistry(opts.toolset)
	if err != nil {
		return err
	}
	executor := tools.NewExecutor(registry,
		tools.WithTimeout(a.cfg.ToolTimeout()),
		tools.WithExecutorLogger(a.logger),
	)

	srv := server.New(server.Config{
		Name:      "explorer-mcp",
		Version:   a.version,
		Addr:      addr,
		BaseURL:   a.cfg.Server.BaseURL,
		AuthToken: a.cfg.Server.AuthToken,
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
	}, executor, a.logger)

	a.logger.Info("starting MCP server", "transport", transport, "tools", names)

	if transport == config.TransportSSE {
		if a.cfg.Server.AuthToken == "" {
			a.logger.Warn("SSE transport without auth_token; any local process can call the tools", "addr", addr)
		}
		return srv.ListenAndServeSSE(ctx)
	}
	return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
