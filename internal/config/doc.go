// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for explorer-mcp.
//
// Configuration is TOML, decoded over built-in defaults, then adjusted by
// environment variables and validated.
//
// # Key Types
//
//   - Config: main configuration structure
//   - SearchConfig: default search root, result cap and exclusions
//   - ServerConfig: MCP transport, SSE address, auth and rate limiting
//   - WebConfig, LLMConfig: web search and Ollama settings
//   - PDFConfig: embedding model and passage sizes for the PDF tools
//   - LogConfig: slog level and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FILE_SEARCH_ROOT, EXPLORER_*)
//   - $XDG_CONFIG_HOME/explorer-mcp/config.toml, else ~/.explorer-mcp/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	engine := search.New(search.WithPolicy(cfg.SearchPolicy()))
package config
