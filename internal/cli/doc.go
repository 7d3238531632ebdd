// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the explorer-mcp command line.
//
// # Commands
//
//	explorer-mcp serve [--transport stdio|sse] [--addr ADDR] [--toolset LIST]
//	explorer-mcp find <keyword> [--root DIR] [--max N] [--plain]
//	explorer-mcp reveal <path>
//	explorer-mcp config init|show|path|get|set|keys
//	explorer-mcp version
//
// Global flags: --config, --log-level, --log-format.
//
// # Exit Codes
//
//   - 0: success
//   - 1: general error
//   - 2: invalid usage
//   - 3: configuration error
//   - 7: path or search root not found
//
// Logs go to stderr. stdout carries command output, or the JSON-RPC stream
// under "serve --transport stdio".
package cli
