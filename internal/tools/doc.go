// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools defines the tools explorer-mcp exposes and executes them.
//
// A Tool couples a name, description and parameter Schema with a
// ToolExecutor. The Registry holds the enabled tools; the Executor looks a
// call up, validates its arguments, applies a timeout and logs the outcome
// under a per-invocation ID. Transports (MCP stdio/SSE, the CLI) only ever
// see Result values.
//
// # Key Types
//
//   - Tool: tool definition with name, description and parameters
//   - ToolExecutor: interface each tool implements
//   - Registry: the set of registered tools
//   - Executor: validation, timeout and logging around a call
//   - Result: tool execution result with output and status
//
// # Available Tools
//
// File Tools (toolset "files"):
//   - find_file: bounded, exclusion-aware filename search
//   - reveal_in_finder: highlight a path in the desktop file manager
//
// Math Tools (toolset "math"):
//   - add, subtract: integer arithmetic
//
// Web Tools (toolset "web"):
//   - web_search: DuckDuckGo search, optionally summarised by the LLM
//
// LLM Tools (toolset "chat"):
//   - chat: one-shot question to the configured Ollama model
//
// PDF Tools (toolset "pdf"):
//   - upload_pdf: extract and embed a PDF for the two tools below
//   - summarize: key points of the loaded PDF
//   - ask: answer a question from the loaded PDF
package tools
