// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jeranaias/explorer-mcp/internal/tools"
)

// ============================================================================
// TOOL CONVERSION
// ============================================================================

// ToolSpec converts a tool definition into its MCP description.
func ToolSpec(t *tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithReadOnlyHintAnnotation(t.ReadOnly),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(t.OpenWorld),
	}
	if t.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(t.Title))
	}
	for _, p := range t.Schema.Parameters {
		opts = append(opts, parameterOption(p))
	}
	return mcp.NewTool(t.Name, opts...)
}

// parameterOption maps a Parameter onto a JSON Schema property. Integers
// are published as numbers.
func parameterOption(p tools.Parameter) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}

	switch p.Type {
	case "integer", "number":
		if d, ok := numericDefault(p.Default); ok {
			props = append(props, mcp.DefaultNumber(d))
		}
		return mcp.WithNumber(p.Name, props...)
	case "boolean":
		if b, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, props...)
	default:
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		if len(p.Enum) > 0 {
			props = append(props, mcp.Enum(p.Enum...))
		}
		return mcp.WithString(p.Name, props...)
	}
}

func numericDefault(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ============================================================================
// MCP SERVER
// ============================================================================

// newMCPServer registers every tool of the executor's registry.
func newMCPServer(name, version string, executor *tools.Executor) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	for _, t := range executor.Registry().All() {
		s.AddTool(ToolSpec(t), toolHandler(executor, t.Name))
	}
	return s
}

// toolHandler runs a call through the executor. Tool failures become
// isError results; the handler itself never fails the JSON-RPC request.
func toolHandler(executor *tools.Executor, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := executor.Execute(ctx, tools.ToolCall{
			Name:   name,
			Params: req.GetArguments(),
		})
		if !res.Success {
			return mcp.NewToolResultError(res.Error), nil
		}
		return mcp.NewToolResultText(res.Output), nil
	}
}
