// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// RISK LEVELS
// =============================================================================

// RiskLevel indicates how much a tool can affect the host.
type RiskLevel int

const (
	// RiskLow - Read-only or pure computation, no side effects
	RiskLow RiskLevel = iota

	// RiskMedium - Visible side effects on the desktop (launching a program)
	RiskMedium

	// RiskHigh - Reaches external services over the network
	RiskHigh
)

// String returns the string representation of a risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Tool represents an executable tool.
type Tool struct {
	// Name is the tool identifier exposed to clients (e.g., "find_file")
	Name string

	// Title is a human-friendly display name
	Title string

	// Description explains what the tool does; the first line is the summary
	Description string

	// Schema defines the tool's parameters
	Schema Schema

	// RiskLevel indicates how much the tool can affect the host
	RiskLevel RiskLevel

	// ReadOnly is true when the tool never modifies anything
	ReadOnly bool

	// OpenWorld is true when the tool talks to systems outside this host
	OpenWorld bool

	// Executor handles the actual execution
	Executor ToolExecutor
}

// ShortDescription returns the first line of Description.
func (t *Tool) ShortDescription() string {
	if idx := strings.Index(t.Description, "\n"); idx != -1 {
		return t.Description[:idx]
	}
	return t.Description
}

// Schema defines a tool's parameters.
type Schema struct {
	Parameters []Parameter
}

// Parameter defines a single tool parameter.
type Parameter struct {
	// Name of the parameter
	Name string

	// Type is the JSON type ("string", "integer", "number", "boolean")
	Type string

	// Required indicates if the parameter must be provided
	Required bool

	// Description explains the parameter
	Description string

	// Default is the value used when the parameter is omitted
	Default interface{}

	// Enum contains allowed values for string parameters (optional)
	Enum []string
}

// =============================================================================
// TOOL EXECUTOR INTERFACE
// =============================================================================

// ToolExecutor is the interface for individual tool execution.
// A returned error is an unexpected failure; expected failures (missing file,
// bad input) are reported through Result.Success and Result.Error.
type ToolExecutor interface {
	Execute(ctx context.Context, params map[string]interface{}) (Result, error)
}

// Result holds the outcome of a tool execution.
type Result struct {
	// Success indicates if the tool executed successfully
	Success bool

	// Output is the tool's output (for successful execution)
	Output string

	// Error is the error message (for failed execution)
	Error string

	// Duration is how long execution took
	Duration time.Duration

	// Truncated indicates output was cut to the executor's size limit
	Truncated bool

	// MatchCount is the number of items the tool found
	MatchCount int

	// InvocationID identifies the call in the logs
	InvocationID string
}

// Text returns Output on success and Error otherwise.
func (r Result) Text() string {
	if r.Success {
		return r.Output
	}
	return r.Error
}

// =============================================================================
// TOOL REGISTRY
// =============================================================================

// Registry holds all available tools. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
}

// Get returns the named tool or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// All returns every tool sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Names returns the registered tool names sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, tool := range all {
		names[i] = tool.Name
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// =============================================================================
// TOOL CALL
// =============================================================================

// ToolCall represents a tool invocation.
type ToolCall struct {
	Name   string
	Params map[string]interface{}
}
