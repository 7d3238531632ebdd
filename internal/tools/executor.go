// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/explorer-mcp/internal/util"
)

// DefaultToolTimeout is the timeout applied when the context has no deadline.
const DefaultToolTimeout = 30 * time.Second

// DefaultMaxOutput is the largest Output, in runes, returned to a client.
const DefaultMaxOutput = 30000

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs tool calls against a Registry.
type Executor struct {
	registry  *Registry
	logger    *slog.Logger
	timeout   time.Duration
	maxOutput int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the per-call timeout used when the caller's context has
// no deadline.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxOutput caps Result.Output in runes.
func WithMaxOutput(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// NewExecutor creates a new tool executor with the given registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:  registry,
		logger:    slog.Default(),
		timeout:   DefaultToolTimeout,
		maxOutput: DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the executor's registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs a tool call and returns the result. It never panics on behalf
// of a tool: executor errors, panics and timeouts all become failed Results.
func (e *Executor) Execute(ctx context.Context, call ToolCall) Result {
	start := time.Now()
	id := uuid.NewString()
	logger := e.logger.With("tool", call.Name, "invocation", id)

	tool := e.registry.Get(call.Name)
	if tool == nil {
		logger.Warn("unknown tool")
		return Result{
			Error:        "unknown tool: " + call.Name,
			Duration:     time.Since(start),
			InvocationID: id,
		}
	}

	if call.Params == nil {
		call.Params = map[string]interface{}{}
	}
	if err := ValidateToolArgs(&tool.Schema, call.Params); err != nil {
		logger.Info("tool call rejected", "error", err)
		return Result{
			Error:        "parameter validation failed: " + err.Error(),
			Duration:     time.Since(start),
			InvocationID: id,
		}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	logger.Debug("tool call started", "params", call.Params)

	// Buffered so a tool that ignores ctx can still finish and exit.
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("tool panicked", "panic", p)
				done <- Result{Error: fmt.Sprintf("internal error in %s", call.Name)}
			}
		}()
		result, err := tool.Executor.Execute(ctx, call.Params)
		if err != nil {
			result = Result{Error: err.Error()}
		}
		done <- result
	}()

	var result Result
	select {
	case result = <-done:
	case <-ctx.Done():
		result = Result{Error: "tool execution timed out: " + ctx.Err().Error()}
	}

	result.Duration = time.Since(start)
	result.InvocationID = id

	if len(result.Output) > e.maxOutput {
		if truncated := util.TruncateRunes(result.Output, e.maxOutput); truncated != result.Output {
			result.Output = truncated
			result.Truncated = true
		}
	}

	if result.Success {
		logger.Info("tool call finished", "duration", result.Duration, "matches", result.MatchCount)
	} else {
		logger.Warn("tool call failed", "duration", result.Duration, "error", result.Error)
	}
	return result
}

// =============================================================================
// ARGUMENT VALIDATION
// =============================================================================

// ValidationError reports a bad tool argument.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Param + ": " + e.Message
}

// maxStringLength bounds string arguments.
const maxStringLength = 1024 * 1024

// ValidateToolArgs checks required parameters, types, enums and string length.
func ValidateToolArgs(schema *Schema, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	for _, param := range schema.Parameters {
		val, exists := args[param.Name]

		if !exists || val == nil {
			if param.Required {
				return &ValidationError{Param: param.Name, Message: "missing required argument"}
			}
			continue
		}

		if err := validateArgType(param, val); err != nil {
			return err
		}

		if s, ok := val.(string); ok && param.Type == "string" {
			if param.Required && s == "" {
				return &ValidationError{Param: param.Name, Message: "must not be empty"}
			}
			if len(s) > maxStringLength {
				return &ValidationError{Param: param.Name, Message: "string value exceeds maximum length"}
			}
			if len(param.Enum) > 0 && !contains(param.Enum, s) {
				return &ValidationError{Param: param.Name, Message: fmt.Sprintf("must be one of %v", param.Enum)}
			}
		}
	}
	return nil
}

// validateArgType validates the type of an argument.
func validateArgType(param Parameter, val interface{}) error {
	switch param.Type {
	case "string":
		if _, ok := val.(string); !ok {
			return &ValidationError{Param: param.Name, Message: "expected string type"}
		}
	case "integer":
		if _, err := toInt64(val); err != nil {
			return &ValidationError{Param: param.Name, Message: "expected integer: " + err.Error()}
		}
	case "number":
		switch val.(type) {
		case int, int64, int32, float64, float32:
		default:
			return &ValidationError{Param: param.Name, Message: "expected number type"}
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return &ValidationError{Param: param.Name, Message: "expected boolean type"}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
