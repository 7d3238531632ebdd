// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// ARITHMETIC
// =============================================================================

// MathOp is a binary integer operation.
type MathOp int

const (
	// OpAdd computes a + b
	OpAdd MathOp = iota

	// OpSubtract computes a - b
	OpSubtract
)

// String returns the operation name.
func (op MathOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// MathExecutor applies Op to the integer parameters a and b.
type MathExecutor struct {
	Op     MathOp
	Logger *slog.Logger
}

// Execute converts a and b to integers and applies the operation.
func (e *MathExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a, errA := toInt64(params["a"])
	b, errB := toInt64(params["b"])
	if errA != nil || errB != nil {
		logger.Error("invalid arithmetic input", "op", e.Op, "a", params["a"], "b", params["b"])
		return Result{Error: fmt.Sprintf("invalid input for %s: a=%v, b=%v", e.Op, params["a"], params["b"])}, nil
	}

	var (
		n        int64
		overflow bool
	)
	switch e.Op {
	case OpAdd:
		logger.Info("adding", "a", a, "b", b)
		n, overflow = addInt64(a, b)
	case OpSubtract:
		logger.Info("subtracting", "a", a, "b", b)
		n, overflow = subInt64(a, b)
	default:
		return Result{}, fmt.Errorf("unknown math operation %d", e.Op)
	}
	if overflow {
		return Result{Error: fmt.Sprintf("%s overflows a 64-bit integer", e.Op)}, nil
	}

	return Result{Success: true, Output: strconv.FormatInt(n, 10)}, nil
}

// addInt64 reports overflow when both operands share a sign the sum does not.
func addInt64(a, b int64) (int64, bool) {
	s := a + b
	return s, (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0)
}

// subInt64 reports overflow when the operands differ in sign and the
// difference takes b's sign.
func subInt64(a, b int64) (int64, bool) {
	d := a - b
	return d, (a >= 0) != (b >= 0) && (d >= 0) != (a >= 0)
}

var mathSchema = Schema{
	Parameters: []Parameter{
		{Name: "a", Type: "integer", Required: true, Description: "First operand"},
		{Name: "b", Type: "integer", Required: true, Description: "Second operand"},
	},
}

// AddTool adds two integers.
var AddTool = &Tool{
	Name:        "add",
	Title:       "Add",
	Description: "Add two integers and return the sum.",
	Schema:      mathSchema,
	RiskLevel:   RiskLow,
	ReadOnly:    true,
}

// SubtractTool subtracts b from a.
var SubtractTool = &Tool{
	Name:        "subtract",
	Title:       "Subtract",
	Description: "Subtract b from a and return the difference.",
	Schema:      mathSchema,
	RiskLevel:   RiskLow,
	ReadOnly:    true,
}
