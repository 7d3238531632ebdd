// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
)

// ChatExecutor forwards one message to an Ollama model.
type ChatExecutor struct {
	Client       *ollama.Client
	Model        string
	SystemPrompt string
}

// Execute sends input and returns the model's reply.
func (e *ChatExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if e.Client == nil {
		return Result{}, errors.New("chat: no LLM client configured")
	}

	input := getStringParam(params, "input", "")
	if strings.TrimSpace(input) == "" {
		return Result{Error: "input parameter is required"}, nil
	}

	messages := make([]ollama.Message, 0, 2)
	if e.SystemPrompt != "" {
		messages = append(messages, ollama.NewSystemMessage(e.SystemPrompt))
	}
	messages = append(messages, ollama.NewUserMessage(input))

	resp, err := e.Client.Chat(ctx, e.Model, messages)
	if err != nil {
		return Result{Error: chatErrorMessage(err)}, nil
	}

	return Result{
		Success: true,
		Output:  strings.ToValidUTF8(resp.Message.Content, "�"),
	}, nil
}

func chatErrorMessage(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "LLM unavailable: " + err.Error() + " (start it with 'ollama serve')"
	case ollama.IsTimeout(err):
		return "LLM request timed out: " + err.Error()
	default:
		return "LLM request failed: " + err.Error()
	}
}

// ChatTool holds a general conversation with the configured model.
var ChatTool = &Tool{
	Name:        "chat",
	Title:       "Chat",
	Description: "Have a general conversation with the configured local LLM.",
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "input",
				Type:        "string",
				Required:    true,
				Description: "The message to send",
			},
		},
	},
	RiskLevel: RiskLow,
	ReadOnly:  true,
}
