// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
)

// TestChat_Reply verifies the system prompt precedes the user input.
func TestChat_Reply(t *testing.T) {
	var got ollama.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollama.ChatResponse{Message: ollama.Message{Role: "assistant", Content: "pong"}, Done: true})
	}))
	defer srv.Close()

	e := &ChatExecutor{
		Client:       ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL, DefaultModel: "tiny"}),
		SystemPrompt: "Answer briefly.",
	}
	res, err := e.Execute(context.Background(), map[string]interface{}{"input": "ping"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "pong", res.Output)

	assert.Equal(t, "tiny", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "ping", got.Messages[1].Content)
}

// TestChat_NotRunning verifies an unreachable server is an error result.
func TestChat_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := &ChatExecutor{Client: ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})}
	res, err := e.Execute(context.Background(), map[string]interface{}{"input": "ping"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "LLM unavailable")
}

// TestChat_ModelNotFound verifies 404s surface the pull hint.
func TestChat_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	e := &ChatExecutor{Client: ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL}), Model: "ghost"}
	res, err := e.Execute(context.Background(), map[string]interface{}{"input": "ping"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "ollama pull ghost")
}

// TestChat_EmptyInput verifies blank input is rejected.
func TestChat_EmptyInput(t *testing.T) {
	e := &ChatExecutor{Client: ollama.NewClient()}
	res, err := e.Execute(context.Background(), map[string]interface{}{"input": "   "})
	require.NoError(t, err)
	assert.False(t, res.Success)
}
