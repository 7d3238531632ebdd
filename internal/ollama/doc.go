// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is a minimal client for the Ollama HTTP API, used by the
// chat tool, web search summaries and PDF question answering.
//
// Non-streaming /api/chat, /api/embeddings and the liveness check are
// implemented. MCP tool results are returned whole.
//
// # Errors
//
// Failures are *ClientError values carrying an ErrorType. The sentinels
// ErrNotRunning, ErrTimeout and ErrModelNotFound match any ClientError of the
// same type under errors.Is:
//
//	resp, err := client.Chat(ctx, "", msgs)
//	if errors.Is(err, ollama.ErrNotRunning) {
//	    // tell the user to start `ollama serve`
//	}
package ollama
