// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a tools.Registry as a Model Context Protocol server.
//
// Two transports are supported:
//
//   - stdio: newline-delimited JSON-RPC on stdin/stdout, for clients that
//     launch the server as a subprocess. Logs go to stderr only.
//   - sse: HTTP Server-Sent Events for remote clients.
//
// # Endpoints (sse)
//
//   - GET  /sse      - event stream; the first event names the message URL
//   - POST /message  - JSON-RPC requests for a session
//   - GET  /health   - liveness and registered tool names
//
// # Middleware (sse)
//
//   - Panic recovery and request logging
//   - Per-IP token bucket rate limiting (429 when exceeded)
//   - Bearer token authentication with constant-time comparison
//
// # Usage
//
//	srv := server.New(server.Config{Name: "explorer-mcp", Version: version}, executor, logger)
//	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil {
//		return err
//	}
package server
