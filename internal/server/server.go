// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jeranaias/explorer-mcp/internal/tools"
)

// DefaultAddr is the SSE listen address.
const DefaultAddr = "127.0.0.1:8765"

// shutdownTimeout bounds graceful shutdown of the SSE listener.
const shutdownTimeout = 5 * time.Second

// ============================================================================
// SERVER
// ============================================================================

// Config holds server settings.
type Config struct {
	// Name and Version are reported in the MCP initialize response.
	Name    string
	Version string

	// Addr is the SSE listen address (default: DefaultAddr).
	Addr string

	// BaseURL is the externally visible URL clients post messages to.
	// Derived from the listen address when empty.
	BaseURL string

	// AuthToken, when set, is required as a Bearer token on SSE requests.
	AuthToken string

	// RateLimit is requests per second per client IP. 0 disables limiting.
	RateLimit float64

	// RateBurst is the token bucket size for RateLimit.
	RateBurst int
}

// Server serves a tool registry over MCP.
type Server struct {
	cfg      Config
	executor *tools.Executor
	mcp      *mcpserver.MCPServer
	logger   *slog.Logger
}

// New creates a server for every tool registered with executor.
func New(cfg Config, executor *tools.Executor, logger *slog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "explorer-mcp"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		executor: executor,
		mcp:      newMCPServer(cfg.Name, cfg.Version, executor),
		logger:   logger.With("component", "server"),
	}
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// ============================================================================
// STDIO
// ============================================================================

// ServeStdio serves JSON-RPC on in/out until in is closed or ctx is done.
// Nothing but protocol messages is ever written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving MCP over stdio", "tools", s.executor.Registry().Names())
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// ============================================================================
// SSE
// ============================================================================

// Handler returns the SSE transport wrapped in middleware. baseURL is the
// address clients use to reach this handler.
func (s *Server) Handler(baseURL string) http.Handler {
	sse := mcpserver.NewSSEServer(s.mcp, mcpserver.WithBaseURL(strings.TrimRight(baseURL, "/")))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/", AuthMiddleware(s.cfg.AuthToken, s.logger)(sse))

	var limiter *RateLimiter
	if s.cfg.RateLimit > 0 {
		limiter = NewRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst)
	}

	return Chain(
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(limiter, s.logger),
	)(mux)
}

// ListenAndServeSSE listens on the configured address and serves until ctx
// is done.
func (s *Server) ListenAndServeSSE(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeSSE(ctx, ln)
}

// ServeSSE serves on ln until ctx is done, then shuts down gracefully.
// Open event streams are closed on shutdown.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener) error {
	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://" + ln.Addr().String()
	}

	// Request contexts derive from streamCtx so shutdown ends open streams.
	streamCtx, closeStreams := context.WithCancel(context.Background())
	defer closeStreams()

	srv := &http.Server{
		Handler:           s.Handler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("serving MCP over SSE",
		"addr", ln.Addr().String(),
		"sse", baseURL+"/sse",
		"auth", s.cfg.AuthToken != "",
		"tools", s.executor.Registry().Names(),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sse transport: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSE server")
	closeStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ============================================================================
// HEALTH
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Tools   []string `json:"tools"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Name:    s.cfg.Name,
		Version: s.cfg.Version,
		Tools:   s.executor.Registry().Names(),
	})
}
