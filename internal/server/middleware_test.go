// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// AUTH
// ============================================================================

// TestAuthMiddleware covers every rejection reason and the happy path.
func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware("s3cret", quietLogger())(okHandler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

// TestAuthMiddleware_Disabled verifies an empty token lets everything through.
func TestAuthMiddleware_Disabled(t *testing.T) {
	h := AuthMiddleware("", quietLogger())(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

// TestValidateBearerToken verifies empty tokens never match.
func TestValidateBearerToken(t *testing.T) {
	assert.True(t, ValidateBearerToken("a", "a"))
	assert.False(t, ValidateBearerToken("a", "b"))
	assert.False(t, ValidateBearerToken("", ""))
}

// ============================================================================
// RATE LIMIT
// ============================================================================

// TestRateLimiter_Burst verifies each client gets its own bucket.
func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

// TestRateLimiter_Sweep verifies idle clients are forgotten.
func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Clients())

	now = now.Add(2 * limiterTTL)
	rl.Allow("c")
	assert.Equal(t, 1, rl.Clients())
}

// TestRateLimitMiddleware verifies 429 once the bucket is empty.
func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(NewRateLimiter(0.001, 1), quietLogger())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5000"

	assert.Equal(t, http.StatusOK, serve(h, req).Code)
	rec := serve(h, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "203.0.113.8:5000"
	assert.Equal(t, http.StatusOK, serve(h, other).Code)
}

// TestRateLimitMiddleware_Disabled verifies a nil limiter passes through.
func TestRateLimitMiddleware_Disabled(t *testing.T) {
	h := RateLimitMiddleware(nil, quietLogger())(okHandler)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

// ============================================================================
// RECOVERY, LOGGING, CHAIN
// ============================================================================

// TestRecoveryMiddleware verifies a panic becomes a 500.
func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	assert.Equal(t, http.StatusInternalServerError, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

// TestLoggingMiddleware_Flusher verifies streaming handlers can still flush.
func TestLoggingMiddleware_Flusher(t *testing.T) {
	h := LoggingMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		w.WriteHeader(http.StatusAccepted)
		f.Flush()
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, rec.Flushed)
}

// TestChain verifies middleware run in the order listed.
func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	serve(Chain(mark("a"), mark("b"), mark("c"))(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

// ============================================================================
// CLIENT IP
// ============================================================================

// TestGetClientIP verifies forwarding headers are trusted only from proxies.
func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.1:1234", "", "", "203.0.113.1"},
		{"spoofed header ignored", "203.0.113.1:1234", "1.2.3.4", "", "203.0.113.1"},
		{"trusted proxy xff", "127.0.0.1:1234", "198.51.100.9, 10.0.0.1", "", "198.51.100.9"},
		{"trusted proxy real ip", "10.1.2.3:1234", "", "198.51.100.10", "198.51.100.10"},
		{"invalid header", "127.0.0.1:1234", "not-an-ip", "", "127.0.0.1"},
		{"no port", "203.0.113.2", "", "", "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
