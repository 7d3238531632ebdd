// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
)

const ddgPage = `<html><body>
<div class="result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">The <b>Go</b> Documentation</a>
  </h2>
  <a class="result__snippet" href="x">Learn &amp; build with   Go.</a>
</div>
<div class="result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="https://pkg.go.dev/">Go Packages</a>
  </h2>
  <a class="result__snippet" href="y">Discover packages</a>
</div>
<div class="result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="/relative">Dropped</a>
  </h2>
  <a class="result__snippet" href="z">no scheme</a>
</div>
</body></html>`

func ddgServer(t *testing.T, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query().Get("q")
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(ddgPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type stubSummarizer struct {
	content string
	out     string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, content string) (string, error) {
	s.content = content
	return s.out, s.err
}

// =============================================================================
// PARSING
// =============================================================================

// TestParseHits verifies redirect unwrapping, tag stripping and entity decoding.
func TestParseHits(t *testing.T) {
	hits := parseHits(ddgPage)
	require.Len(t, hits, 2)

	assert.Equal(t, "The Go Documentation", hits[0].Title)
	assert.Equal(t, "https://go.dev/doc/", hits[0].URL)
	assert.Equal(t, "Learn & build with Go.", hits[0].Snippet)

	assert.Equal(t, "https://pkg.go.dev/", hits[1].URL)
	assert.Equal(t, "Discover packages", hits[1].Snippet)
}

// TestExtractActualURL covers redirect and direct forms.
func TestExtractActualURL(t *testing.T) {
	assert.Equal(t, "https://a.example/x?y=1", extractActualURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2Fx%3Fy%3D1"))
	assert.Equal(t, "http://b.example", extractActualURL("http://b.example"))
	assert.Empty(t, extractActualURL("/local"))
}

// =============================================================================
// EXECUTE
// =============================================================================

// TestWebSearch_RawResults verifies formatted hits when no summarizer is set.
func TestWebSearch_RawResults(t *testing.T) {
	var q string
	srv := ddgServer(t, &q)
	e := &WebSearchExecutor{Enabled: true, BaseURL: srv.URL, Logger: quietLogger()}

	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go docs", "max_results": 1})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	assert.Equal(t, "go docs", q)
	assert.Equal(t, 1, res.MatchCount)
	assert.Contains(t, res.Output, "DuckDuckGo Search Results for: go docs")
	assert.Contains(t, res.Output, "[1] The Go Documentation")
	assert.NotContains(t, res.Output, "Go Packages")
}

// TestWebSearch_Summary verifies the summarizer receives titles and snippets.
func TestWebSearch_Summary(t *testing.T) {
	srv := ddgServer(t, nil)
	sum := &stubSummarizer{out: "Go is documented at go.dev."}
	e := &WebSearchExecutor{Enabled: true, BaseURL: srv.URL, Summarizer: sum, Logger: quietLogger()}

	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Go is documented at go.dev.", res.Output)
	assert.Equal(t, "The Go Documentation\nLearn & build with Go.\n\nGo Packages\nDiscover packages", sum.content)
}

// TestWebSearch_SummaryFallback verifies a failing LLM returns raw hits.
func TestWebSearch_SummaryFallback(t *testing.T) {
	srv := ddgServer(t, nil)
	e := &WebSearchExecutor{
		Enabled:    true,
		BaseURL:    srv.URL,
		Summarizer: &stubSummarizer{err: errors.New("ollama down")},
		Logger:     quietLogger(),
	}

	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "[2] Go Packages")
}

// TestWebSearch_Disabled verifies offline mode blocks the request.
func TestWebSearch_Disabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	e := &WebSearchExecutor{BaseURL: srv.URL}
	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrWebDisabled.Error(), res.Error)
	assert.False(t, called)
}

// TestWebSearch_HTTPError verifies non-200 responses fail the call.
func TestWebSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := &WebSearchExecutor{Enabled: true, BaseURL: srv.URL, Logger: quietLogger()}
	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "429")
}

// TestWebSearch_EmptyPage verifies zero hits are reported plainly.
func TestWebSearch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	sum := &stubSummarizer{out: "unused"}
	e := &WebSearchExecutor{Enabled: true, BaseURL: srv.URL, Summarizer: sum, Logger: quietLogger()}
	res, err := e.Execute(context.Background(), map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "No results found.")
	assert.Empty(t, sum.content)
}

// TestOllamaSummarizer verifies the prompt reaches the model.
func TestOllamaSummarizer(t *testing.T) {
	var got ollama.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollama.ChatResponse{Message: ollama.Message{Role: "assistant", Content: "  summary  "}, Done: true})
	}))
	defer srv.Close()

	s := &OllamaSummarizer{Client: ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL}), Model: "m"}
	out, err := s.Summarize(context.Background(), "q", "hit one")
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 1)
	assert.True(t, strings.HasSuffix(got.Messages[0].Content, "hit one"))
}
