// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
	"github.com/jeranaias/explorer-mcp/internal/util"
)

// Web search defaults.
const (
	DefaultSearchURL        = "https://html.duckduckgo.com/html/"
	DefaultWebMaxResults    = 5
	MaxWebResults           = 10
	DefaultWebSearchTimeout = 15 * time.Second
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxSearchBody = 5 * 1024 * 1024
)

// ErrWebDisabled is returned when web access is turned off.
var ErrWebDisabled = errors.New("web search is disabled (offline mode)")

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	// DuckDuckGo HTML parsing patterns
	ddgTitleRegex   = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.+?)</a>`)
	ddgSnippetRegex = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.+?)</a>`)

	ddgTagRegex        = regexp.MustCompile(`<[^>]*>`)
	ddgWhitespaceRegex = regexp.MustCompile(`\s+`)
)

// =============================================================================
// SUMMARIZER
// =============================================================================

// Summarizer condenses search results into prose.
type Summarizer interface {
	Summarize(ctx context.Context, query, content string) (string, error)
}

// OllamaSummarizer summarizes with a local Ollama model.
type OllamaSummarizer struct {
	Client *ollama.Client
	Model  string
}

// Summarize asks the model for a one-paragraph summary of content.
func (s *OllamaSummarizer) Summarize(ctx context.Context, query, content string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following search results for %q in one paragraph:\n\n%s", query, content)
	resp, err := s.Client.Chat(ctx, s.Model, []ollama.Message{ollama.NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(strings.TrimSpace(resp.Message.Content), "�"), nil
}

// =============================================================================
// DUCKDUCKGO SEARCH EXECUTOR
// =============================================================================

// WebSearchExecutor searches DuckDuckGo's HTML endpoint and optionally
// summarizes the hits.
type WebSearchExecutor struct {
	// Enabled gates all network access
	Enabled bool

	// BaseURL is the DuckDuckGo HTML search endpoint
	BaseURL string

	// MaxResults is used when max_results is omitted (default: 5, max: 10)
	MaxResults int

	// Timeout bounds the search request (default: 15s)
	Timeout time.Duration

	// UserAgent is the User-Agent header to send
	UserAgent string

	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client

	// Summarizer, when set, turns the hits into a paragraph
	Summarizer Summarizer

	Logger *slog.Logger
}

// SearchHit is a single search result.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

// Execute performs a search and returns a summary or the formatted hits.
func (e *WebSearchExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if !e.Enabled {
		return Result{Error: ErrWebDisabled.Error()}, nil
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	defaultMax := e.MaxResults
	if defaultMax <= 0 {
		defaultMax = DefaultWebMaxResults
	}

	query := strings.TrimSpace(getStringParam(params, "query", ""))
	maxResults := getIntParam(params, "max_results", defaultMax)

	if query == "" {
		return Result{Error: "query parameter is required"}, nil
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > MaxWebResults {
		maxResults = MaxWebResults
	}

	logger.Info("web search", "query", query, "max_results", maxResults)

	hits, err := e.search(ctx, query)
	if err != nil {
		logger.Error("web search failed", "query", query, "error", err)
		return Result{Error: "search failed: " + err.Error()}, nil
	}
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	if e.Summarizer != nil && len(hits) > 0 {
		summary, err := e.Summarizer.Summarize(ctx, query, hitsContent(hits))
		if err == nil && summary != "" {
			return Result{Success: true, Output: summary, MatchCount: len(hits)}, nil
		}
		// Fall back to the raw hits.
		logger.Warn("summary unavailable, returning raw results", "error", err)
	}

	return Result{
		Success:    true,
		Output:     formatHits(query, hits),
		MatchCount: len(hits),
	}, nil
}

func (e *WebSearchExecutor) client() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultWebSearchTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// search fetches and parses one results page.
func (e *WebSearchExecutor) search(ctx context.Context, query string) ([]SearchHit, error) {
	base := e.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	agent := e.UserAgent
	if agent == "" {
		agent = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	// Leave Accept-Encoding to net/http so it decompresses transparently.
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")

	resp, err := e.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, err
	}
	return parseHits(string(body)), nil
}

// parseHits extracts results from DuckDuckGo HTML:
//
//	<a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=URL">Title</a>
//	<a class="result__snippet" href="...">Snippet text</a>
func parseHits(page string) []SearchHit {
	titleMatches := ddgTitleRegex.FindAllStringSubmatch(page, 30)
	snippetMatches := ddgSnippetRegex.FindAllStringSubmatch(page, 30)

	var hits []SearchHit
	for i, match := range titleMatches {
		actualURL := extractActualURL(html.UnescapeString(match[1]))
		title := cleanHTML(match[2])
		if actualURL == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippetMatches) {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		hits = append(hits, SearchHit{Title: title, URL: actualURL, Snippet: snippet})
		if len(hits) >= 20 {
			break
		}
	}
	return hits
}

// extractActualURL unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=URL redirect.
func extractActualURL(ddgURL string) string {
	if strings.Contains(ddgURL, "uddg=") {
		if strings.HasPrefix(ddgURL, "//") {
			ddgURL = "https:" + ddgURL
		}
		parsed, err := url.Parse(ddgURL)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}

	if strings.HasPrefix(ddgURL, "http://") || strings.HasPrefix(ddgURL, "https://") {
		return ddgURL
	}
	return ""
}

// cleanHTML strips tags, decodes entities and collapses whitespace.
func cleanHTML(s string) string {
	text := ddgTagRegex.ReplaceAllString(s, "")
	text = html.UnescapeString(text)
	text = ddgWhitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// hitsContent is the summarizer input: title and snippet per hit.
func hitsContent(hits []SearchHit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Title + "\n" + h.Snippet
	}
	return strings.Join(parts, "\n\n")
}

// formatHits formats search results as readable text.
func formatHits(query string, hits []SearchHit) string {
	var output strings.Builder

	fmt.Fprintf(&output, "DuckDuckGo Search Results for: %s\n", query)
	fmt.Fprintf(&output, "Found %d results\n\n", len(hits))

	if len(hits) == 0 {
		output.WriteString("No results found.\n")
		return output.String()
	}

	rule := strings.Repeat("=", 79) + "\n"
	output.WriteString(rule + "\n")
	for i, hit := range hits {
		fmt.Fprintf(&output, "[%d] %s\n", i+1, hit.Title)
		fmt.Fprintf(&output, "    URL: %s\n", hit.URL)
		if hit.Snippet != "" {
			fmt.Fprintf(&output, "    %s\n", util.TruncateRunes(hit.Snippet, 300))
		}
		output.WriteString("\n")
	}
	output.WriteString(rule)

	return output.String()
}

// WebSearchTool searches the web and summarizes the results.
var WebSearchTool = &Tool{
	Name:  "web_search",
	Title: "Web Search",
	Description: `Search the web with DuckDuckGo and summarize the results.

When a local LLM is configured the hits are condensed into one paragraph;
otherwise titles, URLs and snippets are returned. No API key is required.
Blocked in offline mode.`,
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "query",
				Type:        "string",
				Required:    true,
				Description: "The search query. Example: 'golang context timeout example'",
			},
			{
				Name:        "max_results",
				Type:        "integer",
				Required:    false,
				Description: "Maximum number of results to use (1-10). Default: 5",
				Default:     DefaultWebMaxResults,
			},
		},
	},
	RiskLevel: RiskHigh,
	ReadOnly:  true,
	OpenWorld: true,
}
