// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
	"github.com/jeranaias/explorer-mcp/internal/rag"
	"github.com/jeranaias/explorer-mcp/internal/reveal"
	"github.com/jeranaias/explorer-mcp/internal/search"
)

// =============================================================================
// TOOLSETS
// =============================================================================

// ToolsetAll selects every built-in tool.
const ToolsetAll = "all"

// Toolsets groups the built-in tools the way they are served together.
var Toolsets = map[string][]string{
	"files": {FindFileTool.Name, RevealTool.Name},
	"math":  {AddTool.Name, SubtractTool.Name},
	"web":   {WebSearchTool.Name},
	"chat":  {ChatTool.Name},
	"pdf":   {UploadPDFTool.Name, SummarizePDFTool.Name, AskPDFTool.Name},
}

// ToolsetNames returns the valid toolset names, "all" included, sorted.
func ToolsetNames() []string {
	names := make([]string, 0, len(Toolsets)+1)
	for name := range Toolsets {
		names = append(names, name)
	}
	names = append(names, ToolsetAll)
	sort.Strings(names)
	return names
}

// ResolveToolsets expands a comma-separated toolset list into tool names.
// An empty list means "all".
func ResolveToolsets(list string) (map[string]bool, error) {
	selected := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == "" || name == ToolsetAll:
			for _, set := range Toolsets {
				for _, tool := range set {
					selected[tool] = true
				}
			}
		case Toolsets[name] != nil:
			for _, tool := range Toolsets[name] {
				selected[tool] = true
			}
		default:
			return nil, fmt.Errorf("unknown toolset %q (valid: %s)", name, strings.Join(ToolsetNames(), ", "))
		}
	}
	return selected, nil
}

// =============================================================================
// BUILT-IN REGISTRATION
// =============================================================================

// Dependencies are the collaborators the built-in tools run against.
type Dependencies struct {
	// Engine backs find_file. Required for the files toolset.
	Engine *search.Engine

	// DefaultRoot is find_file's base_path default.
	DefaultRoot string

	// DefaultMaxResults is find_file's max_results default.
	DefaultMaxResults int

	// Revealer backs reveal_in_finder. Defaults to reveal.New().
	Revealer *reveal.Revealer

	// WebEnabled allows web_search to reach the network.
	WebEnabled bool

	// WebSearchURL, WebMaxResults, WebTimeout and WebUserAgent configure web_search.
	WebSearchURL  string
	WebMaxResults int
	WebTimeout    time.Duration
	WebUserAgent  string
	WebHTTPClient *http.Client

	// Summarize turns on LLM summaries for web_search when LLM is set.
	Summarize bool

	// LLM backs chat and web summaries. chat is not registered without it.
	LLM *ollama.Client

	// Model and SystemPrompt configure chat and summaries.
	Model        string
	SystemPrompt string

	// PDF backs upload_pdf, summarize and ask. They are not registered
	// without it.
	PDF *rag.Index

	Logger *slog.Logger
}

// RegisterBuiltins registers every built-in tool for which include returns
// true (nil includes all) and whose dependencies are available. It returns
// the names registered.
func RegisterBuiltins(r *Registry, deps Dependencies, include func(name string) bool) []string {
	if include == nil {
		include = func(string) bool { return true }
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var registered []string
	add := func(def *Tool, exec ToolExecutor) {
		if !include(def.Name) {
			return
		}
		tool := *def
		tool.Executor = exec
		r.Register(&tool)
		registered = append(registered, tool.Name)
	}

	if deps.Engine != nil {
		add(FindFileTool, &FindFileExecutor{
			Engine:            deps.Engine,
			DefaultRoot:       deps.DefaultRoot,
			DefaultMaxResults: deps.DefaultMaxResults,
		})
	} else if include(FindFileTool.Name) {
		logger.Warn("find_file not registered: no search engine")
	}

	revealer := deps.Revealer
	if revealer == nil {
		revealer = reveal.New()
	}
	add(RevealTool, &RevealExecutor{Revealer: revealer})

	add(AddTool, &MathExecutor{Op: OpAdd, Logger: logger})
	add(SubtractTool, &MathExecutor{Op: OpSubtract, Logger: logger})

	web := &WebSearchExecutor{
		Enabled:    deps.WebEnabled,
		BaseURL:    deps.WebSearchURL,
		MaxResults: deps.WebMaxResults,
		Timeout:    deps.WebTimeout,
		UserAgent:  deps.WebUserAgent,
		HTTPClient: deps.WebHTTPClient,
		Logger:     logger,
	}
	if deps.LLM != nil && deps.Summarize {
		web.Summarizer = &OllamaSummarizer{Client: deps.LLM, Model: deps.Model}
	}
	add(WebSearchTool, web)

	if deps.LLM != nil {
		add(ChatTool, &ChatExecutor{
			Client:       deps.LLM,
			Model:        deps.Model,
			SystemPrompt: deps.SystemPrompt,
		})
	} else if include(ChatTool.Name) {
		logger.Info("chat not registered: LLM disabled")
	}

	if deps.PDF != nil {
		add(UploadPDFTool, &UploadPDFExecutor{Index: deps.PDF})
		add(SummarizePDFTool, &SummarizePDFExecutor{Index: deps.PDF})
		add(AskPDFTool, &AskPDFExecutor{Index: deps.PDF})
	} else if include(UploadPDFTool.Name) {
		logger.Info("PDF tools not registered: LLM disabled")
	}

	return registered
}
