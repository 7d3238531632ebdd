// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/explorer-mcp/internal/logging"
	"github.com/jeranaias/explorer-mcp/internal/rag"
	"github.com/jeranaias/explorer-mcp/internal/search"
	"github.com/jeranaias/explorer-mcp/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete explorer-mcp configuration.
type Config struct {
	Search SearchConfig `toml:"search" json:"search"`
	Server ServerConfig `toml:"server" json:"server"`
	Tools  ToolsConfig  `toml:"tools" json:"tools"`
	Web    WebConfig    `toml:"web" json:"web"`
	LLM    LLMConfig    `toml:"llm" json:"llm"`
	PDF    PDFConfig    `toml:"pdf" json:"pdf"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// SearchConfig configures the find_file tool.
type SearchConfig struct {
	// Root is the default search root; "~" is expanded at load time.
	Root string `toml:"root" json:"root"`

	// MaxResults is the default result cap.
	MaxResults int `toml:"max_results" json:"max_results"`

	// StatTimeoutMs bounds each metadata call on a matched file. 0 disables.
	StatTimeoutMs int `toml:"stat_timeout_ms" json:"stat_timeout_ms"`

	// ExcludedNames are directory basenames pruned from every search.
	ExcludedNames []string `toml:"excluded_names" json:"excluded_names"`

	// ExcludedPrefixes are path prefixes pruned from every search.
	// Matching is plain string-prefix, not path-segment aware.
	ExcludedPrefixes []string `toml:"excluded_prefixes" json:"excluded_prefixes"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Transport is "stdio" or "sse".
	Transport string `toml:"transport" json:"transport"`

	// Addr is the SSE listen address.
	Addr string `toml:"addr" json:"addr"`

	// BaseURL is the externally visible SSE URL; derived from Addr when empty.
	BaseURL string `toml:"base_url" json:"base_url"`

	// AuthToken, when set, is required as a Bearer token on SSE requests.
	AuthToken string `toml:"auth_token" json:"auth_token"`

	// RateLimit is requests per second allowed per client IP. 0 disables.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`

	// RateBurst is the burst size for RateLimit.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`

	// ToolTimeoutSecs bounds a single tool call.
	ToolTimeoutSecs int `toml:"tool_timeout_secs" json:"tool_timeout_secs"`
}

// ToolsConfig selects which tools are registered.
type ToolsConfig struct {
	// Disabled lists tool names that are never registered.
	Disabled []string `toml:"disabled" json:"disabled"`
}

// WebConfig configures the web_search tool.
type WebConfig struct {
	// Enabled turns network search on. EXPLORER_OFFLINE=1 forces it off.
	Enabled bool `toml:"enabled" json:"enabled"`

	// BaseURL is the DuckDuckGo HTML endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`

	// MaxResults is the default number of results.
	MaxResults int `toml:"max_results" json:"max_results"`

	// TimeoutSecs bounds one search request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// UserAgent is sent with search requests.
	UserAgent string `toml:"user_agent" json:"user_agent"`

	// Summarize asks the LLM for a one-paragraph summary of the results.
	Summarize bool `toml:"summarize" json:"summarize"`
}

// LLMConfig configures the Ollama backend used by chat and summaries.
type LLMConfig struct {
	Enabled      bool   `toml:"enabled" json:"enabled"`
	URL          string `toml:"url" json:"url"`
	Model        string `toml:"model" json:"model"`
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	TimeoutSecs  int    `toml:"timeout_secs" json:"timeout_secs"`
}

// PDFConfig configures upload_pdf, summarize and ask. They use the LLM
// section's server and model and are disabled with it.
type PDFConfig struct {
	// EmbedModel is the Ollama model that embeds page text.
	EmbedModel string `toml:"embed_model" json:"embed_model"`

	// TopK is how many passages are placed in each prompt.
	TopK int `toml:"top_k" json:"top_k"`

	// ChunkSize is the longest passage in runes; longer pages are split.
	ChunkSize int `toml:"chunk_size" json:"chunk_size"`

	// ChunkOverlap is the number of runes consecutive passages share.
	ChunkOverlap int `toml:"chunk_overlap" json:"chunk_overlap"`
}

// LogConfig configures slog output on stderr.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Transport names.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Root:          "~",
			MaxResults:    search.DefaultMaxResults,
			StatTimeoutMs: 0,
			ExcludedNames: append([]string(nil), search.DefaultExcludedNames...),
			ExcludedPrefixes: []string{
				"~/Library/Caches",
				"~/Library/Containers/com.apple.Safari/Data",
			},
		},
		Server: ServerConfig{
			Transport:       TransportStdio,
			Addr:            "127.0.0.1:8765",
			RateLimit:       10,
			RateBurst:       20,
			ToolTimeoutSecs: 30,
		},
		Web: WebConfig{
			Enabled:     true,
			BaseURL:     "https://html.duckduckgo.com/html/",
			MaxResults:  5,
			TimeoutSecs: 30,
			UserAgent:   "Mozilla/5.0 (compatible; explorer-mcp/1.0)",
			Summarize:   true,
		},
		LLM: LLMConfig{
			Enabled:     true,
			URL:         "http://127.0.0.1:11434",
			Model:       "llama3.2",
			TimeoutSecs: 120,
		},
		PDF: PDFConfig{
			EmbedModel:   rag.DefaultEmbedModel,
			TopK:         rag.DefaultTopK,
			ChunkSize:    rag.DefaultChunkSize,
			ChunkOverlap: rag.DefaultChunkOverlap,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the explorer-mcp configuration directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "explorer-mcp"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".explorer-mcp"), nil
}

// ConfigPath returns the path of the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file if it exists, otherwise starts from
// defaults. Environment overrides are applied last, then the result is
// validated.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		return cfg, cfg.finalize()
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile decodes path onto the defaults without environment overrides,
// for editing the file in place. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// finalize runs the post-decode steps shared by every load path.
func (c *Config) finalize() error {
	fillDefaults(c)
	c.ApplyEnvOverrides()
	c.expandPaths()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values that would otherwise break the server.
// Explicitly empty exclusion lists are respected.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Search.Root == "" {
		cfg.Search.Root = defaults.Search.Root
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = defaults.Search.MaxResults
	}

	if cfg.Server.Transport == "" {
		cfg.Server.Transport = defaults.Server.Transport
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.ToolTimeoutSecs == 0 {
		cfg.Server.ToolTimeoutSecs = defaults.Server.ToolTimeoutSecs
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = defaults.Server.RateBurst
	}

	if cfg.Web.BaseURL == "" {
		cfg.Web.BaseURL = defaults.Web.BaseURL
	}
	if cfg.Web.MaxResults == 0 {
		cfg.Web.MaxResults = defaults.Web.MaxResults
	}
	if cfg.Web.TimeoutSecs == 0 {
		cfg.Web.TimeoutSecs = defaults.Web.TimeoutSecs
	}
	if cfg.Web.UserAgent == "" {
		cfg.Web.UserAgent = defaults.Web.UserAgent
	}

	if cfg.LLM.URL == "" {
		cfg.LLM.URL = defaults.LLM.URL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = defaults.LLM.TimeoutSecs
	}

	if cfg.PDF.EmbedModel == "" {
		cfg.PDF.EmbedModel = defaults.PDF.EmbedModel
	}
	if cfg.PDF.TopK == 0 {
		cfg.PDF.TopK = defaults.PDF.TopK
	}
	if cfg.PDF.ChunkSize == 0 {
		cfg.PDF.ChunkSize = defaults.PDF.ChunkSize
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// expandPaths resolves "~" in every path setting.
func (c *Config) expandPaths() {
	c.Search.Root = search.ExpandHome(c.Search.Root)
	for i, p := range c.Search.ExcludedPrefixes {
		c.Search.ExcludedPrefixes[i] = search.ExpandHome(p)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - FILE_SEARCH_ROOT: overrides search.root
//   - EXPLORER_TRANSPORT: overrides server.transport
//   - EXPLORER_ADDR: overrides server.addr
//   - EXPLORER_AUTH_TOKEN: overrides server.auth_token
//   - EXPLORER_OLLAMA_URL: overrides llm.url
//   - EXPLORER_MODEL: overrides llm.model
//   - EXPLORER_LOG_LEVEL: overrides log.level
//   - EXPLORER_LOG_FORMAT: overrides log.format
//   - EXPLORER_OFFLINE: "1" or "true" disables web search and the LLM
func (c *Config) ApplyEnvOverrides() {
	if root := os.Getenv("FILE_SEARCH_ROOT"); root != "" {
		c.Search.Root = root
	}
	if transport := os.Getenv("EXPLORER_TRANSPORT"); transport != "" {
		c.Server.Transport = transport
	}
	if addr := os.Getenv("EXPLORER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if token := os.Getenv("EXPLORER_AUTH_TOKEN"); token != "" {
		c.Server.AuthToken = token
	}
	if u := os.Getenv("EXPLORER_OLLAMA_URL"); u != "" {
		c.LLM.URL = u
	}
	if model := os.Getenv("EXPLORER_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if level := os.Getenv("EXPLORER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("EXPLORER_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if offline := os.Getenv("EXPLORER_OFFLINE"); offline == "1" || strings.EqualFold(offline, "true") {
		c.Web.Enabled = false
		c.LLM.Enabled = false
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# explorer-mcp configuration file\n")
	buf.WriteString("# Environment variables (FILE_SEARCH_ROOT, EXPLORER_*) take precedence.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// The auth token may be a secret.
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing every
// problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Search
	if strings.TrimSpace(c.Search.Root) == "" {
		add("search.root", "must not be empty")
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 1000 {
		add("search.max_results", "must be between 1 and 1000, got %d", c.Search.MaxResults)
	}
	if c.Search.StatTimeoutMs < 0 {
		add("search.stat_timeout_ms", "must not be negative")
	}
	for _, p := range c.Search.ExcludedPrefixes {
		if !filepath.IsAbs(p) {
			add("search.excluded_prefixes", "prefix %q must be absolute", p)
		}
	}

	// Server
	switch strings.ToLower(c.Server.Transport) {
	case TransportStdio, TransportSSE:
	default:
		add("server.transport", "invalid transport '%s', must be one of: stdio, sse", c.Server.Transport)
	}
	if strings.EqualFold(c.Server.Transport, TransportSSE) && c.Server.Addr == "" {
		add("server.addr", "required for the sse transport")
	}
	if c.Server.BaseURL != "" {
		if err := validateHTTPURL(c.Server.BaseURL); err != nil {
			add("server.base_url", "%v", err)
		}
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative")
	}
	if c.Server.RateBurst < 0 {
		add("server.rate_burst", "must not be negative")
	}
	if c.Server.ToolTimeoutSecs < 1 || c.Server.ToolTimeoutSecs > 3600 {
		add("server.tool_timeout_secs", "must be between 1 and 3600, got %d", c.Server.ToolTimeoutSecs)
	}

	// Web
	if c.Web.MaxResults < 1 || c.Web.MaxResults > 50 {
		add("web.max_results", "must be between 1 and 50, got %d", c.Web.MaxResults)
	}
	if err := validateHTTPURL(c.Web.BaseURL); err != nil {
		add("web.base_url", "%v", err)
	}
	if c.Web.TimeoutSecs < 1 {
		add("web.timeout_secs", "must be positive")
	}

	// LLM
	if err := validateHTTPURL(c.LLM.URL); err != nil {
		add("llm.url", "%v", err)
	}
	if c.LLM.Enabled && strings.TrimSpace(c.LLM.Model) == "" {
		add("llm.model", "required when the LLM is enabled")
	}
	if c.LLM.TimeoutSecs < 1 {
		add("llm.timeout_secs", "must be positive")
	}

	// PDF
	if c.PDF.TopK < 1 || c.PDF.TopK > 50 {
		add("pdf.top_k", "must be between 1 and 50, got %d", c.PDF.TopK)
	}
	if c.PDF.ChunkSize < 100 {
		add("pdf.chunk_size", "must be at least 100, got %d", c.PDF.ChunkSize)
	}
	if c.PDF.ChunkOverlap < 0 || c.PDF.ChunkOverlap >= c.PDF.ChunkSize {
		add("pdf.chunk_overlap", "must be between 0 and chunk_size-1, got %d", c.PDF.ChunkOverlap)
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		add("log.format", "invalid format '%s', must be one of: text, json", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFile validates settings as read by ReadFile. Paths are expanded
// on a copy first, so "~" entries pass the absolute-path checks.
func (c *Config) ValidateFile() error {
	candidate := c.Clone()
	candidate.expandPaths()
	return candidate.Validate()
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// SearchPolicy returns the exclusion policy described by the search section.
func (c *Config) SearchPolicy() search.Policy {
	return search.NewPolicy(c.Search.ExcludedNames, c.Search.ExcludedPrefixes)
}

// StatTimeout returns search.stat_timeout_ms as a duration.
func (c *Config) StatTimeout() time.Duration {
	return time.Duration(c.Search.StatTimeoutMs) * time.Millisecond
}

// ToolTimeout returns server.tool_timeout_secs as a duration.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Server.ToolTimeoutSecs) * time.Second
}

// ToolEnabled reports whether name is absent from tools.disabled.
func (c *Config) ToolEnabled(name string) bool {
	for _, d := range c.Tools.Disabled {
		if strings.EqualFold(d, name) {
			return false
		}
	}
	return true
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dotted TOML key such as "search.max_results".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set parses value for the field at a dotted TOML key and stores it.
// Lists are given comma-separated.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value: %w", key, err)
		}
		field.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid float value: %w", key, err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean value: %w", key, err)
		}
		field.SetBool(b)
	case reflect.Slice:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("%s: unsupported field type %s", key, field.Type())
	}
	return nil
}

// lookup walks the struct by toml tags.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown config key: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("config key %s is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("config key %s is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid config key: %s", key)
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Keys returns every settable dotted key.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Search.ExcludedNames = append([]string(nil), c.Search.ExcludedNames...)
	clone.Search.ExcludedPrefixes = append([]string(nil), c.Search.ExcludedPrefixes...)
	clone.Tools.Disabled = append([]string(nil), c.Tools.Disabled...)
	return &clone
}

// String renders the configuration as TOML with the auth token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.AuthToken != "" {
		safe.Server.AuthToken = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("<config encode error: %v>", err)
	}
	return buf.String()
}
