// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/explorer-mcp/internal/config"
	"github.com/jeranaias/explorer-mcp/internal/reveal"
	"github.com/jeranaias/explorer-mcp/internal/search"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// =============================================================================
// HELPERS
// =============================================================================

const testConfig = `[search]
root = "/data"
excluded_prefixes = []

[llm]
enabled = false

[log]
level = "error"
`

// recordingRunner captures launched commands instead of running them.
type recordingRunner struct {
	name string
	args []string
	err  error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	cfgPath string
	fs      afero.Fs
	runner  *recordingRunner
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"FILE_SEARCH_ROOT", "EXPLORER_TRANSPORT", "EXPLORER_ADDR", "EXPLORER_AUTH_TOKEN",
		"EXPLORER_OLLAMA_URL", "EXPLORER_MODEL", "EXPLORER_LOG_LEVEL", "EXPLORER_LOG_FORMAT",
		"EXPLORER_OFFLINE", "EXPLORER_DEBUG",
	} {
		t.Setenv(key, "")
	}
	return home
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := isolateEnv(t)

	cfgPath := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o600))

	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/data/report_final.txt",
		"/data/notes.txt",
		"/data/sub/Report_draft.txt",
		"/data/.git/report_head.txt",
	} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("content"), 0o644))
	}
	return &fixture{cfgPath: cfgPath, fs: fs, runner: &recordingRunner{}}
}

// run executes the command line against the fixture and returns stdout.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{
		version: "1.2.3",
		fs:      f.fs,
		revealer: reveal.New(
			reveal.WithFs(f.fs),
			reveal.WithRunner(f.runner),
			reveal.WithGOOS("darwin"),
		),
	}
	cmd := newRootCommand(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", f.cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func resultLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// =============================================================================
// FIND
// =============================================================================

func TestFind_ListsMatches(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "find", "REPORT")
	require.NoError(t, err)

	lines := resultLines(out)
	require.Len(t, lines, 2)
	assert.Contains(t, out, "/data/report_final.txt")
	assert.Contains(t, out, "/data/sub/Report_draft.txt")
	assert.NotContains(t, out, "report_head", ".git is excluded")
	assert.NotContains(t, out, "notes.txt")
	for _, line := range lines {
		assert.Regexp(t, `^📄 \S+ \(\d+ Bytes\) - /data/\S+ - created \d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, line)
	}
}

func TestFind_MaxCapsResults(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "find", "report", "--max", "1")
	require.NoError(t, err)
	assert.Len(t, resultLines(out), 1)
}

func TestFind_NoMatches(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "find", "xyz123notfound")
	require.NoError(t, err)
	assert.Equal(t, "No files matching 'xyz123notfound' were found (search root: /data)\n", out)
}

func TestFind_RootFlag(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "find", "report", "--root", "/data/sub")
	require.NoError(t, err)
	lines := resultLines(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Report_draft.txt")
}

func TestFind_RootMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "find", "report", "--root", "/nowhere")
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "/nowhere", nf.ID)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestFind_RequiresKeyword(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "find")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRenderResult(t *testing.T) {
	res := search.Result{
		Keyword: "report",
		Root:    "/data",
		State:   search.StateCapped,
		Skipped: 2,
		Matches: []search.Record{
			{Name: "report_final.txt", Path: "/data/report_final.txt", Size: 2048, Timestamp: "2025-01-02 03:04"},
			{Name: "Report_draft.txt", Path: "/data/" + strings.Repeat("deep/", 30) + "Report_draft.txt", Size: 10, Timestamp: "2025-01-02 03:05"},
		},
		Duration: 1500 * time.Microsecond,
	}

	out := renderResult(res, 60)
	assert.Contains(t, out, `Files matching "report"`)
	assert.Contains(t, out, "/data/report_final.txt")
	assert.Contains(t, out, "2025-01-02 03:04")
	assert.Contains(t, out, "2 matches in 2ms")
	assert.Contains(t, out, "limit reached")
	assert.Contains(t, out, "(2 unreadable)")
	assert.Contains(t, out, "...", "long paths are shortened")
	assert.Contains(t, out, "Report_draft.txt", "the tail of a shortened path is kept")

	empty := renderResult(search.Result{Keyword: "x", Root: "/data", State: search.StateExhausted}, 80)
	assert.Contains(t, empty, "No matching files found.")
}

func TestHighlightMatch(t *testing.T) {
	assert.Equal(t, "Report.txt", HighlightMatch("Report.txt", "report"))
	assert.Equal(t, "notes.txt", HighlightMatch("notes.txt", "report"))
	assert.Equal(t, "notes.txt", HighlightMatch("notes.txt", ""))
}

// =============================================================================
// REVEAL
// =============================================================================

func TestReveal(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "reveal", "/data/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Revealed /data/notes.txt\n", out)
	assert.Equal(t, "open", f.runner.name)
	assert.Equal(t, []string{"-R", "/data/notes.txt"}, f.runner.args)
}

func TestReveal_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "reveal", "/data/gone.txt")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Empty(t, f.runner.name, "nothing is launched for a missing path")
}

func TestReveal_LaunchFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.err = errors.New("no display")

	_, err := f.run(t, "reveal", "/data/notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_InitSetGet(t *testing.T) {
	f := newFixture(t)
	f.cfgPath = filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := f.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, f.cfgPath)
	require.FileExists(t, f.cfgPath)

	_, err = f.run(t, "config", "init")
	require.Error(t, err, "init does not overwrite without --force")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = f.run(t, "config", "init", "--force")
	require.NoError(t, err)

	_, err = f.run(t, "config", "set", "search.max_results", "7")
	require.NoError(t, err)
	_, err = f.run(t, "config", "set", "tools.disabled", "web_search, chat")
	require.NoError(t, err)

	out, err = f.run(t, "config", "get", "search.max_results")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, err = f.run(t, "config", "get", "tools.disabled")
	require.NoError(t, err)
	assert.Equal(t, "web_search,chat\n", out)

	cfg, err := config.ReadFile(f.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "~", cfg.Search.Root, "set does not expand or bake in paths")
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "config", "set", "search.max_results", "0")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = f.run(t, "config", "set", "search.nope", "1")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = f.run(t, "config", "set", "search.max_results", "many")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	out, err := f.run(t, "config", "get", "search.max_results")
	require.NoError(t, err)
	assert.Equal(t, "20\n", out, "the file is unchanged after a rejected set")
}

func TestConfig_ShowUsesEnvAndRedacts(t *testing.T) {
	f := newFixture(t)
	t.Setenv("FILE_SEARCH_ROOT", "/srv/files")
	t.Setenv("EXPLORER_AUTH_TOKEN", "hunter2")

	out, err := f.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `root = "/srv/files"`)
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "hunter2")
}

func TestConfig_PathAndKeysSkipLoading(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.cfgPath, []byte("bogus = true\n"), 0o600))

	_, err := f.run(t, "find", "report")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	out, err := f.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, f.cfgPath+"\n", out)

	out, err = f.run(t, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "search.excluded_names\n")
}

// =============================================================================
// SERVE
// =============================================================================

func TestServe_RejectsBadFlags(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "serve", "--transport", "carrier-pigeon")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = f.run(t, "serve", "--toolset", "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, err.Error(), "valid: all, chat, files, math, pdf, web")

	_, err = f.run(t, "serve", "--toolset", "chat")
	require.Error(t, err, "chat needs the LLM, which the test config disables")
	assert.Contains(t, err.Error(), "no tools enabled")

	_, err = f.run(t, "serve", "--bogus-flag")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestNewRegistry_ToolsetsAndDisabled(t *testing.T) {
	isolateEnv(t)
	cfg := config.Default()
	cfg.LLM.Enabled = false
	cfg.Tools.Disabled = []string{"SUBTRACT"}

	a := &app{cfg: cfg, logger: quietLogger(), fs: afero.NewMemMapFs()}

	_, names, err := a.newRegistry("math")
	require.NoError(t, err)
	assert.Equal(t, []string{"add"}, names)

	registry, names, err := a.newRegistry("files,web")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"find_file", "reveal_in_finder", "web_search"}, names)
	assert.Equal(t, 3, registry.Len())

	_, names, err = a.newRegistry("")
	require.NoError(t, err)
	assert.NotContains(t, names, "chat")
	assert.NotContains(t, names, "subtract")

	_, _, err = a.newRegistry("pdf")
	require.Error(t, err, "the PDF tools need the LLM")

	cfg.LLM.Enabled = true
	_, names, err = a.newRegistry("chat")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat"}, names)

	_, names, err = a.newRegistry("pdf")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"upload_pdf", "summarize", "ask"}, names)
}

// =============================================================================
// MISC
// =============================================================================

func TestVersion(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "explorer-mcp 1.2.3 ("), out)
}

func TestLogFlags(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = f.run(t, "--log-format", "json", "version")
	require.NoError(t, err)
}

func TestColorDecision(t *testing.T) {
	tests := []struct {
		name             string
		noColor, forceIt string
		tty              bool
		want             bool
	}{
		{"tty", "", "", true, true},
		{"pipe", "", "", false, false},
		{"no color wins", "1", "1", true, false},
		{"forced on a pipe", "", "1", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorDecision(tt.noColor, tt.forceIt, tt.tty))
		})
	}
}

func TestIsTerminal_NonFileWriters(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, DefaultTerminalWidth, TerminalWidth(&buf))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", &UsageError{Err: errors.New("bad flag")}, ExitUsageError},
		{"config", &ConfigError{Path: "/x", Err: errors.New("bad")}, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "a", Message: "b"}}, ExitConfigError},
		{"not found", &NotFoundError{Resource: "path", ID: "/x"}, ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &NotFoundError{Resource: "search root", ID: "/x"})
	assert.Equal(t, "[ERROR] search root not found: /x\n", buf.String())

	buf.Reset()
	DisplayError(&buf, nil)
	assert.Empty(t, buf.String())
}
