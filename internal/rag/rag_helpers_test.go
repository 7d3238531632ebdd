// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildPDF assembles a minimal PDF with one line of Helvetica text per page.
// Text must not contain parentheses or backslashes.
func buildPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, fs afero.Fs, path string, pages ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, buildPDF(pages...), 0o644))
}

// fakeOllama serves /api/embeddings with one dimension per vocabulary word
// (its occurrence count) and /api/chat with a fixed reply.
type fakeOllama struct {
	vocabulary []string
	reply      string

	mu        sync.Mutex
	embedded  []string
	embedErr  string
	lastChat  ollama.ChatRequest
	chatCalls int
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/api/embeddings":
		var req ollama.EmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if f.embedErr != "" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": f.embedErr})
			return
		}
		f.embedded = append(f.embedded, req.Prompt)
		json.NewEncoder(w).Encode(ollama.EmbeddingResponse{Embedding: f.vectorFor(req.Prompt)})
	case "/api/chat":
		json.NewDecoder(r.Body).Decode(&f.lastChat)
		f.chatCalls++
		json.NewEncoder(w).Encode(ollama.ChatResponse{
			Message: ollama.Message{Role: "assistant", Content: f.reply},
			Done:    true,
		})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeOllama) vectorFor(text string) []float64 {
	lower := strings.ToLower(text)
	vec := make([]float64, len(f.vocabulary)+1)
	for i, word := range f.vocabulary {
		vec[i] = float64(strings.Count(lower, word))
	}
	vec[len(f.vocabulary)] = 0.01
	return vec
}

func (f *fakeOllama) embeddedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embedded)
}

func (f *fakeOllama) failEmbeddings(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedErr = msg
}

// chat returns the last chat request and the number of chat calls.
func (f *fakeOllama) chat() (ollama.ChatRequest, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChat, f.chatCalls
}

func newFakeOllama(t *testing.T) (*fakeOllama, *ollama.Client) {
	t.Helper()
	fake := &fakeOllama{
		vocabulary: []string{"apple", "banana", "cherry"},
		reply:      "  Bananas are yellow.  ",
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL, DefaultModel: "tiny"})
}
