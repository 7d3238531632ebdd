// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
	"github.com/jeranaias/explorer-mcp/internal/search"
)

// Defaults for an Index.
const (
	DefaultEmbedModel   = "nomic-embed-text"
	DefaultTopK         = 4
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
)

// SummaryQuestion is the question Summarize asks about the document.
const SummaryQuestion = "Summarize only the key points of the document."

var (
	// ErrNoDocument is returned by Ask before any document is loaded.
	ErrNoDocument = errors.New("no PDF loaded")

	// ErrNoText is returned by Load when no page has extractable text.
	ErrNoText = errors.New("the PDF has no extractable text")
)

// LLM is the model backend. *ollama.Client implements it.
type LLM interface {
	GenerateEmbedding(ctx context.Context, model, text string) ([]float64, error)
	ChatWithOptions(ctx context.Context, model string, messages []ollama.Message, opts *ollama.Options) (*ollama.ChatResponse, error)
}

// =============================================================================
// INDEX
// =============================================================================

// document is one fully embedded PDF.
type document struct {
	path  string
	pages int
	store *Store
}

// Index answers questions about the most recently loaded PDF. It is safe
// for concurrent use.
type Index struct {
	llm          LLM
	fs           afero.Fs
	logger       *slog.Logger
	embedModel   string
	chatModel    string
	topK         int
	chunkSize    int
	chunkOverlap int

	mu  sync.RWMutex
	doc *document
}

// Option configures an Index.
type Option func(*Index)

// WithFs sets the filesystem PDFs are read from. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(ix *Index) {
		if fs != nil {
			ix.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithEmbedModel sets the embedding model.
func WithEmbedModel(model string) Option {
	return func(ix *Index) {
		if model != "" {
			ix.embedModel = model
		}
	}
}

// WithChatModel sets the answering model. Empty uses the client default.
func WithChatModel(model string) Option {
	return func(ix *Index) {
		ix.chatModel = model
	}
}

// WithTopK sets how many chunks are placed in the prompt.
func WithTopK(k int) Option {
	return func(ix *Index) {
		if k > 0 {
			ix.topK = k
		}
	}
}

// WithChunking sets the chunk size and overlap in runes. A size of 0 keeps
// pages whole.
func WithChunking(size, overlap int) Option {
	return func(ix *Index) {
		ix.chunkSize = size
		ix.chunkOverlap = overlap
	}
}

// New creates an empty Index backed by llm.
func New(llm LLM, opts ...Option) *Index {
	ix := &Index{
		llm:          llm,
		fs:           afero.NewOsFs(),
		logger:       slog.Default(),
		embedModel:   DefaultEmbedModel,
		topK:         DefaultTopK,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Loaded reports whether a document is available for questions.
func (ix *Index) Loaded() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.doc != nil
}

// Source returns the path of the loaded document, or "".
func (ix *Index) Source() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.doc == nil {
		return ""
	}
	return ix.doc.path
}

// =============================================================================
// LOAD
// =============================================================================

// Load extracts, chunks and embeds the PDF at path ("~" is expanded) and
// makes it the current document. It returns the page count. A missing file
// yields an error matching fs.ErrNotExist. On any failure the previous
// document stays loaded.
func (ix *Index) Load(ctx context.Context, path string) (int, error) {
	path = search.ExpandHome(path)
	start := time.Now()

	pages, err := ExtractPages(ix.fs, path)
	if err != nil {
		return 0, err
	}

	chunks := SplitPages(pages, ix.chunkSize, ix.chunkOverlap)
	if len(chunks) == 0 {
		return 0, ErrNoText
	}

	store := &Store{}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		vec, err := ix.llm.GenerateEmbedding(ctx, ix.embedModel, c.Text)
		if err != nil {
			return 0, fmt.Errorf("embedding page %d: %w", c.Page, err)
		}
		store.Add(c, vec)
	}

	ix.mu.Lock()
	ix.doc = &document{path: path, pages: len(pages), store: store}
	ix.mu.Unlock()

	ix.logger.Info("PDF indexed",
		"path", path,
		"pages", len(pages),
		"chunks", store.Len(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return len(pages), nil
}

// =============================================================================
// QUESTIONS
// =============================================================================

// Ask answers question from the chunks of the loaded document closest to
// it. It returns ErrNoDocument when nothing is loaded.
func (ix *Index) Ask(ctx context.Context, question string) (string, error) {
	ix.mu.RLock()
	doc := ix.doc
	ix.mu.RUnlock()
	if doc == nil {
		return "", ErrNoDocument
	}

	vec, err := ix.llm.GenerateEmbedding(ctx, ix.embedModel, question)
	if err != nil {
		return "", err
	}
	hits := doc.store.Search(vec, ix.topK)
	ix.logger.Debug("retrieved context", "question", question, "chunks", len(hits))

	resp, err := ix.llm.ChatWithOptions(ctx, ix.chatModel,
		[]ollama.Message{ollama.NewUserMessage(BuildPrompt(question, hits))},
		&ollama.Options{Temperature: ollama.Float64(0)},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// Summarize asks SummaryQuestion of the loaded document.
func (ix *Index) Summarize(ctx context.Context) (string, error) {
	return ix.Ask(ctx, SummaryQuestion)
}

// BuildPrompt places the question and the retrieved chunks, labelled by
// page, into the answering prompt.
func BuildPrompt(question string, hits []Hit) string {
	var b strings.Builder
	b.WriteString("Answer based on the PDF.\n\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[page %d]\n%s", h.Chunk.Page, h.Chunk.Text)
	}
	return b.String()
}
