// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// PAGE EXTRACTION
// =============================================================================

// Page is the plain text of one PDF page. Number starts at 1.
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads every page of the PDF at path. Pages without
// extractable text are returned with empty Text, so the page count matches
// the document.
func ExtractPages(fs afero.Fs, path string) (pages []Page, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// The parser panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("not a readable PDF: %w", err)
	}

	n := reader.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, Page{Number: i, Text: cleanText(text)})
	}
	return pages, nil
}

// cleanText folds compatibility characters such as ligatures and trims the
// page.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.TrimSpace(norm.NFKC.String(s))
}

// =============================================================================
// CHUNKING
// =============================================================================

// Chunk is a span of page text that is embedded as one vector.
type Chunk struct {
	Page int
	Text string
}

// SplitPages cuts each page into chunks of at most size runes, consecutive
// chunks sharing overlap runes. Blank pages produce no chunks. A size of 0
// or less keeps each page whole.
func SplitPages(pages []Page, size, overlap int) []Chunk {
	var chunks []Chunk
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		for _, text := range splitRunes(p.Text, size, overlap) {
			chunks = append(chunks, Chunk{Page: p.Number, Text: text})
		}
	}
	return chunks
}

func splitRunes(text string, size, overlap int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			out = append(out, strings.TrimSpace(string(runes[start:])))
			break
		}
		out = append(out, strings.TrimSpace(string(runes[start:end])))
	}
	return out
}
