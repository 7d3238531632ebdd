// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jeranaias/explorer-mcp/internal/ollama"
	"github.com/jeranaias/explorer-mcp/internal/rag"
)

// Replies shared by the PDF tools.
const (
	pdfNotLoadedReply = "📂 Call upload_pdf first!"
	pdfNotFoundReply  = "⚠️ File not found: "
)

// =============================================================================
// UPLOAD PDF
// =============================================================================

// UploadPDFExecutor indexes a PDF for summarize and ask.
type UploadPDFExecutor struct {
	Index *rag.Index
}

// Execute loads the file_path parameter into the index.
func (e *UploadPDFExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if e.Index == nil {
		return Result{}, errors.New("upload_pdf: no PDF index configured")
	}

	path := getStringParam(params, "file_path", "")
	if strings.TrimSpace(path) == "" {
		return Result{Error: "file_path parameter is required"}, nil
	}

	pages, err := e.Index.Load(ctx, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// A missing file is an answer, not a tool failure.
		return Result{Success: true, Output: pdfNotFoundReply + path}, nil
	case errors.Is(err, rag.ErrNoText):
		return Result{Error: "No extractable text in " + path + " (scanned PDFs need OCR first)"}, nil
	case err != nil:
		return Result{Error: pdfErrorMessage(err)}, nil
	}

	return Result{
		Success:    true,
		Output:     fmt.Sprintf("📚 PDF indexed (%d pages)", pages),
		MatchCount: pages,
	}, nil
}

// UploadPDFTool indexes a PDF so its contents can be queried.
var UploadPDFTool = &Tool{
	Name:  "upload_pdf",
	Title: "Upload PDF",
	Description: `Load a PDF so summarize and ask can answer from it.

The text of every page is extracted and embedded with the local LLM. Only
one PDF is loaded at a time; uploading another replaces it. Large documents
can take a while to embed.`,
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "file_path",
				Type:        "string",
				Required:    true,
				Description: "Path of the PDF to load. '~' is expanded.",
			},
		},
	},
	RiskLevel: RiskLow,
	ReadOnly:  true,
}

// =============================================================================
// SUMMARIZE
// =============================================================================

// SummarizePDFExecutor summarizes the loaded PDF.
type SummarizePDFExecutor struct {
	Index *rag.Index
}

// Execute returns a summary of the loaded PDF.
func (e *SummarizePDFExecutor) Execute(ctx context.Context, _ map[string]interface{}) (Result, error) {
	if e.Index == nil {
		return Result{}, errors.New("summarize: no PDF index configured")
	}
	summary, err := e.Index.Summarize(ctx)
	return pdfReply("📌 Summary:\n", summary, err), nil
}

// SummarizePDFTool summarizes the loaded PDF.
var SummarizePDFTool = &Tool{
	Name:        "summarize",
	Title:       "Summarize PDF",
	Description: "Summarize the key points of the PDF loaded with upload_pdf.",
	RiskLevel:   RiskLow,
	ReadOnly:    true,
}

// =============================================================================
// ASK
// =============================================================================

// AskPDFExecutor answers questions about the loaded PDF.
type AskPDFExecutor struct {
	Index *rag.Index
}

// Execute answers the question parameter from the loaded PDF.
func (e *AskPDFExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if e.Index == nil {
		return Result{}, errors.New("ask: no PDF index configured")
	}

	question := getStringParam(params, "question", "")
	if strings.TrimSpace(question) == "" {
		return Result{Error: "question parameter is required"}, nil
	}

	answer, err := e.Index.Ask(ctx, question)
	return pdfReply("💬 Answer:\n", answer, err), nil
}

// AskPDFTool answers a question from the loaded PDF.
var AskPDFTool = &Tool{
	Name:  "ask",
	Title: "Ask PDF",
	Description: `Answer a question from the PDF loaded with upload_pdf.

The passages closest to the question are retrieved and the local LLM
answers from them.`,
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "question",
				Type:        "string",
				Required:    true,
				Description: "The question about the document",
			},
		},
	},
	RiskLevel: RiskLow,
	ReadOnly:  true,
}

// =============================================================================
// HELPERS
// =============================================================================

func pdfReply(prefix, text string, err error) Result {
	switch {
	case errors.Is(err, rag.ErrNoDocument):
		return Result{Success: true, Output: pdfNotLoadedReply}
	case err != nil:
		return Result{Error: pdfErrorMessage(err)}
	}
	return Result{Success: true, Output: prefix + strings.ToValidUTF8(text, "�")}
}

// pdfErrorMessage reuses the chat wording for LLM failures.
func pdfErrorMessage(err error) string {
	var clientErr *ollama.ClientError
	if errors.As(err, &clientErr) {
		return chatErrorMessage(err)
	}
	return "Failed to read PDF: " + err.Error()
}
