// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag answers questions about one loaded PDF document.
//
// Loading extracts the text of every page, splits long pages into
// overlapping chunks, embeds each chunk through the LLM and keeps the
// vectors in memory. A question is embedded the same way; the closest
// chunks by cosine similarity are placed in a prompt and the chat model
// answers from them.
//
// An Index holds at most one document. Loading another replaces it only
// after the new one is fully embedded, so questions asked during a load
// are answered from the previous document.
//
//	ix := rag.New(client, rag.WithEmbedModel("nomic-embed-text"))
//	pages, err := ix.Load(ctx, "~/papers/paper.pdf")
//	answer, err := ix.Ask(ctx, "What dataset was used?")
package rag
