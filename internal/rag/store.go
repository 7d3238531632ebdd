// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"math"
	"sort"
)

// =============================================================================
// VECTOR STORE
// =============================================================================

// Hit is a stored chunk with its similarity to a query.
type Hit struct {
	Chunk Chunk
	Score float64
}

// Store holds embedded chunks in memory. It is built once and then only
// read, so it needs no locking.
type Store struct {
	chunks  []Chunk
	vectors [][]float64
	norms   []float64
}

// Add appends a chunk and its vector. Zero vectors are kept but never
// match.
func (s *Store) Add(c Chunk, vector []float64) {
	s.chunks = append(s.chunks, c)
	s.vectors = append(s.vectors, vector)
	s.norms = append(s.norms, norm2(vector))
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Search returns up to k chunks ranked by descending cosine similarity to
// query. Chunks whose vector length differs from the query are skipped.
// Equal scores keep insertion order.
func (s *Store) Search(query []float64, k int) []Hit {
	qn := norm2(query)
	if qn == 0 || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(s.chunks))
	for i, vec := range s.vectors {
		if len(vec) != len(query) || s.norms[i] == 0 {
			continue
		}
		hits = append(hits, Hit{
			Chunk: s.chunks[i],
			Score: dot(vec, query) / (s.norms[i] * qn),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm2(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
