// Package rag is the query pipeline: embed a question, run a filtered
// similarity search, format the ranked results.
package rag

import (
	"context"
	"fmt"
	"strings"

	"pdf-rag/internal/embedding"
	"pdf-rag/internal/models"
)

// Searcher is the slice of the chunk store the query pipeline needs.
type Searcher interface {
	Search(ctx context.Context, queryEmbedding []float32, topK int, filter map[string]any) ([]models.Match, error)
}

type RAG struct {
	embedder embedding.Embedder
	searcher Searcher
	topK     int
	source   string
}

// New wires a query pipeline. When source is non-empty every search is
// restricted to rows whose metadata source matches it.
func New(embedder embedding.Embedder, searcher Searcher, topK int, source string) *RAG {
	return &RAG{embedder: embedder, searcher: searcher, topK: topK, source: source}
}

// Query embeds the question and returns up to topK matches ordered by
// descending similarity. An empty result is a valid answer, not an
// error.
func (r *RAG) Query(ctx context.Context, question string) ([]models.Match, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	filter := map[string]any{}
	if r.source != "" {
		filter["source"] = r.source
	}
	return r.searcher.Search(ctx, queryEmbedding, r.topK, filter)
}

// Format renders matches for the terminal: rank, page, similarity,
// chunk index and a one-line preview per match.
func Format(question string, matches []models.Match) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 90) + "\n")
	fmt.Fprintf(&b, "QUERY: %s\n", question)
	if len(matches) == 0 {
		b.WriteString("  (no matches)\n")
		return b.String()
	}
	for i, m := range matches {
		fmt.Fprintf(&b, "  [%d] page %d  sim=%.3f  chunk_index=%d\n", i+1, m.Metadata.Page, m.Similarity, m.ChunkIndex)
		fmt.Fprintf(&b, "      %s\n", shorten(m.Content, 160))
	}
	return b.String()
}

// shorten collapses whitespace and cuts the text down to width bytes,
// breaking on a word boundary and appending an ellipsis.
func shorten(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= width {
		return s
	}
	cut := strings.LastIndex(s[:width-3], " ")
	if cut <= 0 {
		cut = width - 3
	}
	return s[:cut] + "..."
}
