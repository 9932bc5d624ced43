// Package ingest orchestrates the ingest pipeline: pages in, one fresh
// generation of embedded chunks in the store out. Everything runs
// sequentially; a failure at any step aborts the run with no partial
// cleanup.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/models"
	"pdf-rag/internal/splitter"
)

// Store is the slice of the chunk store this pipeline needs.
type Store interface {
	DeleteChunks(ctx context.Context, docID string) error
	InsertChunks(ctx context.Context, chunks []models.Chunk) error
}

// BuildChunks splits the non-empty pages in order and attributes each
// chunk to its page. Chunk indexes are document-wide, 0-based and
// contiguous.
func BuildChunks(docID, source string, pages []models.Page, sp *splitter.Splitter) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		for _, content := range sp.Split(page.Text) {
			chunks = append(chunks, models.Chunk{
				DocID:    docID,
				Index:    len(chunks),
				Content:  content,
				Metadata: models.Metadata{Source: source, Page: page.Number},
			})
		}
	}
	return chunks
}

// Run chunks the pages, embeds the chunks in input-order batches,
// deletes the previous generation for the document id and inserts the
// new rows. It returns the number of chunks stored. Re-running with
// the same document id is idempotent because of the delete step.
func Run(ctx context.Context, cfg *config.Config, pages []models.Page, embedder embedding.Embedder, store Store) (int, error) {
	sp := splitter.New(cfg.Chunking.Size, cfg.Chunking.Overlap, nil)
	chunks := BuildChunks(cfg.Document.ID, cfg.Document.Path, pages, sp)
	log.Info().
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Int("chunk_size", cfg.Chunking.Size).
		Int("overlap", cfg.Chunking.Overlap).
		Msg("built chunks")

	batch := cfg.Embedder.BatchSize
	for start := 0; start < len(chunks); start += batch {
		end := min(start+batch, len(chunks))
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Content
		}
		vectors, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end-1, len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
		log.Debug().Int("embedded", end).Int("total", len(chunks)).Msg("embedding progress")
	}

	// Exactly one generation per doc_id: clear the old rows first.
	if err := store.DeleteChunks(ctx, cfg.Document.ID); err != nil {
		return 0, fmt.Errorf("delete chunks for %s: %w", cfg.Document.ID, err)
	}
	if err := store.InsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("insert chunks: %w", err)
	}
	return len(chunks), nil
}
