// Package db is the Supabase/Postgres chunk store. It owns the chunks
// table schema, the match_chunks ranked-search function, and the
// batched write path.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/models"
)

// DefaultInsertBatchSize keeps insert payloads under the store's
// request size limits. Row order across batches carries no meaning;
// chunk_index is the only ordering that matters.
const DefaultInsertBatchSize = 200

// ChunkRow is the persisted form of a models.Chunk.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         int64           `bun:"id,pk,autoincrement"`
	DocID      string          `bun:"doc_id,notnull"`
	ChunkIndex int             `bun:"chunk_index,notnull"`
	Content    string          `bun:"content,notnull"`
	Metadata   map[string]any  `bun:"metadata,type:jsonb"`
	Embedding  pgvector.Vector `bun:"embedding"`
}

type Store struct {
	db        *bun.DB
	batchSize int
}

// Connect opens the Supabase Postgres connection. The service role key
// is the database password; nothing is validated until the first call.
func Connect(supabaseURL, supabaseKey string, batchSize int, debug bool) *Store {
	dsn := supabaseURL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(supabaseKey)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}
	return &Store{db: db, batchSize: batchSize}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
	id bigserial PRIMARY KEY,
	doc_id text NOT NULL,
	chunk_index integer NOT NULL,
	content text NOT NULL,
	metadata jsonb NOT NULL DEFAULT '{}',
	embedding vector(%d)
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks (doc_id);
CREATE INDEX IF NOT EXISTS idx_chunks_metadata ON chunks USING gin (metadata);

CREATE OR REPLACE FUNCTION match_chunks(query_embedding vector(%d), match_count integer, filter jsonb DEFAULT '{}')
RETURNS TABLE (content text, metadata jsonb, chunk_index integer, similarity double precision)
LANGUAGE sql STABLE
AS $$
	SELECT c.content, c.metadata, c.chunk_index,
	       1 - (c.embedding <=> query_embedding) AS similarity
	FROM chunks c
	WHERE c.metadata @> filter
	ORDER BY c.embedding <=> query_embedding
	LIMIT match_count;
$$;
`

// InitSchema creates the pgvector extension, the chunks table and the
// match_chunks search function for the given embedding dimensionality.
func (s *Store) InitSchema(ctx context.Context, dimensions int) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, dimensions, dimensions))
	return err
}

// DeleteChunks removes every stored row for a document id. Called
// before re-insertion so a doc_id always maps to exactly one
// generation of chunks.
func (s *Store) DeleteChunks(ctx context.Context, docID string) error {
	_, err := s.db.NewDelete().Model((*ChunkRow)(nil)).Where("doc_id = ?", docID).Exec(ctx)
	return err
}

// InsertChunks appends rows in batches of the configured size.
func (s *Store) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		rows := make([]ChunkRow, 0, end-start)
		for _, c := range chunks[start:end] {
			rows = append(rows, ChunkRow{
				DocID:      c.DocID,
				ChunkIndex: c.Index,
				Content:    c.Content,
				Metadata:   map[string]any{"source": c.Metadata.Source, "page": c.Metadata.Page},
				Embedding:  pgvector.NewVector(c.Embedding),
			})
		}
		if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

type matchRow struct {
	Content    string          `bun:"content"`
	Metadata   json.RawMessage `bun:"metadata"`
	ChunkIndex int             `bun:"chunk_index"`
	Similarity float64         `bun:"similarity"`
}

// Search calls match_chunks and returns up to topK rows ranked by
// descending cosine similarity, restricted to rows whose metadata
// contains the filter keys.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, topK int, filter map[string]any) ([]models.Match, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}

	var rows []matchRow
	err = s.db.NewRaw(
		"SELECT * FROM match_chunks(?, ?, ?)",
		pgvector.NewVector(queryEmbedding), topK, string(filterJSON),
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("match_chunks: %w", err)
	}

	matches := make([]models.Match, len(rows))
	for i, r := range rows {
		var meta models.Metadata
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		matches[i] = models.Match{
			Content:    r.Content,
			Metadata:   meta,
			ChunkIndex: r.ChunkIndex,
			Similarity: r.Similarity,
		}
	}
	return matches, nil
}
