// Package chromemdb is the embedded chromem-go chunk store. It keeps
// the whole index in a local file, which makes the pipeline runnable
// without a hosted database.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"pdf-rag/internal/models"
)

type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore opens (or creates) a chromem collection. With inMemory set
// the index is not persisted between runs.
func NewStore(path, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &Store{db: db, collection: collection}, nil
}

// DeleteChunks removes every stored row for a document id.
func (s *Store) DeleteChunks(ctx context.Context, docID string) error {
	return s.collection.Delete(ctx, map[string]string{"doc_id": docID}, nil)
}

// InsertChunks adds rows to the collection. IDs are derived from
// doc_id and chunk_index, so re-inserting the same generation cannot
// produce duplicate rows even without the preceding delete.
func (s *Store) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s-%d", c.DocID, c.Index))).String()
		docs[i] = chromem.Document{
			ID:      id,
			Content: c.Content,
			Metadata: map[string]string{
				"doc_id":      c.DocID,
				"source":      c.Metadata.Source,
				"page":        strconv.Itoa(c.Metadata.Page),
				"chunk_index": strconv.Itoa(c.Index),
			},
			Embedding: c.Embedding,
		}
	}
	return s.collection.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Search returns up to topK rows ranked by descending cosine
// similarity, restricted to rows whose metadata matches the filter.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, topK int, filter map[string]any) ([]models.Match, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	where := make(map[string]string, len(filter))
	for k, v := range filter {
		where[k] = fmt.Sprint(v)
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       topK,
		Where:          where,
	})
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	matches := make([]models.Match, len(results))
	for i, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		matches[i] = models.Match{
			Content:    r.Content,
			Metadata:   models.Metadata{Source: r.Metadata["source"], Page: page},
			ChunkIndex: idx,
			Similarity: float64(r.Similarity),
		}
	}
	return matches, nil
}

// Close exists for symmetry with the Postgres store; chromem persists
// on write and holds no connection.
func (s *Store) Close() error {
	return nil
}
