// Package embedding maps text to fixed-dimensionality float vectors by
// calling an external model service. Nothing here computes embeddings;
// the package only guarantees that N inputs come back as N vectors in
// the same order.
package embedding

import "context"

// Embedder is the contract both pipelines depend on. EmbedDocuments
// must preserve input order so vectors align positionally with chunks.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
