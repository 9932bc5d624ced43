package models

// Page is one page of extracted document text. Pages are ephemeral:
// they exist between extraction and chunking and are never stored.
type Page struct {
	Number int // 1-based
	Text   string
}

// Metadata is attached to every stored chunk and is the unit of
// filtering at query time.
type Metadata struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
}

// Chunk is one bounded window of document text together with its
// embedding. Index is the 0-based position within the full ordered
// chunk list of the document, not within a page.
type Chunk struct {
	DocID     string
	Index     int
	Content   string
	Metadata  Metadata
	Embedding []float32
}

// Match is a single similarity-search result. Similarity is
// store-defined; the only guarantee is that it is bounded and that
// higher means more similar.
type Match struct {
	Content    string
	Metadata   Metadata
	ChunkIndex int
	Similarity float64
}
