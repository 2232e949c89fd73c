package domain

import "time"

// Document represents an uploaded source document. Documents are created
// once at upload time and never mutated afterwards.
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ChunkMetadata carries traceability data for a chunk. Page defaults to
// the unit's positional index when the extractor omits a page label, and
// BBox is zeroed when the extractor provides no coordinates.
type ChunkMetadata struct {
	Page   string     `json:"page"`
	Source string     `json:"source"`
	BBox   [4]float64 `json:"bbox"`
}

// Chunk is a unit of a document's text stored together with its embedding
// for similarity search. Chunks are written in bulk during ingestion and
// are read-only afterwards. Every stored embedding must have the same
// dimension as the embedding gateway used at query time.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Embedding  []float32
	ChunkIndex int
	Metadata   ChunkMetadata
	CreatedAt  time.Time
}

// RetrievedMatch is a transient projection of a Chunk plus its similarity
// score, produced per query and never persisted.
type RetrievedMatch struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float32       `json:"similarity"`
}
