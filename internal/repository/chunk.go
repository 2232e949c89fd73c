package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperchat/paperchat/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence and similarity search of document chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// BatchInsert writes all chunks of one ingestion in a single round trip.
func (r *ChunkRepository) BatchInsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO document_chunks (id, document_id, content, embedding, chunk_index, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID,
			c.DocumentID,
			c.Content,
			pgvector.NewVector(c.Embedding),
			c.ChunkIndex,
			c.Metadata,
			createdAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// Search returns chunks whose cosine similarity to the query embedding
// exceeds threshold, best match first, optionally scoped to one document.
// The ranking lives in the match_document_chunks SQL function so external
// clients and this repository share one definition.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, threshold float32, limit int, documentID string) ([]domain.RetrievedMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, content, metadata, similarity
		 FROM match_document_chunks($1, $2, $3, $4)`,
		vec, float64(threshold), limit, nullableString(documentID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.RetrievedMatch, 0, limit)
	for rows.Next() {
		var m domain.RetrievedMatch
		var similarity float64
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.Content, &m.Metadata, &similarity); err != nil {
			return nil, err
		}
		m.Similarity = float32(similarity)
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// ListByDocument returns up to limit chunks of a document in chunk order.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = 15
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, content, chunk_index, metadata, created_at
		 FROM document_chunks
		 WHERE document_id = $1
		 ORDER BY chunk_index
		 LIMIT $2`,
		documentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.ChunkIndex, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

// CountByDocument reports how many chunks a document has.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`,
		documentID,
	).Scan(&count)
	return count, err
}
