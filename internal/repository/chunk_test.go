//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitVector returns a 384-dim vector with all weight on one axis, so
// cosine similarity between different axes is exactly 0 and identical
// axes is exactly 1.
func unitVector(axis int) []float32 {
	v := make([]float32, 384)
	v[axis] = 1
	return v
}

func createTestDocument(ctx context.Context, t *testing.T, repo *DocumentRepository, name string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, doc))
	return doc
}

func insertTestChunks(ctx context.Context, t *testing.T, repo *ChunkRepository, docID string, axes ...int) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, len(axes))
	for i, axis := range axes {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: docID,
			Content:    "chunk content",
			Embedding:  unitVector(axis),
			ChunkIndex: i,
			Metadata:   domain.ChunkMetadata{Page: "1", Source: "test.pdf"},
		}
	}
	require.NoError(t, repo.BatchInsert(ctx, chunks))
	return chunks
}

func newChunkTestPool(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	return pool, func() {
		pool.Close()
		pc.Terminate(ctx)
	}
}

func TestChunkRepository_BatchInsertAndList(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := createTestDocument(ctx, t, docRepo, "paper.pdf")
	insertTestChunks(ctx, t, chunkRepo, doc.ID, 0, 1, 2)

	chunks, err := chunkRepo.ListByDocument(ctx, doc.ID, 15)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 2, chunks[2].ChunkIndex)
	assert.Equal(t, "test.pdf", chunks[0].Metadata.Source)

	count, err := chunkRepo.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChunkRepository_ListByDocument_RespectsLimit(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := createTestDocument(ctx, t, docRepo, "paper.pdf")
	insertTestChunks(ctx, t, chunkRepo, doc.ID, 0, 1, 2, 3)

	chunks, err := chunkRepo.ListByDocument(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestChunkRepository_Search_ThresholdAndOrder(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := createTestDocument(ctx, t, docRepo, "paper.pdf")
	chunks := insertTestChunks(ctx, t, chunkRepo, doc.ID, 0, 1)

	matches, err := chunkRepo.Search(ctx, unitVector(0), 0.5, 5, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, chunks[0].ID, matches[0].ID)
	assert.InDelta(t, 1.0, float64(matches[0].Similarity), 0.001)
}

func TestChunkRepository_Search_DocumentScope(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	docA := createTestDocument(ctx, t, docRepo, "a.pdf")
	docB := createTestDocument(ctx, t, docRepo, "b.pdf")
	insertTestChunks(ctx, t, chunkRepo, docA.ID, 0)
	insertTestChunks(ctx, t, chunkRepo, docB.ID, 0)

	matches, err := chunkRepo.Search(ctx, unitVector(0), 0.5, 5, docA.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, docA.ID, matches[0].DocumentID)

	matches, err = chunkRepo.Search(ctx, unitVector(0), 0.5, 5, "")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestChunkRepository_Search_NoMatchesAboveThreshold(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := createTestDocument(ctx, t, docRepo, "paper.pdf")
	insertTestChunks(ctx, t, chunkRepo, doc.ID, 1)

	matches, err := chunkRepo.Search(ctx, unitVector(0), 0.5, 5, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChunkRepository_DeleteCascadesWithDocument(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := newChunkTestPool(ctx, t)
	defer cleanup()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := createTestDocument(ctx, t, docRepo, "paper.pdf")
	insertTestChunks(ctx, t, chunkRepo, doc.ID, 0)

	_, err := pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", doc.ID)
	require.NoError(t, err)

	count, err := chunkRepo.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
