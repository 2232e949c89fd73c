package service

import (
	"context"
	"sync"

	"github.com/paperchat/paperchat/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingGateway wraps the embedding client behind a lazily-initialized
// facade: the expensive client construction happens on the first Embed
// call, not at process start. The once guard makes concurrent first calls
// safe, and a construction failure is sticky for the process lifetime.
type EmbeddingGateway struct {
	factory func() (EmbeddingClient, error)

	once    sync.Once
	client  EmbeddingClient
	initErr error
}

// NewEmbeddingGateway creates a gateway that builds its client on first use.
func NewEmbeddingGateway(factory func() (EmbeddingClient, error)) *EmbeddingGateway {
	return &EmbeddingGateway{factory: factory}
}

// NewEmbeddingGatewayWithClient creates an eagerly-wired gateway, used in tests.
func NewEmbeddingGatewayWithClient(client EmbeddingClient) *EmbeddingGateway {
	g := &EmbeddingGateway{}
	g.once.Do(func() { g.client = client })
	return g
}

// Embed generates an embedding for the given text. All failures are
// reported as EMBEDDING_FAILED; the caller decides whether that means
// skip-the-unit (ingestion) or no-context (retrieval).
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	g.once.Do(func() {
		g.client, g.initErr = g.factory()
	})
	if g.initErr != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "embedding client initialization failed", g.initErr)
	}

	embedding, err := g.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "failed to generate embedding", err)
	}

	return embedding, nil
}
