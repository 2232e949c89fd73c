package service

import (
	"context"
	"log"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/telemetry"
)

const (
	defaultTopK      = 5
	defaultThreshold = 0.5
)

// ChunkSearcher performs similarity search over stored chunks.
type ChunkSearcher interface {
	Search(ctx context.Context, embedding []float32, threshold float32, limit int, documentID string) ([]domain.RetrievedMatch, error)
}

// RetrieveOptions scopes and bounds one retrieval.
type RetrieveOptions struct {
	TopK       int
	Threshold  float32
	DocumentID string
}

// RetrieverService converts a query into ranked relevant chunks.
type RetrieverService struct {
	embedder Embedder
	searcher ChunkSearcher
}

func NewRetrieverService(embedder Embedder, searcher ChunkSearcher) *RetrieverService {
	return &RetrieverService{
		embedder: embedder,
		searcher: searcher,
	}
}

// Retrieve embeds the query and returns matches above the similarity
// threshold, best first, scoped to one document when DocumentID is set.
// Embedding and store failures degrade to an empty result: a failed
// lookup must never break the chat turn that triggered it.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, opts RetrieveOptions) []domain.RetrievedMatch {
	ctx, span := telemetry.StartSpan(ctx, "retriever.retrieve", telemetry.SpanAttributes{Operation: "retrieve", DocumentID: opts.DocumentID})
	defer span.End()

	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("retrieval degraded to empty context: %v", err)
		telemetry.CaptureError(ctx, err)
		return []domain.RetrievedMatch{}
	}

	matches, err := s.searcher.Search(ctx, embedding, opts.Threshold, opts.TopK, opts.DocumentID)
	if err != nil {
		log.Printf("similarity search failed, degrading to empty context: %v", err)
		telemetry.CaptureError(ctx, err)
		return []domain.RetrievedMatch{}
	}

	return matches
}
