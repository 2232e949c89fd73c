package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/parser"
	"github.com/paperchat/paperchat/internal/telemetry"
)

// minChunkChars is the minimum trimmed length an extracted unit must have
// to be indexed; anything shorter is near-empty boilerplate.
const minChunkChars = 10

// Embedder generates a fixed-dimension vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor turns an uploaded file into ordered page/section units.
type Extractor interface {
	ParseFile(ctx context.Context, path, filename string) ([]parser.Page, error)
}

// DocumentRegistry persists document records.
type DocumentRegistry interface {
	Create(ctx context.Context, d *domain.Document) error
}

// ChunkWriter persists assembled chunks in bulk.
type ChunkWriter interface {
	BatchInsert(ctx context.Context, chunks []domain.Chunk) error
}

// UploadArchiver stores the raw uploaded bytes for later reference.
type UploadArchiver interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// IngestInput carries one uploaded file through the pipeline.
type IngestInput struct {
	Data     []byte
	Filename string
}

// IngestResult is the structured outcome of an ingestion run. A document
// whose every unit was discarded yields Status "error" with a message,
// not a hard failure.
type IngestResult struct {
	Status     string
	DocumentID string
	ChunkCount int
	Message    string
}

// IngestionService orchestrates upload -> extract -> embed -> persist.
type IngestionService struct {
	documents DocumentRegistry
	chunks    ChunkWriter
	extractor Extractor
	embedder  Embedder
	archiver  UploadArchiver
	uuidGen   UUIDGenerator
}

func NewIngestionService(documents DocumentRegistry, chunks ChunkWriter, extractor Extractor, embedder Embedder) *IngestionService {
	return &IngestionService{
		documents: documents,
		chunks:    chunks,
		extractor: extractor,
		embedder:  embedder,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// WithArchiver enables best-effort archival of raw uploads.
func (s *IngestionService) WithArchiver(archiver UploadArchiver) *IngestionService {
	s.archiver = archiver
	return s
}

// WithUUIDGenerator overrides ID generation, used in tests.
func (s *IngestionService) WithUUIDGenerator(gen UUIDGenerator) *IngestionService {
	s.uuidGen = gen
	return s
}

// Ingest runs the full pipeline for one upload. Embedding failures skip
// the affected unit; extraction and store failures abort the run. The
// scratch file holding the upload is removed on every exit path.
func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ingestion.ingest", telemetry.SpanAttributes{Operation: "ingest"})
	defer span.End()

	doc := &domain.Document{
		ID:        s.uuidGen.NewString(),
		Name:      input.Filename,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRegistration, "failed to register document", err)
	}

	tmp, err := os.CreateTemp("", "paperchat-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(input.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close scratch file: %w", err)
	}

	pages, err := s.extractor.ParseFile(ctx, tmpPath, input.Filename)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "document extraction failed", err)
	}
	if len(pages) == 0 {
		return nil, domain.ErrExtractionFailed
	}

	chunks := s.assembleChunks(ctx, doc, input.Filename, pages)

	if len(chunks) == 0 {
		return &IngestResult{
			Status:     "error",
			DocumentID: doc.ID,
			ChunkCount: 0,
			Message:    "No valid text chunks found.",
		}, nil
	}

	if err := s.chunks.BatchInsert(ctx, chunks); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRegistration, "failed to store chunks", err)
	}

	if s.archiver != nil {
		key := fmt.Sprintf("documents/%s/%s", doc.ID, input.Filename)
		if err := s.archiver.PutObject(ctx, key, input.Data, "application/pdf"); err != nil {
			log.Printf("archive upload failed for document %s: %v", doc.ID, err)
		}
	}

	return &IngestResult{
		Status:     "success",
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Message:    "Document processed successfully",
	}, nil
}

func (s *IngestionService) assembleChunks(ctx context.Context, doc *domain.Document, filename string, pages []parser.Page) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(pages))
	for i, page := range pages {
		content := strings.TrimSpace(page.Text)
		if len(content) < minChunkChars {
			continue
		}

		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			log.Printf("skipping unit %d of %s: %v", i, doc.ID, err)
			continue
		}

		pageLabel := page.PageLabel
		if pageLabel == "" {
			pageLabel = strconv.Itoa(i + 1)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			Content:    content,
			Embedding:  embedding,
			ChunkIndex: i,
			Metadata: domain.ChunkMetadata{
				Page:   pageLabel,
				Source: filename,
				BBox:   [4]float64{0, 0, 0, 0},
			},
		})
	}
	return chunks
}
