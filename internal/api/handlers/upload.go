package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/service"
)

const maxUploadMemory = 10 << 20

// IngestionService runs the document ingestion pipeline.
type IngestionService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type UploadHandler struct {
	svc IngestionService
}

func NewUploadHandler(svc IngestionService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type UploadResponse struct {
	Status      string `json:"status"`
	DocID       string `json:"doc_id,omitempty"`
	ChunksCount int    `json:"chunks_count"`
	Message     string `json:"message,omitempty"`
}

// Upload accepts a multipart PDF upload and indexes it.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.JSON(w, http.StatusBadRequest, UploadResponse{Status: "error", Message: "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.JSON(w, http.StatusBadRequest, UploadResponse{Status: "error", Message: "file field is required"})
		return
	}
	defer file.Close()

	if !isPDF(header.Filename) {
		api.JSON(w, http.StatusBadRequest, UploadResponse{Status: "error", Message: "only PDF files are supported"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.JSON(w, http.StatusBadRequest, UploadResponse{Status: "error", Message: "failed to read upload"})
		return
	}

	result, err := h.svc.Ingest(r.Context(), service.IngestInput{
		Data:     data,
		Filename: header.Filename,
	})
	if err != nil {
		api.JSON(w, api.DomainErrorToHTTP(err), UploadResponse{Status: "error", Message: err.Error()})
		return
	}

	api.JSON(w, http.StatusOK, UploadResponse{
		Status:      result.Status,
		DocID:       result.DocumentID,
		ChunksCount: result.ChunkCount,
		Message:     result.Message,
	})
}

func isPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
