package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIngestionService mocks the ingestion pipeline
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func multipartUpload(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.Filename == "paper.pdf" && string(input.Data) == "%PDF-1.4"
	})).Return(&service.IngestResult{
		Status:     "success",
		DocumentID: "doc-1",
		ChunkCount: 12,
		Message:    "Document processed successfully",
	}, nil)

	body, contentType := multipartUpload(t, "file", "paper.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "doc-1", resp.DocID)
	assert.Equal(t, 12, resp.ChunksCount)
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_MissingFileField(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	body, contentType := multipartUpload(t, "document", "paper.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "Ingest")
}

func TestUploadHandler_RejectsNonPDF(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "only PDF files are supported", resp.Message)
	mockSvc.AssertNotCalled(t, "Ingest")
}

func TestUploadHandler_UppercaseExtensionAccepted(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(&service.IngestResult{
		Status:     "success",
		DocumentID: "doc-1",
		ChunkCount: 1,
	}, nil)

	body, contentType := multipartUpload(t, "file", "PAPER.PDF", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_ExtractionFailureMapsTo422(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrExtractionFailed)

	body, contentType := multipartUpload(t, "file", "paper.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestUploadHandler_ZeroChunkOutcomePassesThrough(t *testing.T) {
	mockSvc := new(MockIngestionService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(&service.IngestResult{
		Status:     "error",
		DocumentID: "doc-1",
		ChunkCount: 0,
		Message:    "No valid text chunks found.",
	}, nil)

	body, contentType := multipartUpload(t, "file", "paper.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Upload(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 0, resp.ChunksCount)
	assert.Equal(t, "No valid text chunks found.", resp.Message)
}
