package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeExtraction      = "EXTRACTION_FAILED"
	ErrCodeEmbedding       = "EMBEDDING_FAILED"
	ErrCodeRegistration    = "REGISTRATION_FAILED"
	ErrCodeSearch          = "SEARCH_FAILED"
	ErrCodeCompletion      = "COMPLETION_FAILED"
	ErrCodeMalformedOutput = "MALFORMED_OUTPUT"
)

// Validation errors
var (
	ErrEmptyQuestion   = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrNotPDF          = NewDomainError(ErrCodeValidation, "only PDF files are supported")
	ErrMissingDocument = NewDomainError(ErrCodeValidation, "doc_id is required")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrDocumentEmpty    = NewDomainError(ErrCodeNotFound, "Document not found or empty.")
)

// Pipeline errors. Ingestion treats extraction and registration failures
// as fatal and embedding failures as per-unit skips; retrieval treats any
// embedding or search failure as "no context available".
var (
	ErrExtractionFailed   = NewDomainError(ErrCodeExtraction, "document extraction returned no content")
	ErrRegistrationFailed = NewDomainError(ErrCodeRegistration, "failed to register document")
	ErrEmbeddingFailed    = NewDomainError(ErrCodeEmbedding, "failed to generate embedding")
	ErrSearchFailed       = NewDomainError(ErrCodeSearch, "similarity search failed")
	ErrCompletionFailed   = NewDomainError(ErrCodeCompletion, "completion service request failed")
	ErrMalformedQuizJSON  = NewDomainError(ErrCodeMalformedOutput, "quiz output is not valid JSON")
)
