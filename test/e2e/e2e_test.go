//go:build e2e

package e2e

import (
	"testing"

	"github.com/paperchat/paperchat/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_DocumentLifecycle walks a document through upload, chat and quiz.
func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	var docID string

	t.Run("upload indexes the document", func(t *testing.T) {
		resp, status, err := env.UploadPDF("thermo.pdf", []byte("%PDF-1.4 test content"))
		require.NoError(t, err)
		require.Equal(t, 200, status)

		assert.Equal(t, "success", resp["status"])
		assert.Equal(t, float64(2), resp["chunks_count"])
		docID, _ = resp["doc_id"].(string)
		require.NotEmpty(t, docID)

		var count int
		require.NoError(t, env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM document_chunks WHERE document_id = $1", docID).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("chat answers with sources", func(t *testing.T) {
		resp, status, err := env.Post("/chat", map[string]interface{}{
			"question": "what does the document cover",
			"doc_id":   docID,
		})
		require.NoError(t, err)
		require.Equal(t, 200, status)

		assert.Equal(t, "The document covers thermodynamics [Source 1].", resp["answer"])
		sources, ok := resp["sources"].([]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, sources)
	})

	t.Run("chat without doc scope still answers", func(t *testing.T) {
		resp, status, err := env.Post("/chat", map[string]interface{}{
			"question": "tell me about entropy",
		})
		require.NoError(t, err)
		require.Equal(t, 200, status)
		assert.NotEmpty(t, resp["answer"])
	})

	t.Run("quiz generation", func(t *testing.T) {
		resp, status, err := env.Post("/generate_quiz", map[string]interface{}{
			"doc_id":        docID,
			"num_questions": 2,
			"difficulty":    "Medium",
		})
		require.NoError(t, err)
		require.Equal(t, 200, status)

		questions, ok := resp["questions"].([]interface{})
		require.True(t, ok)
		assert.Len(t, questions, 2)
		assert.Equal(t, float64(90), resp["timer_seconds"])
		assert.Equal(t, "Medium", resp["difficulty"])

		first, ok := questions[0].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, first["question"])
		options, ok := first["options"].([]interface{})
		require.True(t, ok)
		assert.Len(t, options, 4)
	})

	t.Run("quiz for unknown document returns 404", func(t *testing.T) {
		resp, status, err := env.Post("/generate_quiz", map[string]interface{}{
			"doc_id": "00000000-0000-0000-0000-000000000000",
		})
		require.NoError(t, err)
		assert.Equal(t, 404, status)
		assert.Equal(t, "Document not found or empty.", resp["error"])
	})
}

// TestE2E_UploadValidation covers rejected uploads.
func TestE2E_UploadValidation(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("non-PDF rejected", func(t *testing.T) {
		resp, status, err := env.UploadPDF("notes.txt", []byte("plain text"))
		require.NoError(t, err)
		assert.Equal(t, 400, status)
		assert.Equal(t, "error", resp["status"])
	})

	t.Run("document with no usable text", func(t *testing.T) {
		env.ParserPages = []parser.Page{
			{Text: "tiny", PageLabel: "1"},
		}

		resp, status, err := env.UploadPDF("empty.pdf", []byte("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, 200, status)
		assert.Equal(t, "error", resp["status"])
		assert.Equal(t, float64(0), resp["chunks_count"])
		assert.Equal(t, "No valid text chunks found.", resp["message"])
	})
}

// TestE2E_Liveness checks the health endpoints.
func TestE2E_Liveness(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.HTTPClient.Get(env.ServerURL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
