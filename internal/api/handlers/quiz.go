package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/domain"
)

// QuizService generates quizzes for a document.
type QuizService interface {
	Generate(ctx context.Context, documentID string, numQuestions int, difficulty string) (*domain.Quiz, error)
}

type QuizHandler struct {
	svc QuizService
}

func NewQuizHandler(svc QuizService) *QuizHandler {
	return &QuizHandler{svc: svc}
}

type QuizRequest struct {
	DocID        string `json:"doc_id"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}

// Generate builds a multiple-choice quiz from a document's chunks.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DocID == "" {
		api.HandleError(w, domain.ErrMissingDocument)
		return
	}

	quiz, err := h.svc.Generate(r.Context(), req.DocID, req.NumQuestions, req.Difficulty)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, quiz)
}
