package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/service"
)

// ChatService answers one conversation turn.
type ChatService interface {
	Answer(ctx context.Context, input service.AnswerInput) (*service.AnswerResult, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Question string                    `json:"question"`
	History  []domain.ConversationTurn `json:"history"`
	DocID    *string                   `json:"doc_id"`
}

type ChatResponse struct {
	Answer  string                  `json:"answer"`
	Sources []domain.RetrievedMatch `json:"sources"`
}

// Chat runs the RAG pipeline for one question. Pipeline degradation is
// handled inside the service, so anything past request validation
// answers 200.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.HandleError(w, domain.ErrEmptyQuestion)
		return
	}

	docID := ""
	if req.DocID != nil {
		docID = *req.DocID
	}

	result, err := h.svc.Answer(r.Context(), service.AnswerInput{
		Question:   req.Question,
		History:    req.History,
		DocumentID: docID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []domain.RetrievedMatch{}
	}

	api.JSON(w, http.StatusOK, ChatResponse{
		Answer:  result.Answer,
		Sources: sources,
	})
}
