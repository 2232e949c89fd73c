package service

import (
	"context"
	"log"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/openai"
	"github.com/paperchat/paperchat/internal/telemetry"
)

const (
	// historyWindow bounds how many prior turns are replayed to the model.
	historyWindow = 6

	chatTemperature = 0.3
	chatMaxTokens   = 1024

	// degradedAnswer is returned when the completion service fails. The
	// chat endpoint always answers something so the client-side loop
	// stays alive.
	degradedAnswer = "I'm having trouble thinking right now (LLM Error). Please try again."
)

// tutorPrompt encodes both response modes. The quiz-drill mode switch is
// entirely prompt-driven; no server-side state machine enforces the
// one-question-at-a-time protocol.
const tutorPrompt = `You are an intelligent tutor and exam expert.
You have access to a specific document uploaded by the user.

MODES OF OPERATION:

1. **Q&A MODE**: If the user asks a general question, answer strictly based on the provided CONTEXT.
   - Cite your sources using [Source 1], [Source 2], etc.

2. **QUIZ/CBT MODE**: If the user asks for "questions", "quiz", "test", or "CBT":
   - Generate ONE multiple-choice question at a time based on the document.
   - Provide 4 options (A, B, C, D).
   - Wait for the user to answer.
   - DO NOT give the answer immediately.
   - Once the user answers, correct them if wrong, explain why, and then ask: "Ready for the next question?"

GENERAL RULES:
- Keep answers concise and helpful.
- If the context is empty, look at the CHAT HISTORY to see if the user is answering a previous question.
- If the user says "next" or "continue", continue the previous topic.`

// CompletionClient defines the interface for text generation
type CompletionClient interface {
	Complete(ctx context.Context, messages []openai.Message, opts openai.CompletionOptions) (string, error)
}

// Retriever finds chunks relevant to a search query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts RetrieveOptions) []domain.RetrievedMatch
}

// AnswerInput is one chat turn from the client.
type AnswerInput struct {
	Question   string
	History    []domain.ConversationTurn
	DocumentID string
}

// AnswerResult carries the generated answer plus the chunks it was
// grounded on, for client-side citation rendering.
type AnswerResult struct {
	Answer  string
	Sources []domain.RetrievedMatch
}

// ChatService runs the RAG pipeline for one chat turn: reformulate,
// retrieve, assemble context, synthesize.
type ChatService struct {
	retriever  Retriever
	completion CompletionClient
}

func NewChatService(retriever Retriever, completion CompletionClient) *ChatService {
	return &ChatService{
		retriever:  retriever,
		completion: completion,
	}
}

// Answer produces a grounded answer for the question. It never returns a
// completion error to the caller: on failure the result carries a fixed
// degraded-service message and no sources.
func (s *ChatService) Answer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "chat.answer", telemetry.SpanAttributes{Operation: "answer"})
	defer span.End()

	searchQuery := RewriteQuery(input.Question, input.History)

	matches := s.retriever.Retrieve(ctx, searchQuery, RetrieveOptions{
		TopK:       defaultTopK,
		Threshold:  defaultThreshold,
		DocumentID: input.DocumentID,
	})

	contextText := BuildContext(matches)

	messages := buildChatMessages(input.Question, input.History, contextText)

	answer, err := s.completion.Complete(ctx, messages, openai.CompletionOptions{
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		log.Printf("completion failed, returning degraded answer: %v", err)
		telemetry.CaptureError(ctx, err)
		span.SetError(err)
		return &AnswerResult{
			Answer:  degradedAnswer,
			Sources: []domain.RetrievedMatch{},
		}, nil
	}

	return &AnswerResult{
		Answer:  answer,
		Sources: matches,
	}, nil
}

// buildChatMessages assembles instruction, context, a bounded history
// suffix and the current question into the completion message sequence.
func buildChatMessages(question string, history []domain.ConversationTurn, contextText string) []openai.Message {
	messages := make([]openai.Message, 0, historyWindow+3)
	messages = append(messages,
		openai.Message{Role: openai.RoleSystem, Content: tutorPrompt},
		openai.Message{Role: openai.RoleSystem, Content: "### BACKGROUND CONTEXT FROM DOCUMENTS:\n" + contextText},
	)

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		if turn.Content == "" {
			continue
		}
		role := openai.RoleUser
		if turn.Role == domain.RoleBot {
			role = openai.RoleAssistant
		}
		messages = append(messages, openai.Message{Role: role, Content: turn.Content})
	}

	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: question})
	return messages
}
