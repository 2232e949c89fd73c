package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/paperchat/paperchat/internal/openai"
	"github.com/paperchat/paperchat/internal/telemetry"
)

const (
	// quizChunkLimit caps how many chunks feed one quiz.
	quizChunkLimit = 15
	// quizContextMaxChars caps the concatenated quiz context; the prefix
	// is kept and the remainder dropped.
	quizContextMaxChars = 15000
	// secondsPerQuestion is the fixed time allowance per question.
	secondsPerQuestion = 45

	quizTemperature = 0.2

	defaultDifficulty   = "Hard"
	defaultNumQuestions = 5
)

const quizPromptFormat = `You are a strict university professor setting a %s exam.

TASK:
Generate %d multiple-choice questions based strictly on the provided text.

CRITICAL OUTPUT RULES:
1. Output ONLY valid JSON.
2. Structure:
{
    "questions": [
        {
            "question": "Question text?",
            "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
            "answer": "The exact text of the correct option",
            "explanation": "A short clear reason why this answer is correct based on the text."
        }
    ]
}`

// ChunkReader fetches stored chunks of one document.
type ChunkReader interface {
	ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.Chunk, error)
}

// QuizService generates multiple-choice quizzes from a document's chunks
// via the completion service's structured-output mode.
type QuizService struct {
	chunks     ChunkReader
	completion CompletionClient
}

func NewQuizService(chunks ChunkReader, completion CompletionClient) *QuizService {
	return &QuizService{
		chunks:     chunks,
		completion: completion,
	}
}

// Generate builds a quiz for the document. All failures surface as
// DomainErrors the handler maps to a structured error payload; no partial
// quiz is ever returned.
func (s *QuizService) Generate(ctx context.Context, documentID string, numQuestions int, difficulty string) (*domain.Quiz, error) {
	ctx, span := telemetry.StartSpan(ctx, "quiz.generate", telemetry.SpanAttributes{Operation: "generate_quiz", DocumentID: documentID})
	defer span.End()

	if numQuestions <= 0 {
		numQuestions = defaultNumQuestions
	}
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	chunks, err := s.chunks.ListByDocument(ctx, documentID, quizChunkLimit)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearch, "failed to fetch document chunks", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrDocumentEmpty
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	contextText := strings.Join(contents, "\n")
	if len(contextText) > quizContextMaxChars {
		cut := quizContextMaxChars
		for cut > 0 && !utf8.RuneStart(contextText[cut]) {
			cut--
		}
		contextText = contextText[:cut]
	}

	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: fmt.Sprintf(quizPromptFormat, difficulty, numQuestions)},
		{Role: openai.RoleUser, Content: "CONTEXT DATA:\n" + contextText},
	}

	raw, err := s.completion.Complete(ctx, messages, openai.CompletionOptions{
		Temperature: quizTemperature,
		JSONMode:    true,
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeCompletion, "failed to generate quiz", err)
	}

	var parsed struct {
		Questions []domain.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeMalformedOutput, "quiz output is not valid JSON", err)
	}

	questions := parsed.Questions
	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}

	return &domain.Quiz{
		Questions:    questions,
		TimerSeconds: numQuestions * secondsPerQuestion,
		Difficulty:   difficulty,
	}, nil
}

// stripCodeFences removes Markdown code-fence wrapping. Models routinely
// fence JSON despite instructions, so this runs before every parse.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
