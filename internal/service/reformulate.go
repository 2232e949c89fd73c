package service

import (
	"strings"

	"github.com/paperchat/paperchat/internal/domain"
)

// shortQuestionWordLimit is the word count below which a question is
// considered an elliptical follow-up ("B", "next", "why") that carries
// too little standalone meaning for vector search.
const shortQuestionWordLimit = 10

// RewriteQuery decides whether the question needs rewriting into a
// self-contained search query. Short follow-ups are re-anchored to the
// active topic by prefixing the most recent bot turn's content. This is
// a best-effort heuristic, not a guarantee of a better query.
func RewriteQuery(question string, history []domain.ConversationTurn) string {
	if len(history) == 0 {
		return question
	}
	if len(strings.Fields(question)) >= shortQuestionWordLimit {
		return question
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleBot {
			return history[i].Content + " " + question
		}
	}

	return question
}
