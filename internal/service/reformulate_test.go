package service

import (
	"testing"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRewriteQuery_EmptyHistory(t *testing.T) {
	got := RewriteQuery("what", nil)
	assert.Equal(t, "what", got)
}

func TestRewriteQuery_LongQuestionPassesThrough(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleBot, Content: "Photosynthesis converts light into chemical energy."},
	}
	question := "can you explain in detail how the light-dependent reactions differ from the Calvin cycle"

	got := RewriteQuery(question, history)

	assert.Equal(t, question, got)
}

func TestRewriteQuery_ShortFollowUpPrefixedWithLastBotTurn(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "quiz me"},
		{Role: domain.RoleBot, Content: "Question 1: What pigment absorbs light?"},
		{Role: domain.RoleUser, Content: "A"},
		{Role: domain.RoleBot, Content: "Correct! Ready for the next question?"},
	}

	got := RewriteQuery("yes", history)

	assert.Equal(t, "Correct! Ready for the next question? yes", got)
}

func TestRewriteQuery_NoBotTurnInHistory(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleUser, Content: "anyone there"},
	}

	got := RewriteQuery("next", history)

	assert.Equal(t, "next", got)
}

func TestRewriteQuery_ExactlyTenWordsPassesThrough(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleBot, Content: "Context from before."},
	}
	question := "one two three four five six seven eight nine ten"

	got := RewriteQuery(question, history)

	assert.Equal(t, question, got)
}

func TestRewriteQuery_NineWordsGetsRewritten(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleBot, Content: "The mitochondria is the powerhouse of the cell."},
	}
	question := "one two three four five six seven eight nine"

	got := RewriteQuery(question, history)

	assert.Equal(t, "The mitochondria is the powerhouse of the cell. "+question, got)
}
