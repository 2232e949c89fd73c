package domain

// Conversation roles as supplied by the client. The service trusts the
// caller's role tagging and never persists history itself.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ConversationTurn is one prior exchange in a chat session,
// ordered most-recent-last.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
