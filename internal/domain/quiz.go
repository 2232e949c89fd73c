package domain

// QuizQuestion is a single generated multiple-choice question. Answer
// holds the exact text of the correct option rather than an index, so
// grading is done by string equality against option text.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Quiz is a generated quiz for one document. Transient, never persisted.
type Quiz struct {
	Questions    []QuizQuestion `json:"questions"`
	TimerSeconds int            `json:"timer_seconds"`
	Difficulty   string         `json:"difficulty"`
}
