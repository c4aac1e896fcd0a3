package models

// ChoiceRecord is an append-only history entry for one answered question.
// Records are never mutated after creation; they feed the adaptive time
// limit for later rounds.
type ChoiceRecord struct {
	QuestionNumber int    `json:"question_number"`
	AnswerText     string `json:"answer_text"`
	Score          int    `json:"score"` // 0-100
	Classification string `json:"choice_classification,omitempty"`
	WasRushed      bool   `json:"was_rushed,omitempty"`
	TimedOut       bool   `json:"timed_out,omitempty"`
}

// AverageScore returns the running average score over the history, or 0
// for an empty history.
func AverageScore(history []ChoiceRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	total := 0
	for _, c := range history {
		total += c.Score
	}
	return float64(total) / float64(len(history))
}
