package models

import "strings"

// RiskLevel tags how deadly a scenario is. The time limit calculator keys
// its multiplier off this.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// Scenario is one round's narrative prompt plus metadata. Scenarios are
// immutable once received; exactly one is current at a time.
type Scenario struct {
	QuestionNumber  int       `json:"question_number"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StoryContext    string    `json:"story_progression,omitempty"` // consequence text, rounds > 1 only
	RiskLevel       RiskLevel `json:"death_risk_level,omitempty"`
	SurvivalFactors []string  `json:"survival_factors,omitempty"`
}

// WordCount counts whitespace separated words in the scenario description.
func (s *Scenario) WordCount() int {
	return len(strings.Fields(s.Description))
}
