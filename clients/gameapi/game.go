package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ScenarioResponse is the scenario payload as generated by the service.
type ScenarioResponse struct {
	QuestionNumber   int      `json:"question_number"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	StoryProgression string   `json:"story_progression,omitempty"`
	DeathRiskLevel   string   `json:"death_risk_level,omitempty"`
	SurvivalFactors  []string `json:"survival_factors,omitempty"`
}

// SubmitAnswerRequest is the submit-answer request body.
type SubmitAnswerRequest struct {
	SessionCode    string `json:"session_code"`
	PlayerID       int    `json:"player_id"`
	QuestionNumber int    `json:"question_number"`
	AnswerText     string `json:"answer_text"`
	IsRushed       bool   `json:"is_rushed,omitempty"`
}

// DeathNarrativeResponse is the dramatized elimination payload.
type DeathNarrativeResponse struct {
	PlayerName     string `json:"player_name"`
	FateTitle      string `json:"fate_title"`
	DeathNarrative string `json:"death_narrative"`
}

// SubmitAnswerResponse is the scored verdict for a submitted answer.
type SubmitAnswerResponse struct {
	Message              string                  `json:"message"`
	Score                int                     `json:"score"`
	Analysis             string                  `json:"analysis"`
	StoryProgression     string                  `json:"story_progression,omitempty"`
	ChoiceClassification string                  `json:"choice_classification,omitempty"`
	InstantDeath         bool                    `json:"instant_death,omitempty"`
	GameOver             bool                    `json:"game_over,omitempty"`
	EliminationReason    string                  `json:"elimination_reason,omitempty"`
	DeathNarrative       *DeathNarrativeResponse `json:"death_narrative,omitempty"`
}

// ResultEntry is one row of the final results board.
type ResultEntry struct {
	PlayerName        string `json:"player_name"`
	Rank              int    `json:"rank,omitempty"`
	Survived          bool   `json:"survived,omitempty"`
	Eliminated        bool   `json:"eliminated,omitempty"`
	FateTitle         string `json:"fate_title"`
	Narrative         string `json:"narrative,omitempty"`
	DeathNarrative    string `json:"death_narrative,omitempty"`
	SurvivalAnalysis  string `json:"survival_analysis,omitempty"`
	EliminationReason string `json:"elimination_reason,omitempty"`
}

// ResultsResponse is the end-of-game summary for the whole session.
type ResultsResponse struct {
	Results      []ResultEntry `json:"results"`
	Survivors    int           `json:"survivors"`
	Eliminated   int           `json:"eliminated"`
	TotalPlayers int           `json:"total_players"`
}

// GetScenario fetches the scenario for one question, tagged with the
// player so the service can condition generation on their prior choices.
func (c *GameAPIClient) GetScenario(ctx context.Context, sessionCode string, questionNumber, playerID int) (*ScenarioResponse, error) {
	endpoint := fmt.Sprintf(getScenarioPath, url.PathEscape(sessionCode), questionNumber)
	endpoint += fmt.Sprintf("?player_id=%d", playerID)

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("get scenario %d: %w", questionNumber, err)
	}

	var resp ScenarioResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("get scenario %d: failed to parse response: %w", questionNumber, err)
	}
	if resp.Description == "" {
		return nil, fmt.Errorf("get scenario %d: empty scenario payload", questionNumber)
	}
	return &resp, nil
}

// SubmitAnswer sends an answer for scoring and returns the verdict.
func (c *GameAPIClient) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("submit answer: failed to marshal request: %w", err)
	}

	body, err := c.Post(ctx, submitAnswerPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("submit answer for question %d: %w", req.QuestionNumber, err)
	}

	var resp SubmitAnswerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("submit answer for question %d: failed to parse response: %w", req.QuestionNumber, err)
	}
	return &resp, nil
}

// GetResults fetches the final board for a session.
func (c *GameAPIClient) GetResults(ctx context.Context, sessionCode string) (*ResultsResponse, error) {
	endpoint := fmt.Sprintf(getResultsPath, url.PathEscape(sessionCode))

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("get results for %s: %w", sessionCode, err)
	}

	var resp ResultsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("get results for %s: failed to parse response: %w", sessionCode, err)
	}
	return &resp, nil
}
