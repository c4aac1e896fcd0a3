// Package scenario fetches round content from the collaborator service
// and synthesizes a deterministic fallback when the service fails, so a
// single hiccup never strands the player.
package scenario

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/frightfate/frightfate/clients/gameapi"
	"github.com/frightfate/frightfate/internal/models"
)

// API is the slice of the collaborator client the loader needs.
type API interface {
	GetScenario(ctx context.Context, sessionCode string, questionNumber, playerID int) (*gameapi.ScenarioResponse, error)
}

type Loader struct {
	api API
}

func NewLoader(api API) *Loader {
	return &Loader{api: api}
}

// Load fetches the scenario for questionNumber, tagged with the session's
// player identity. On any failure it returns the fallback scenario and
// true; the returned scenario is never nil.
func (l *Loader) Load(ctx context.Context, sess models.Session, questionNumber int) (*models.Scenario, bool) {
	resp, err := l.api.GetScenario(ctx, sess.Code, questionNumber, sess.PlayerID)
	if err != nil {
		log.Warn().
			Err(err).
			Int("question_number", questionNumber).
			Str("session_code", sess.Code).
			Msg("scenario load failed, using fallback")
		return Fallback(sess.Theme, questionNumber), true
	}

	sc := toModel(resp, questionNumber)
	log.Info().
		Int("question_number", questionNumber).
		Str("title", sc.Title).
		Str("risk_level", string(sc.RiskLevel)).
		Msg("scenario loaded")
	return sc, false
}

func toModel(resp *gameapi.ScenarioResponse, questionNumber int) *models.Scenario {
	risk := models.RiskLevel(strings.ToLower(strings.TrimSpace(resp.DeathRiskLevel)))
	if risk == "" {
		risk = models.RiskMedium
	}
	return &models.Scenario{
		QuestionNumber:  questionNumber,
		Title:           resp.Title,
		Description:     resp.Description,
		StoryContext:    resp.StoryProgression,
		RiskLevel:       risk,
		SurvivalFactors: resp.SurvivalFactors,
	}
}
