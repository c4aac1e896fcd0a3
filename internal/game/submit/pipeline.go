// Package submit sends answers to the collaborator service for scoring
// and applies the rushed-answer penalty rules on top of its verdicts.
package submit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/frightfate/frightfate/clients/gameapi"
	"github.com/frightfate/frightfate/internal/models"
)

// API is the slice of the collaborator client the pipeline needs.
type API interface {
	SubmitAnswer(ctx context.Context, req gameapi.SubmitAnswerRequest) (*gameapi.SubmitAnswerResponse, error)
}

// Config holds the rushed-answer penalty tuning. The death probability is
// a deliberate "last-second decisions are often fatal" gameplay choice,
// not an error margin.
type Config struct {
	Penalty          int     // subtracted from the service score
	EliminationFloor int     // penalized score below this is always fatal
	DeathProbability float64 // otherwise, one weighted coin flip
}

// DefaultConfig matches the shipped gameplay tuning.
func DefaultConfig() Config {
	return Config{Penalty: 30, EliminationFloor: 25, DeathProbability: 0.7}
}

// Request is one answer headed for the service.
type Request struct {
	Session        models.Session
	QuestionNumber int
	AnswerText     string
}

// Result is the classified outcome of a submission, ready for the
// orchestrator's verdict handler.
type Result struct {
	Score             int
	Analysis          string
	StoryContext      string
	Classification    string
	Rushed            bool
	Eliminated        bool
	EliminationReason string
	Narrative         *models.DeathNarrative
}

type Pipeline struct {
	api API
	cfg Config

	// rng drives the rushed-death coin flip; guarded because math/rand
	// sources are not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewPipeline creates a Pipeline. A nil rng gets a time-seeded source;
// tests pass a fixed seed.
func NewPipeline(api API, cfg Config, rng *rand.Rand) *Pipeline {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pipeline{api: api, cfg: cfg, rng: rng}
}

// Submit sends a validated answer. A transport failure is returned to the
// caller, which restarts the countdown rather than charging the player
// for lost time.
func (p *Pipeline) Submit(ctx context.Context, req Request) (*Result, error) {
	resp, err := p.api.SubmitAnswer(ctx, gameapi.SubmitAnswerRequest{
		SessionCode:    req.Session.Code,
		PlayerID:       req.Session.PlayerID,
		QuestionNumber: req.QuestionNumber,
		AnswerText:     req.AnswerText,
	})
	if err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}

	result := toResult(resp, req.Session.PlayerName)
	log.Info().
		Int("question_number", req.QuestionNumber).
		Int("score", result.Score).
		Bool("eliminated", result.Eliminated).
		Msg("answer scored")
	return result, nil
}

// SubmitRushed sends an answer captured at the instant the countdown hit
// zero. The service score is penalized, and elimination is imposed either
// by the floor or by a single weighted coin flip. Never returns nil: a
// transport failure at this point is itself fatal, since there is no
// timer left to restore.
func (p *Pipeline) SubmitRushed(ctx context.Context, req Request) *Result {
	resp, err := p.api.SubmitAnswer(ctx, gameapi.SubmitAnswerRequest{
		SessionCode:    req.Session.Code,
		PlayerID:       req.Session.PlayerID,
		QuestionNumber: req.QuestionNumber,
		AnswerText:     req.AnswerText,
		IsRushed:       true,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Int("question_number", req.QuestionNumber).
			Msg("rushed submission failed, eliminating locally")
		return &Result{
			Rushed:            true,
			Eliminated:        true,
			EliminationReason: "Your desperate last-second plan was lost to the darkness.",
			Narrative:         localNarrative(req.Session.PlayerName, "The moment of hesitation proved fatal. Your final words never reached anyone."),
		}
	}

	result := toResult(resp, req.Session.PlayerName)
	result.Rushed = true
	result.Score = penalize(resp.Score, p.cfg.Penalty)
	result.Analysis = "[RUSHED] " + result.Analysis

	if result.Eliminated {
		// The service already imposed instant death; the coin is moot.
		return result
	}

	if result.Score < p.cfg.EliminationFloor {
		result.Eliminated = true
		result.EliminationReason = "Your rushed decision was too weak to survive."
	} else if p.flipDeathCoin() {
		result.Eliminated = true
		result.EliminationReason = "You acted at the last possible second, and the odds were never in your favor."
	}
	if result.Eliminated && result.Narrative == nil {
		result.Narrative = localNarrative(req.Session.PlayerName, "Panic set in as the clock ran out, and panic is rarely survivable.")
	}

	log.Info().
		Int("question_number", req.QuestionNumber).
		Int("penalized_score", result.Score).
		Bool("eliminated", result.Eliminated).
		Msg("rushed answer scored")
	return result
}

// flipDeathCoin rolls the rushed-death probability exactly once.
func (p *Pipeline) flipDeathCoin() bool {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.Float64() < p.cfg.DeathProbability
}

func penalize(score, penalty int) int {
	if score < penalty {
		return 0
	}
	return score - penalty
}

func toResult(resp *gameapi.SubmitAnswerResponse, playerName string) *Result {
	result := &Result{
		Score:          clampScore(resp.Score),
		Analysis:       resp.Analysis,
		StoryContext:   resp.StoryProgression,
		Classification: resp.ChoiceClassification,
		Eliminated:     resp.InstantDeath,
	}
	if resp.InstantDeath {
		result.EliminationReason = resp.EliminationReason
		if result.EliminationReason == "" {
			result.EliminationReason = "Poor survival choices"
		}
		if resp.DeathNarrative != nil {
			result.Narrative = &models.DeathNarrative{
				PlayerName: resp.DeathNarrative.PlayerName,
				FateTitle:  resp.DeathNarrative.FateTitle,
				Narrative:  resp.DeathNarrative.DeathNarrative,
			}
		} else {
			result.Narrative = localNarrative(playerName, "Your poor decisions caught up with you, leading to your untimely demise.")
		}
	}
	return result
}

func localNarrative(playerName, text string) *models.DeathNarrative {
	return &models.DeathNarrative{
		PlayerName: playerName,
		FateTitle:  "ELIMINATED",
		Narrative:  text,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
