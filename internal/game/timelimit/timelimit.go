// Package timelimit computes the per-question countdown budget from
// scenario complexity and player history. Both entry points are pure:
// identical inputs always produce identical outputs.
package timelimit

import (
	"math"

	"github.com/frightfate/frightfate/internal/models"
)

// Config holds the clamp range and pacing constants for limit computation.
type Config struct {
	MinSeconds     int
	MaxSeconds     int
	WordsPerSecond float64 // assumed reading-plus-composition rate
}

// DefaultConfig matches the shipped gameplay tuning.
func DefaultConfig() Config {
	return Config{
		MinSeconds:     120,
		MaxSeconds:     500,
		WordsPerSecond: 0.4,
	}
}

// riskMultipliers scales the base budget by how deadly the scenario is.
// Unrecognized levels fall through to 1.0.
var riskMultipliers = map[models.RiskLevel]float64{
	models.RiskLow:     0.8,
	models.RiskMedium:  1.0,
	models.RiskHigh:    1.2,
	models.RiskExtreme: 1.5,
}

// History modifiers, summed additively into a single factor.
const (
	modEfficientPlayer = -0.10 // average >= 75: strong players get slightly less time
	modStruggling      = 0.15  // average <= 35
	modWasRushed       = 0.20  // any past choice flagged rushed
	modTimedOut        = 0.30  // any past choice flagged timed out
	modLateGameMercy   = 0.25  // question >= 4 and average < 50

	highAverage      = 75
	lowAverage       = 35
	strugglingAvg    = 50
	lateGameQuestion = 4
)

// BaseLimit derives the budget for a scenario from its description word
// count and risk level, clamped to [MinSeconds, MaxSeconds].
func (c Config) BaseLimit(sc *models.Scenario) int {
	seconds := float64(sc.WordCount()) / c.WordsPerSecond

	mult, ok := riskMultipliers[sc.RiskLevel]
	if !ok {
		mult = 1.0
	}
	return c.clamp(seconds * mult)
}

// AdaptiveLimit starts from BaseLimit and adjusts for the player's running
// performance. An empty history returns the base limit unchanged.
func (c Config) AdaptiveLimit(sc *models.Scenario, history []models.ChoiceRecord, questionNumber int) int {
	base := c.BaseLimit(sc)
	if len(history) == 0 {
		return base
	}

	avg := models.AverageScore(history)
	anyRushed := false
	anyTimedOut := false
	for _, choice := range history {
		anyRushed = anyRushed || choice.WasRushed
		anyTimedOut = anyTimedOut || choice.TimedOut
	}

	factor := 1.0
	if avg >= highAverage {
		factor += modEfficientPlayer
	}
	if avg <= lowAverage {
		factor += modStruggling
	}
	if anyRushed {
		factor += modWasRushed
	}
	if anyTimedOut {
		factor += modTimedOut
	}
	if questionNumber >= lateGameQuestion && avg < strugglingAvg {
		factor += modLateGameMercy
	}

	return c.clamp(float64(base) * factor)
}

func (c Config) clamp(seconds float64) int {
	rounded := int(math.Round(seconds))
	if rounded < c.MinSeconds {
		return c.MinSeconds
	}
	if rounded > c.MaxSeconds {
		return c.MaxSeconds
	}
	return rounded
}
