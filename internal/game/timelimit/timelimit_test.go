package timelimit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frightfate/frightfate/internal/game/timelimit"
	"github.com/frightfate/frightfate/internal/models"
)

// scenarioWithWords builds a scenario whose description has exactly n words.
func scenarioWithWords(n int, risk models.RiskLevel) *models.Scenario {
	words := make([]string, n)
	for i := range words {
		words[i] = "danger"
	}
	return &models.Scenario{
		QuestionNumber: 1,
		Title:          "The Locked Door",
		Description:    strings.Join(words, " "),
		RiskLevel:      risk,
	}
}

func TestBaseLimit_Clamping(t *testing.T) {
	cfg := timelimit.DefaultConfig()

	tests := map[string]struct {
		scenario *models.Scenario
	}{
		"tiny description clamps to minimum":     {scenarioWithWords(3, models.RiskMedium)},
		"huge description clamps to maximum":     {scenarioWithWords(5000, models.RiskMedium)},
		"extreme risk on long text stays inside": {scenarioWithWords(400, models.RiskExtreme)},
		"empty description clamps to minimum":    {&models.Scenario{RiskLevel: models.RiskLow}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			limit := cfg.BaseLimit(tt.scenario)
			assert.GreaterOrEqual(t, limit, cfg.MinSeconds)
			assert.LessOrEqual(t, limit, cfg.MaxSeconds)
		})
	}
}

func TestBaseLimit_RiskMultipliers(t *testing.T) {
	cfg := timelimit.DefaultConfig()

	// 100 words at 0.4 words/sec is a 250s base before the risk multiplier.
	tests := map[string]struct {
		risk models.RiskLevel
		want int
	}{
		"low risk shortens":             {models.RiskLow, 200},
		"medium risk is neutral":        {models.RiskMedium, 250},
		"high risk extends":             {models.RiskHigh, 300},
		"extreme risk extends most":     {models.RiskExtreme, 375},
		"unknown risk falls to neutral": {models.RiskLevel("cosmic"), 250},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.BaseLimit(scenarioWithWords(100, tt.risk)))
		})
	}
}

func TestAdaptiveLimit_EmptyHistoryReturnsBase(t *testing.T) {
	cfg := timelimit.DefaultConfig()
	sc := scenarioWithWords(100, models.RiskMedium)

	assert.Equal(t, cfg.BaseLimit(sc), cfg.AdaptiveLimit(sc, nil, 1))
}

func TestAdaptiveLimit_IsDeterministic(t *testing.T) {
	cfg := timelimit.DefaultConfig()
	sc := scenarioWithWords(150, models.RiskHigh)
	history := []models.ChoiceRecord{
		{QuestionNumber: 1, Score: 62},
		{QuestionNumber: 2, Score: 48, WasRushed: true},
		{QuestionNumber: 3, Score: 71, TimedOut: true},
	}

	first := cfg.AdaptiveLimit(sc, history, 4)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, cfg.AdaptiveLimit(sc, history, 4))
	}
}

func TestAdaptiveLimit_Modifiers(t *testing.T) {
	cfg := timelimit.DefaultConfig()
	sc := scenarioWithWords(100, models.RiskMedium) // 250s base
	base := cfg.BaseLimit(sc)

	tests := map[string]struct {
		history        []models.ChoiceRecord
		questionNumber int
		want           int
	}{
		"high average trims time": {
			history:        []models.ChoiceRecord{{Score: 80}, {Score: 80}},
			questionNumber: 3,
			want:           225, // 250 * 0.90
		},
		"low average adds time": {
			history:        []models.ChoiceRecord{{Score: 30}, {Score: 30}},
			questionNumber: 3,
			want:           288, // 250 * 1.15
		},
		"rushed history adds time": {
			history:        []models.ChoiceRecord{{Score: 60, WasRushed: true}},
			questionNumber: 2,
			want:           300, // 250 * 1.20
		},
		"timeout history adds more time": {
			history:        []models.ChoiceRecord{{Score: 60, TimedOut: true}},
			questionNumber: 2,
			want:           325, // 250 * 1.30
		},
		"late game compassion for strugglers": {
			history:        []models.ChoiceRecord{{Score: 45}, {Score: 45}},
			questionNumber: 4,
			want:           313, // 250 * 1.25
		},
		"modifiers sum additively, not multiplicatively": {
			history: []models.ChoiceRecord{
				{Score: 30, WasRushed: true},
				{Score: 30, TimedOut: true},
			},
			questionNumber: 4,
			want:           475, // 250 * (1 + 0.15 + 0.20 + 0.30 + 0.25)
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := cfg.AdaptiveLimit(sc, tt.history, tt.questionNumber)
			assert.Equal(t, tt.want, got)

			avg := models.AverageScore(tt.history)
			if avg >= 75 {
				assert.LessOrEqual(t, got, base)
			}
			if avg <= 35 {
				assert.GreaterOrEqual(t, got, base)
			}
		})
	}
}

func TestAdaptiveLimit_ResultStaysClamped(t *testing.T) {
	cfg := timelimit.DefaultConfig()
	// Extreme risk on a long description pushes the base toward the cap;
	// every penalty modifier at once must still respect it.
	sc := scenarioWithWords(450, models.RiskExtreme)
	history := []models.ChoiceRecord{
		{Score: 10, WasRushed: true, TimedOut: true},
		{Score: 20},
	}

	got := cfg.AdaptiveLimit(sc, history, 5)
	assert.Equal(t, cfg.MaxSeconds, got)
}
