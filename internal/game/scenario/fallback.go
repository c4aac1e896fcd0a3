package scenario

import (
	"fmt"

	"github.com/frightfate/frightfate/internal/models"
)

// Per-theme fallback framing so the synthesized round still reads like the
// chosen setting.
var fallbackSettings = map[models.Theme]string{
	models.ThemeHauntedHouse:   "The mansion's corridors shift around you and every door you trusted is gone.",
	models.ThemeZombieOutbreak: "The barricade splinters as the horde outside finds its way through.",
	models.ThemeSlasherMovie:   "The phone line is dead and heavy footsteps circle the cabin.",
	models.ThemeAlienInvasion:  "The ship's shadow swallows the street and the air begins to hum.",
	models.ThemeDeepSeaTerror:  "The station lights fail one by one as something scrapes along the hull.",
}

// Fallback synthesizes a deterministic scenario for the given round. Later
// rounds are tagged high risk so the adaptive budget stays honest even
// without the service.
func Fallback(theme models.Theme, questionNumber int) *models.Scenario {
	risk := models.RiskMedium
	if questionNumber > 3 {
		risk = models.RiskHigh
	}

	setting, ok := fallbackSettings[theme]
	if !ok {
		setting = "The darkness thickens and something unseen moves closer."
	}

	return &models.Scenario{
		QuestionNumber: questionNumber,
		Title:          fmt.Sprintf("%s: Trial %d", theme.DisplayName(), questionNumber),
		Description: fmt.Sprintf(
			"%s You face escalating danger, and hesitation is its own kind of death. "+
				"There is no one coming to tell you the right move. What do you do?",
			setting,
		),
		RiskLevel:       risk,
		SurvivalFactors: []string{"logical_thinking", "caution"},
	}
}
