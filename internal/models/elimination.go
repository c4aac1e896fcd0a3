package models

// DeathNarrative is the dramatized account of a player's end, as returned
// by the service or synthesized locally when the service fails.
type DeathNarrative struct {
	PlayerName string `json:"player_name"`
	FateTitle  string `json:"fate_title"`
	Narrative  string `json:"death_narrative"`
}

// Elimination is terminal for the session once Eliminated is set: no
// further scenario loads or submissions are permitted.
type Elimination struct {
	Eliminated bool            `json:"is_eliminated"`
	Reason     string          `json:"elimination_reason,omitempty"`
	Narrative  *DeathNarrative `json:"death_narrative,omitempty"`
}

// Outcome classifies a processed verdict for the state machine.
type Outcome string

const (
	OutcomeContinue   Outcome = "continue"
	OutcomeEliminated Outcome = "eliminated"
	OutcomeCompleted  Outcome = "completed"
)

// PlayerResult is one entry of the final results board.
type PlayerResult struct {
	PlayerName       string `json:"player_name"`
	Rank             int    `json:"rank"`
	Survived         bool   `json:"survived"`
	FateTitle        string `json:"fate_title"`
	Narrative        string `json:"narrative"`
	SurvivalAnalysis string `json:"survival_analysis,omitempty"`
}

// FinalResults is the end-of-game summary for the whole session.
type FinalResults struct {
	Results      []PlayerResult `json:"results"`
	Survivors    int            `json:"survivors"`
	Eliminated   int            `json:"eliminated"`
	TotalPlayers int            `json:"total_players"`
}
