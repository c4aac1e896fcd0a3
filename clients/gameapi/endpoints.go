package gameapi

const (
	// Default service address for local development.
	DefaultBaseURL = "http://localhost:8000"

	// Paths under the game API prefix.
	createSessionPath    = "/api/game/create-session"
	joinSessionPath      = "/api/game/join-session/%s"
	getSessionPath       = "/api/game/session/%s"
	checkEliminationPath = "/api/game/check-elimination/%s/%d"
	getScenarioPath      = "/api/game/scenario/%s/%d"
	submitAnswerPath     = "/api/game/submit-answer"
	getResultsPath       = "/api/game/results/%s"

	jsonContentType = "application/json"
)
