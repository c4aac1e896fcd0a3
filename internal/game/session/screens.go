package session

// Screen names the orchestrator's state machine positions. Eliminated and
// Completed are absorbing: the only way out is PlayAgain.
type Screen string

const (
	ScreenHome       Screen = "home"
	ScreenLobby      Screen = "lobby"
	ScreenInProgress Screen = "in_progress"
	ScreenEliminated Screen = "eliminated"
	ScreenCompleted  Screen = "completed"
)

// Terminal reports whether the screen is an absorbing end state.
func (s Screen) Terminal() bool {
	return s == ScreenEliminated || s == ScreenCompleted
}
