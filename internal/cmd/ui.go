package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/frightfate/frightfate/internal/game/session"
	"github.com/frightfate/frightfate/internal/game/submit"
	"github.com/frightfate/frightfate/internal/game/validate"
	"github.com/frightfate/frightfate/internal/lobby"
	"github.com/frightfate/frightfate/internal/models"
)

// terminalUI renders game and lobby events to the terminal. Callbacks
// arrive on orchestrator, countdown, and socket goroutines, so every
// write goes through one mutex to keep lines whole.
type terminalUI struct {
	mu  sync.Mutex
	out io.Writer

	startOnce sync.Once
	startCh   chan struct{}
}

func newTerminalUI(out io.Writer) *terminalUI {
	return &terminalUI{out: out, startCh: make(chan struct{})}
}

func (u *terminalUI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *terminalUI) banner() {
	u.printf(`
  ███████ ██████  ██  ██████  ██   ██ ████████ ███████  █████  ████████ ███████
  ██      ██   ██ ██ ██       ██   ██    ██    ██      ██   ██    ██    ██
  █████   ██████  ██ ██   ███ ███████    ██    █████   ███████    ██    █████
  ██      ██   ██ ██ ██    ██ ██   ██    ██    ██      ██   ██    ██    ██
  ██      ██   ██ ██  ██████  ██   ██    ██    ██      ██   ██    ██    ███████

          Survive every round. Most of you won't.
`)
}

// waitStart blocks a guest until the host's broadcast (or a forced start).
func (u *terminalUI) waitStart() { <-u.startCh }

func (u *terminalUI) forceStart() {
	u.startOnce.Do(func() { close(u.startCh) })
}

func (u *terminalUI) ScreenChanged(screen session.Screen) {
	switch screen {
	case session.ScreenLobby:
		u.printf("\n*** You are in the lobby. ***\n")
	case session.ScreenInProgress:
		u.printf("\n*** The game begins. ***\n")
	}
}

func (u *terminalUI) ScenarioPresented(sc *models.Scenario, limitSeconds int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, "\n%s\n", strings.Repeat("═", 70))
	fmt.Fprintf(u.out, "QUESTION %d: %s\n", sc.QuestionNumber, sc.Title)
	if sc.StoryContext != "" {
		fmt.Fprintf(u.out, "\n%s\n", sc.StoryContext)
	}
	fmt.Fprintf(u.out, "\n%s\n", sc.Description)
	fmt.Fprintf(u.out, "\nDanger: %s   Time: %ds\n", strings.ToUpper(string(sc.RiskLevel)), limitSeconds)
	fmt.Fprintf(u.out, "%s\n", strings.Repeat("═", 70))
}

func (u *terminalUI) TimeRemaining(questionNumber, remaining int) {
	// Only round numbers, to keep the transcript readable.
	if remaining > 0 && remaining%60 == 0 {
		u.printf("[%d:%02d left]\n", remaining/60, remaining%60)
	}
}

func (u *terminalUI) TimeWarning(questionNumber, remaining int) {
	u.printf("\n!! Only %d seconds left. Decide. !!\n", remaining)
}

func (u *terminalUI) TimeCritical(questionNumber, remaining int) {
	u.printf("\n!!! %d SECONDS. IT IS ALMOST HERE. !!!\n", remaining)
}

func (u *terminalUI) AnswerRejected(verdict validate.Verdict) {
	u.printf("\n%s\n", verdict.Message())
}

func (u *terminalUI) AnswerScored(result *submit.Result) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, "\nScore: %d", result.Score)
	if result.Classification != "" {
		fmt.Fprintf(u.out, "  (%s)", result.Classification)
	}
	fmt.Fprintln(u.out)
	if result.Analysis != "" {
		fmt.Fprintf(u.out, "%s\n", result.Analysis)
	}
	if result.StoryContext != "" {
		fmt.Fprintf(u.out, "\n%s\n", result.StoryContext)
	}
}

func (u *terminalUI) Notice(message string) {
	u.printf("\n* %s\n", message)
}

func (u *terminalUI) Eliminated(elim models.Elimination) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, "\n%s\n", strings.Repeat("▓", 70))
	fmt.Fprintf(u.out, "YOU HAVE BEEN ELIMINATED\n")
	fmt.Fprintf(u.out, "%s\n", elim.Reason)
	if elim.Narrative != nil {
		fmt.Fprintf(u.out, "\n%s - %s\n", elim.Narrative.FateTitle, elim.Narrative.Narrative)
	}
	fmt.Fprintf(u.out, "%s\n", strings.Repeat("▓", 70))
}

func (u *terminalUI) Completed(results models.FinalResults) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, "\n%s\n", strings.Repeat("═", 70))
	fmt.Fprintf(u.out, "DAWN BREAKS. %d of %d survived.\n\n", results.Survivors, results.TotalPlayers)
	for _, r := range results.Results {
		marker := "✝"
		if r.Survived {
			marker = "★"
		}
		fmt.Fprintf(u.out, " %s #%d %s - %s\n", marker, r.Rank, r.PlayerName, r.FateTitle)
		if r.Narrative != "" {
			fmt.Fprintf(u.out, "      %s\n", r.Narrative)
		}
	}
	fmt.Fprintf(u.out, "%s\n", strings.Repeat("═", 70))
}

func (u *terminalUI) LobbyEvent(ev lobby.Event) {
	switch ev.Type {
	case lobby.EventPlayerJoined:
		u.printf("\n* %s has entered the lobby.\n", ev.PlayerName)
	case lobby.EventPlayerLeft:
		u.printf("\n* %s fled before it even began.\n", ev.PlayerName)
	case lobby.EventGameStarted:
		u.printf("\n* The host has started the game.\n")
		u.forceStart()
	}
}

func (u *terminalUI) LobbyClosed(err error) {
	if err != nil {
		u.printf("\n* The lobby feed went dark: %v\n", err)
	}
}
