package session

import (
	"github.com/frightfate/frightfate/internal/game/submit"
	"github.com/frightfate/frightfate/internal/game/validate"
	"github.com/frightfate/frightfate/internal/models"
)

// Sink is everything the orchestrator exposes to its presentation layer:
// screen changes, the current scenario, the remaining-seconds stream, and
// the terminal outcome. Rendering is entirely the implementor's problem.
//
// Calls may arrive on the countdown goroutine and are made while the
// orchestrator holds its own lock; implementations must not call back
// into the Orchestrator from inside a callback.
type Sink interface {
	ScreenChanged(screen Screen)

	// ScenarioPresented announces the round's scenario together with its
	// adaptive time budget.
	ScenarioPresented(sc *models.Scenario, limitSeconds int)

	TimeRemaining(questionNumber, remaining int)
	TimeWarning(questionNumber, remaining int)
	TimeCritical(questionNumber, remaining int)

	// AnswerRejected reports a validation failure. If the verdict also
	// eliminates, Eliminated follows immediately after.
	AnswerRejected(verdict validate.Verdict)

	// AnswerScored reports the service's verdict for a submitted answer,
	// penalties already applied.
	AnswerScored(result *submit.Result)

	// Notice surfaces a non-fatal warning, e.g. a fallback in effect.
	Notice(message string)

	Eliminated(elim models.Elimination)
	Completed(results models.FinalResults)
}
