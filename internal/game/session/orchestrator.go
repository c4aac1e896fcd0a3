// Package session is the top-level game state machine. It owns session
// identity, the question index, the cumulative choice history, and the
// elimination flag, and it is the only component that mutates them; the
// countdown, loader, and pipeline report upward through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/frightfate/frightfate/clients/gameapi"
	"github.com/frightfate/frightfate/internal/game/submit"
	"github.com/frightfate/frightfate/internal/game/timelimit"
	"github.com/frightfate/frightfate/internal/game/timer"
	"github.com/frightfate/frightfate/internal/game/validate"
	"github.com/frightfate/frightfate/internal/models"
)

// ErrWrongScreen is returned when an operation is invoked from a screen
// it has no transition out of.
var ErrWrongScreen = errors.New("operation not allowed on current screen")

const minRushedAnswerLength = 10

// API is the slice of the collaborator client the orchestrator itself
// uses; scenario and answer traffic goes through the loader and pipeline.
type API interface {
	CreateSession(ctx context.Context, theme string) (*gameapi.CreateSessionResponse, error)
	JoinSession(ctx context.Context, sessionCode, playerName string) (*gameapi.JoinSessionResponse, error)
	GetSession(ctx context.Context, sessionCode string) (*gameapi.GetSessionResponse, error)
	CheckElimination(ctx context.Context, sessionCode string, playerID int) (*gameapi.CheckEliminationResponse, error)
	GetResults(ctx context.Context, sessionCode string) (*gameapi.ResultsResponse, error)
}

// Loader supplies round scenarios; the bool reports a fallback in effect.
type Loader interface {
	Load(ctx context.Context, sess models.Session, questionNumber int) (*models.Scenario, bool)
}

// Submitter scores answers through the collaborator service.
type Submitter interface {
	Submit(ctx context.Context, req submit.Request) (*submit.Result, error)
	SubmitRushed(ctx context.Context, req submit.Request) *submit.Result
}

// Countdown is the slice of the timer the orchestrator drives.
type Countdown interface {
	Start(limitSeconds, questionNumber int)
	Cancel()
}

// Options tunes an Orchestrator.
type Options struct {
	TotalQuestions int
	Theme          models.Theme
	Limits         timelimit.Config
	TimerConfig    timer.Config
	Clock          timer.Clock // nil means real clock

	// Countdown overrides the internally constructed timer. Mostly
	// useful in tests.
	Countdown Countdown
}

// Orchestrator sequences one player's run through a game session.
type Orchestrator struct {
	api       API
	loader    Loader
	pipeline  Submitter
	countdown Countdown
	sink      Sink
	limits    timelimit.Config
	total     int

	mu             sync.Mutex
	screen         Screen
	session        models.Session
	questionNumber int
	history        []models.ChoiceRecord
	elimination    models.Elimination
	current        *models.Scenario
	currentLimit   int
	draft          string

	// runCtx is the context passed to Start; timer-driven service calls
	// (rushed submissions) use it because expiry events carry no context
	// of their own.
	runCtx context.Context
}

// New creates an Orchestrator on the home screen. Unless overridden, the
// countdown is constructed internally with the orchestrator as its sink.
func New(api API, loader Loader, pipeline Submitter, sink Sink, opts Options) *Orchestrator {
	if opts.TotalQuestions < 1 {
		opts.TotalQuestions = 5
	}
	if opts.Theme == "" {
		opts.Theme = models.ThemeHauntedHouse
	}
	if opts.Limits == (timelimit.Config{}) {
		opts.Limits = timelimit.DefaultConfig()
	}
	if opts.TimerConfig == (timer.Config{}) {
		opts.TimerConfig = timer.DefaultConfig()
	}

	o := &Orchestrator{
		api:      api,
		loader:   loader,
		pipeline: pipeline,
		sink:     sink,
		limits:   opts.Limits,
		total:    opts.TotalQuestions,
		screen:   ScreenHome,
		runCtx:   context.Background(),
	}
	o.session.Theme = opts.Theme
	o.session.TotalQuestions = opts.TotalQuestions

	if opts.Countdown != nil {
		o.countdown = opts.Countdown
	} else {
		o.countdown = timer.New(opts.Clock, opts.TimerConfig, o)
	}
	return o
}

// Screen returns the current screen.
func (o *Orchestrator) Screen() Screen {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screen
}

// Session returns a copy of the session identity.
func (o *Orchestrator) Session() models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// History returns a copy of the choice history so far.
func (o *Orchestrator) History() []models.ChoiceRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.ChoiceRecord, len(o.history))
	copy(out, o.history)
	return out
}

// CurrentScenario returns the scenario being played, or nil.
func (o *Orchestrator) CurrentScenario() *models.Scenario {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// CreateSession asks the service for a fresh session and joins it as the
// host. Home -> Lobby.
func (o *Orchestrator) CreateSession(ctx context.Context, theme models.Theme, playerName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenHome {
		return fmt.Errorf("%w: create session from %s", ErrWrongScreen, o.screen)
	}

	created, err := o.api.CreateSession(ctx, string(theme))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	code := models.NormalizeSessionCode(created.SessionCode)

	joined, err := o.api.JoinSession(ctx, code, playerName)
	if err != nil {
		return fmt.Errorf("join own session %s: %w", code, err)
	}

	o.session = models.Session{
		Code:           code,
		PlayerID:       joined.PlayerID,
		PlayerName:     playerName,
		Theme:          theme,
		TotalQuestions: o.total,
		IsHost:         true,
	}
	o.setScreenLocked(ScreenLobby)
	log.Info().
		Str("session_code", code).
		Int("player_id", joined.PlayerID).
		Str("theme", string(theme)).
		Msg("session created")
	return nil
}

// JoinSession joins an existing session by code. Home -> Lobby.
func (o *Orchestrator) JoinSession(ctx context.Context, sessionCode, playerName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenHome {
		return fmt.Errorf("%w: join session from %s", ErrWrongScreen, o.screen)
	}

	code := models.NormalizeSessionCode(sessionCode)
	joined, err := o.api.JoinSession(ctx, code, playerName)
	if err != nil {
		return fmt.Errorf("join session %s: %w", code, err)
	}

	theme := o.session.Theme
	if details, err := o.api.GetSession(ctx, code); err == nil && details.Theme != "" {
		theme = models.Theme(details.Theme)
	} else if err != nil {
		log.Warn().Err(err).Str("session_code", code).Msg("could not read session theme, keeping default")
	}

	o.session = models.Session{
		Code:           code,
		PlayerID:       joined.PlayerID,
		PlayerName:     playerName,
		Theme:          theme,
		TotalQuestions: o.total,
	}
	o.setScreenLocked(ScreenLobby)
	log.Info().
		Str("session_code", code).
		Int("player_id", joined.PlayerID).
		Msg("joined session")
	return nil
}

// SetTheme changes the session theme; only the host, only in the lobby.
func (o *Orchestrator) SetTheme(theme models.Theme) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenLobby {
		return fmt.Errorf("%w: set theme from %s", ErrWrongScreen, o.screen)
	}
	if !o.session.IsHost {
		return errors.New("only the host can change the theme")
	}
	o.session.Theme = theme
	return nil
}

// Roster fetches the current lobby roster.
func (o *Orchestrator) Roster(ctx context.Context) (*gameapi.GetSessionResponse, error) {
	o.mu.Lock()
	code := o.session.Code
	o.mu.Unlock()
	if code == "" {
		return nil, errors.New("no session joined")
	}
	return o.api.GetSession(ctx, code)
}

// Start begins the game. Lobby -> InProgress(1), unless a prior check has
// already eliminated the player, in which case Lobby -> Eliminated with
// no scenario load.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenLobby {
		return fmt.Errorf("%w: start from %s", ErrWrongScreen, o.screen)
	}
	o.runCtx = ctx

	// Mandatory pre-start check: a player can be eliminated by an earlier
	// verdict without ever seeing a new scenario.
	check, err := o.api.CheckElimination(ctx, o.session.Code, o.session.PlayerID)
	if err != nil {
		log.Warn().Err(err).Msg("elimination pre-check failed, assuming player can continue")
		o.sink.Notice("Could not confirm your fate with the service. Proceeding anyway.")
	} else if check.IsEliminated {
		o.eliminateLocked(check.EliminationReason, nil)
		return nil
	}

	o.questionNumber = 1
	o.setScreenLocked(ScreenInProgress)
	o.loadQuestionLocked(ctx)
	return nil
}

// UpdateDraft stores the player's in-progress answer text. On expiry the
// draft is what gets rush-submitted.
func (o *Orchestrator) UpdateDraft(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft = text
}

// SubmitAnswer validates and submits an answer for the current question.
// A validation failure either bounces for retry or eliminates outright;
// a transport failure restores the countdown with the previously computed
// limit so the player does not silently lose time.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenInProgress {
		return fmt.Errorf("%w: submit from %s", ErrWrongScreen, o.screen)
	}
	o.draft = text

	verdict := validate.Check(text)
	if !verdict.Valid {
		o.sink.AnswerRejected(verdict)
		if verdict.Eliminates() {
			o.countdown.Cancel()
			o.history = append(o.history, models.ChoiceRecord{
				QuestionNumber: o.questionNumber,
				AnswerText:     text,
			})
			o.eliminateLocked(verdict.Message(), nil)
		}
		return nil
	}

	// Cancel before the request goes out so an expiry can never race a
	// pending submission for the same question.
	o.countdown.Cancel()

	result, err := o.pipeline.Submit(ctx, submit.Request{
		Session:        o.session,
		QuestionNumber: o.questionNumber,
		AnswerText:     text,
	})
	if err != nil {
		// Restore the clock with the limit computed for this question,
		// not a recomputed one.
		o.countdown.Start(o.currentLimit, o.questionNumber)
		o.sink.Notice("Submission failed. Your time has been restored; try again.")
		return err
	}

	o.applyVerdictLocked(ctx, result, text, false)
	return nil
}

// PlayAgain leaves a terminal screen and re-enters the lobby with the
// question index, choice history, and elimination state reset.
func (o *Orchestrator) PlayAgain() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.screen.Terminal() {
		return fmt.Errorf("%w: play again from %s", ErrWrongScreen, o.screen)
	}
	o.questionNumber = 0
	o.history = nil
	o.elimination = models.Elimination{}
	o.current = nil
	o.currentLimit = 0
	o.draft = ""
	o.setScreenLocked(ScreenLobby)
	return nil
}

// Shutdown cancels any live countdown. Safe to call at any time.
func (o *Orchestrator) Shutdown() {
	o.countdown.Cancel()
}

// TimerTick implements timer.Sink, forwarding the remaining-seconds
// stream for the current question.
func (o *Orchestrator) TimerTick(questionNumber, remaining int) {
	if o.staleTimerEvent(questionNumber) {
		return
	}
	o.sink.TimeRemaining(questionNumber, remaining)
}

// TimerWarning implements timer.Sink.
func (o *Orchestrator) TimerWarning(questionNumber, remaining int) {
	if o.staleTimerEvent(questionNumber) {
		return
	}
	o.sink.TimeWarning(questionNumber, remaining)
}

// TimerCritical implements timer.Sink.
func (o *Orchestrator) TimerCritical(questionNumber, remaining int) {
	if o.staleTimerEvent(questionNumber) {
		return
	}
	o.sink.TimeCritical(questionNumber, remaining)
}

// TimerExpired implements timer.Sink. Depending on the draft it either
// rush-submits, or forces elimination with no service call.
func (o *Orchestrator) TimerExpired(questionNumber int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenInProgress || questionNumber != o.questionNumber {
		// A completion for a stale question index is discarded.
		log.Debug().
			Int("event_question", questionNumber).
			Int("current_question", o.questionNumber).
			Msg("discarding stale timer expiry")
		return
	}

	draft := strings.TrimSpace(o.draft)
	switch {
	case draft == "":
		log.Info().Int("question_number", questionNumber).Msg("time expired with no answer")
		o.history = append(o.history, models.ChoiceRecord{
			QuestionNumber: o.questionNumber,
			TimedOut:       true,
		})
		o.eliminateLocked("You failed to answer in time.", nil)

	case len(draft) < minRushedAnswerLength:
		log.Info().Int("question_number", questionNumber).Msg("time expired with trivial answer")
		o.history = append(o.history, models.ChoiceRecord{
			QuestionNumber: o.questionNumber,
			AnswerText:     draft,
			TimedOut:       true,
		})
		o.eliminateLocked("Your answer was too brief and rushed to save you.", nil)

	default:
		result := o.pipeline.SubmitRushed(o.runCtx, submit.Request{
			Session:        o.session,
			QuestionNumber: o.questionNumber,
			AnswerText:     draft,
		})
		o.applyVerdictLocked(o.runCtx, result, draft, true)
	}
}

// staleTimerEvent drops display events from a superseded countdown.
func (o *Orchestrator) staleTimerEvent(questionNumber int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screen != ScreenInProgress || questionNumber != o.questionNumber
}

// applyVerdictLocked is the single handler every verdict flows through:
// it appends the choice record, then eliminates, completes, or advances.
func (o *Orchestrator) applyVerdictLocked(ctx context.Context, result *submit.Result, answerText string, timedOut bool) {
	o.history = append(o.history, models.ChoiceRecord{
		QuestionNumber: o.questionNumber,
		AnswerText:     answerText,
		Score:          result.Score,
		Classification: result.Classification,
		WasRushed:      result.Rushed,
		TimedOut:       timedOut && result.Rushed,
	})
	o.sink.AnswerScored(result)

	switch {
	case result.Eliminated:
		o.eliminateLocked(result.EliminationReason, result.Narrative)

	case o.questionNumber >= o.total:
		o.completeLocked(ctx)

	default:
		o.questionNumber++
		o.draft = ""
		o.loadQuestionLocked(ctx)
	}
}

// loadQuestionLocked fetches the scenario for the current question,
// derives its adaptive budget from the history so far, and starts the
// countdown.
func (o *Orchestrator) loadQuestionLocked(ctx context.Context) {
	sc, fellBack := o.loader.Load(ctx, o.session, o.questionNumber)
	if fellBack {
		o.sink.Notice("The service hesitated; this round was conjured locally.")
	}

	limit := o.limits.AdaptiveLimit(sc, o.history, o.questionNumber)
	o.current = sc
	o.currentLimit = limit

	log.Info().
		Int("question_number", o.questionNumber).
		Int("limit_sec", limit).
		Str("risk_level", string(sc.RiskLevel)).
		Msg("question loaded")

	o.sink.ScenarioPresented(sc, limit)
	o.countdown.Start(limit, o.questionNumber)
}

func (o *Orchestrator) eliminateLocked(reason string, narrative *models.DeathNarrative) {
	o.countdown.Cancel()
	if reason == "" {
		reason = "Poor survival choices"
	}
	if narrative == nil {
		narrative = &models.DeathNarrative{
			PlayerName: o.session.PlayerName,
			FateTitle:  "ELIMINATED",
			Narrative:  "Your story ends here, in the dark, like so many before you.",
		}
	}
	o.elimination = models.Elimination{
		Eliminated: true,
		Reason:     reason,
		Narrative:  narrative,
	}
	log.Info().Str("reason", reason).Msg("player eliminated")
	o.setScreenLocked(ScreenEliminated)
	o.sink.Eliminated(o.elimination)
}

func (o *Orchestrator) completeLocked(ctx context.Context) {
	o.countdown.Cancel()
	o.setScreenLocked(ScreenCompleted)

	results := o.fetchResultsLocked(ctx)
	log.Info().
		Int("survivors", results.Survivors).
		Int("total_players", results.TotalPlayers).
		Msg("session completed")
	o.sink.Completed(results)
}

// fetchResultsLocked asks the service for the final board, falling back
// to a single-player placeholder so completion never stalls.
func (o *Orchestrator) fetchResultsLocked(ctx context.Context) models.FinalResults {
	resp, err := o.api.GetResults(ctx, o.session.Code)
	if err != nil {
		log.Warn().Err(err).Msg("results fetch failed, using placeholder")
		o.sink.Notice("The final tally never arrived; recording your survival locally.")
		return o.placeholderResultsLocked()
	}

	results := models.FinalResults{
		Survivors:    resp.Survivors,
		Eliminated:   resp.Eliminated,
		TotalPlayers: resp.TotalPlayers,
	}
	for _, entry := range resp.Results {
		narrative := entry.Narrative
		if narrative == "" {
			narrative = entry.DeathNarrative
		}
		results.Results = append(results.Results, models.PlayerResult{
			PlayerName:       entry.PlayerName,
			Rank:             entry.Rank,
			Survived:         entry.Survived,
			FateTitle:        entry.FateTitle,
			Narrative:        narrative,
			SurvivalAnalysis: entry.SurvivalAnalysis,
		})
	}
	if results.TotalPlayers == 0 {
		results.TotalPlayers = len(results.Results)
	}
	return results
}

func (o *Orchestrator) placeholderResultsLocked() models.FinalResults {
	total := 0
	for _, choice := range o.history {
		total += choice.Score
	}
	return models.FinalResults{
		Results: []models.PlayerResult{{
			PlayerName:       o.session.PlayerName,
			Rank:             1,
			Survived:         true,
			FateTitle:        "SOLE SURVIVOR",
			Narrative:        "You endured every trial the night could offer and walked out alive.",
			SurvivalAnalysis: fmt.Sprintf("Your total score of %d reflects your decision-making under pressure.", total),
		}},
		Survivors:    1,
		TotalPlayers: 1,
	}
}

func (o *Orchestrator) setScreenLocked(screen Screen) {
	o.screen = screen
	o.sink.ScreenChanged(screen)
}
