// Package validate gates answer text before submission. Checks are ordered
// and short-circuit: the first failing rule decides the verdict.
package validate

import "strings"

// Reason codes for rejected or flagged answers.
const (
	ReasonEmpty     = "no_answer"
	ReasonTooShort  = "too_short"
	ReasonLowEffort = "low_effort"
	ReasonSpam      = "spam"

	WarnVeryBrief = "very_brief"
)

const (
	minAnswerLength  = 10
	lowEffortMaxLen  = 15
	briefWarnMaxLen  = 20
	spamRunThreshold = 5
)

// Verdict is the transient result of checking one answer. It is consumed
// immediately and never persisted.
type Verdict struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Eliminates reports whether the rejection ends the game outright instead
// of letting the player retry. An empty, low-effort, or spam answer is
// game over; a too-short answer just bounces back for another attempt.
func (v Verdict) Eliminates() bool {
	for _, code := range v.Errors {
		switch code {
		case ReasonEmpty, ReasonLowEffort, ReasonSpam:
			return true
		}
	}
	return false
}

// Message renders the primary rejection or warning as player-facing text.
func (v Verdict) Message() string {
	if len(v.Errors) > 0 {
		switch v.Errors[0] {
		case ReasonEmpty:
			return "No answer provided."
		case ReasonTooShort:
			return "Your answer is too short. Describe what you actually do."
		case ReasonLowEffort:
			return "That's not a survival plan. The horror claims the lazy."
		case ReasonSpam:
			return "Keyboard mashing won't save you."
		}
	}
	if len(v.Warnings) > 0 && v.Warnings[0] == WarnVeryBrief {
		return "Very brief. Consider adding more detail."
	}
	return ""
}

// Stock one-word reactions and generic dismissals that count as low effort
// even when padded with whitespace.
var lowEffortExact = map[string]bool{
	"run": true, "hide": true, "panic": true, "scream": true, "fight": true,
	"die": true, "nothing": true, "idk": true, "dunno": true, "whatever": true,
	"yes": true, "no": true, "maybe": true, "ok": true, "okay": true,
	"i don't know": true, "dont know": true, "don't know": true,
}

// Check applies the ordered rule set to the submitted text.
func Check(text string) Verdict {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return Verdict{Errors: []string{ReasonEmpty}}
	}
	if len(trimmed) < minAnswerLength {
		return Verdict{Errors: []string{ReasonTooShort}}
	}
	if isLowEffort(trimmed) {
		return Verdict{Errors: []string{ReasonLowEffort}}
	}
	if hasSpamRun(trimmed) {
		return Verdict{Errors: []string{ReasonSpam}}
	}

	verdict := Verdict{Valid: true}
	if len(trimmed) < briefWarnMaxLen {
		verdict.Warnings = append(verdict.Warnings, WarnVeryBrief)
	}
	return verdict
}

func isLowEffort(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	if lowEffortExact[strings.Trim(lower, ".!?")] {
		return true
	}
	// Anything this short can't describe a real plan.
	return len(trimmed) <= lowEffortMaxLen
}

// hasSpamRun reports a run of the same character repeated spamRunThreshold
// or more times.
func hasSpamRun(s string) bool {
	run := 0
	var prev rune
	for _, r := range s {
		if r == prev {
			run++
			if run >= spamRunThreshold {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
