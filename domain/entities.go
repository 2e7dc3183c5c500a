package domain

import (
	"strings"
	"time"
)

// AllowedCaller represents one entry in the caller allowlist
type AllowedCaller struct {
	Number  string
	Name    string
	Notes   string
	Enabled bool
}

// CallStage identifies which webhook leg produced a call event
type CallStage string

const (
	StageVoiceReceived   CallStage = "VOICE_RECEIVED"
	StageConfirmReceived CallStage = "CONFIRM_RECEIVED"
)

// CallDecision is the outcome recorded for a call event
type CallDecision string

const (
	DecisionAllowed         CallDecision = "ALLOWED"
	DecisionBlocked         CallDecision = "BLOCKED"
	DecisionUnlockSucceeded CallDecision = "UNLOCK_SUCCEEDED"
	DecisionUnlockFailed    CallDecision = "UNLOCK_FAILED"
)

// CallEvent is one immutable entry in the activity log
type CallEvent struct {
	ID         uint
	CreatedAt  time.Time
	CallSid    string
	FromNumber string
	Stage      CallStage
	Decision   CallDecision
	DoorName   string
	Detail     string
}

// Door represents a door known to the access-control backend
type Door struct {
	ID       string
	Name     string
	FullName string
}

// NormalizePhone reduces a phone number to its canonical form: digits only,
// with a leading "+" preserved when present.
func NormalizePhone(value string) string {
	value = strings.TrimSpace(value)
	plus := strings.HasPrefix(value, "+")
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if plus && b.Len() > 0 {
		return "+" + b.String()
	}
	return b.String()
}
