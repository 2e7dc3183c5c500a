package domain

import "context"

// SignatureVerifier validates that a webhook request originated from the
// telephony provider. url must be the externally visible callback URL.
type SignatureVerifier interface {
	Verify(url string, params map[string]string, signature string) bool
}

// AllowlistSource resolves caller authorization. The backing store is read
// fresh on every call; a nil caller with a nil error means "not allowed".
// An error means the source was unreadable and callers must be denied.
type AllowlistSource interface {
	Resolve(ctx context.Context, phone string) (*AllowedCaller, error)
}

// DoorUnlockClient issues commands against the access-control backend.
type DoorUnlockClient interface {
	ListDoors(ctx context.Context) ([]Door, error)
	FindDoorID(ctx context.Context, doorName string) (string, error)
	Unlock(ctx context.Context, doorID, actorID, actorName string, extra map[string]string) error
}

// ActivityLog is the durable, append-only record of call events.
type ActivityLog interface {
	Record(ctx context.Context, event *CallEvent) error
	Recent(ctx context.Context, limit int) ([]CallEvent, error)
}

// CallFlowService orchestrates the two webhook legs of a call. Both methods
// always return a well-formed TwiML document.
type CallFlowService interface {
	HandleVoice(ctx context.Context, from, callSid string) string
	HandleConfirm(ctx context.Context, from, callSid, digits string) string
}
