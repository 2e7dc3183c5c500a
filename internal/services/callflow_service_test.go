package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teich/phone-gate-bridge/domain"
	"github.com/teich/phone-gate-bridge/internal/mocks"
)

func newTestService(allowlist *mocks.MockAllowlistSource, doors *mocks.MockDoorUnlockClient, events *mocks.MockActivityLog) domain.CallFlowService {
	return NewCallFlowService(allowlist, doors, events, CallFlowConfig{
		DoorName:  "Gate",
		ActorID:   "phone-gate-bridge",
		ActorName: "Phone Gate Bridge",
		TTSVoice:  "Polly.Joanna-Neural",
	})
}

func allowCaller(name string, numbers ...string) func(ctx context.Context, phone string) (*domain.AllowedCaller, error) {
	return func(ctx context.Context, phone string) (*domain.AllowedCaller, error) {
		normalized := domain.NormalizePhone(phone)
		for _, n := range numbers {
			if normalized == n {
				return &domain.AllowedCaller{Number: n, Name: name, Enabled: true}, nil
			}
		}
		return nil, nil
	}
}

func TestHandleVoiceAllowedCaller(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleVoice(context.Background(), "+17075551111", "CA123")

	assert.Contains(t, doc, MsgPressOne)
	assert.Contains(t, doc, `numDigits="1"`)
	assert.Contains(t, doc, `action="/twilio/voice/confirm"`)
	assert.Contains(t, doc, MsgNoInput)

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.StageVoiceReceived, recorded[0].Stage)
	assert.Equal(t, domain.DecisionAllowed, recorded[0].Decision)
	assert.Equal(t, "CA123", recorded[0].CallSid)
	assert.Empty(t, doors.UnlockCalls)
}

func TestHandleVoiceBlockedCaller(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleVoice(context.Background(), "+19999999999", "CA124")

	assert.Contains(t, doc, MsgNotAuthorized)
	assert.Contains(t, doc, "<Hangup")

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.DecisionBlocked, recorded[0].Decision)
	assert.Empty(t, doors.UnlockCalls)
}

func TestHandleVoiceAllowlistUnreadableFailsClosed(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = func(ctx context.Context, phone string) (*domain.AllowedCaller, error) {
		return nil, domain.ErrAllowlistUnreadable
	}
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleVoice(context.Background(), "+17075551111", "CA125")

	assert.Contains(t, doc, MsgUnavailable)
	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.DecisionBlocked, recorded[0].Decision)
	assert.Contains(t, recorded[0].Detail, "allowlist unreadable")
	assert.Empty(t, doors.UnlockCalls)
}

func TestHandleConfirmDigitOneUnlocks(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleConfirm(context.Background(), "+17075551111", "CA123", "1")

	assert.Contains(t, doc, MsgGateOpen)
	require.Len(t, doors.UnlockCalls, 1)
	call := doors.UnlockCalls[0]
	assert.Equal(t, "door-1", call.DoorID)
	assert.Equal(t, "phone-gate-bridge", call.ActorID)
	assert.Equal(t, "Phone Gate Bridge", call.ActorName)
	assert.Equal(t, "twilio-voice", call.Extra["source"])
	assert.Equal(t, "CA123", call.Extra["call_sid"])
	assert.Equal(t, "Alice", call.Extra["caller_name"])

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.StageConfirmReceived, recorded[0].Stage)
	assert.Equal(t, domain.DecisionUnlockSucceeded, recorded[0].Decision)
}

func TestHandleConfirmWrongDigitNoUnlock(t *testing.T) {
	tests := []struct {
		name   string
		digits string
	}{
		{"wrong digit", "2"},
		{"empty digits", ""},
		{"multiple digits", "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowlist := mocks.NewMockAllowlistSource()
			allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
			doors := mocks.NewMockDoorUnlockClient()
			events := mocks.NewMockActivityLog()
			svc := newTestService(allowlist, doors, events)

			doc := svc.HandleConfirm(context.Background(), "+17075551111", "CA123", tt.digits)

			assert.Contains(t, doc, MsgInvalidDigit)
			assert.Empty(t, doors.UnlockCalls)

			recorded := events.Events()
			require.Len(t, recorded, 1)
			assert.Equal(t, domain.DecisionBlocked, recorded[0].Decision)
		})
	}
}

func TestHandleConfirmReauthorizesIndependently(t *testing.T) {
	// The caller was allowed on leg 1 but removed from the allowlist before
	// leg 2; leg 2 must deny.
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleVoice(context.Background(), "+17075551111", "CA123")
	assert.Contains(t, doc, MsgPressOne)

	allowlist.ResolveFunc = allowCaller("Alice") // removed

	doc = svc.HandleConfirm(context.Background(), "+17075551111", "CA123", "1")
	assert.Contains(t, doc, MsgNotAuthorized)
	assert.Empty(t, doors.UnlockCalls)
	assert.Len(t, allowlist.ResolveCalls, 2)

	recorded := events.Events()
	require.Len(t, recorded, 2)
	assert.Equal(t, domain.DecisionAllowed, recorded[0].Decision)
	assert.Equal(t, domain.DecisionBlocked, recorded[1].Decision)
}

func TestHandleConfirmDoorNotFound(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	doors.FindDoorIDFunc = func(ctx context.Context, doorName string) (string, error) {
		return "", domain.ErrDoorNotFound
	}
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleConfirm(context.Background(), "+17075551111", "CA123", "1")

	assert.Contains(t, doc, MsgUnlockFailed)
	assert.Empty(t, doors.UnlockCalls)

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.DecisionUnlockFailed, recorded[0].Decision)
}

func TestHandleConfirmUnlockFailureSpeaksApology(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	doors.UnlockFunc = func(ctx context.Context, doorID, actorID, actorName string, extra map[string]string) error {
		return errors.New("access api timeout")
	}
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleConfirm(context.Background(), "+17075551111", "CA123", "1")

	assert.Contains(t, doc, MsgUnlockFailed)
	require.Len(t, doors.UnlockCalls, 1)

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.DecisionUnlockFailed, recorded[0].Decision)
	assert.Contains(t, recorded[0].Detail, "access api timeout")
}

func TestPersistenceFailureNeverChangesOutcome(t *testing.T) {
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	events.RecordFunc = func(ctx context.Context, event *domain.CallEvent) error {
		return errors.New("disk full")
	}
	svc := newTestService(allowlist, doors, events)

	doc := svc.HandleConfirm(context.Background(), "+17075551111", "CA123", "1")
	assert.Contains(t, doc, MsgGateOpen)
	require.Len(t, doors.UnlockCalls, 1)
}

func TestFullCallScenario(t *testing.T) {
	// Allowed caller presses 1: ALLOWED then UNLOCK_SUCCEEDED for the same
	// call sid, unlock invoked for door "Gate".
	allowlist := mocks.NewMockAllowlistSource()
	allowlist.ResolveFunc = allowCaller("Alice", "+17075551111")
	doors := mocks.NewMockDoorUnlockClient()
	events := mocks.NewMockActivityLog()
	svc := newTestService(allowlist, doors, events)

	ctx := context.Background()
	svc.HandleVoice(ctx, "+17075551111", "CA777")
	doc := svc.HandleConfirm(ctx, "+17075551111", "CA777", "1")

	assert.Contains(t, doc, MsgGateOpen)
	require.Len(t, doors.UnlockCalls, 1)

	recorded := events.Events()
	require.Len(t, recorded, 2)
	assert.Equal(t, domain.DecisionAllowed, recorded[0].Decision)
	assert.Equal(t, domain.DecisionUnlockSucceeded, recorded[1].Decision)
	assert.Equal(t, "CA777", recorded[0].CallSid)
	assert.Equal(t, "CA777", recorded[1].CallSid)
	assert.Equal(t, "Gate", recorded[1].DoorName)
}
