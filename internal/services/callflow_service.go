package services

import (
	"context"
	"log"
	"strconv"

	"github.com/twilio/twilio-go/twiml"

	"github.com/teich/phone-gate-bridge/domain"
)

// Spoken prompts. Every telephony-facing path ends in one of these; a live
// call is never left without a spoken outcome.
const (
	MsgPressOne      = "Press 1 now to open the gate."
	MsgNoInput       = "No input received. Goodbye."
	MsgNotAuthorized = "This incoming number is not authorized for this gate."
	MsgUnavailable   = "Unable to verify access right now. Please try again."
	MsgInvalidDigit  = "Invalid selection. Goodbye."
	MsgGateOpen      = "The gate is now open."
	MsgUnlockFailed  = "Unable to open the gate right now. Please try again."
)

// fallbackTwiML is served if TwiML rendering itself fails. Static so it is
// well-formed by construction.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>Unable to open the gate right now. Please try again.</Say><Hangup/></Response>`

// CallFlowConfig carries the fixed parameters of the call flow
type CallFlowConfig struct {
	DoorName    string
	ActorID     string
	ActorName   string
	TTSVoice    string
	ConfirmPath string
}

// CallFlowServiceImpl implements domain.CallFlowService. It holds no per-call
// state: authorization is re-resolved from each leg's own parameters, so
// nothing persists between the two webhook legs of a call.
type CallFlowServiceImpl struct {
	allowlist domain.AllowlistSource
	doors     domain.DoorUnlockClient
	events    domain.ActivityLog
	config    CallFlowConfig
}

// NewCallFlowService creates the webhook call-flow service
func NewCallFlowService(allowlist domain.AllowlistSource, doors domain.DoorUnlockClient, events domain.ActivityLog, config CallFlowConfig) domain.CallFlowService {
	if config.ConfirmPath == "" {
		config.ConfirmPath = "/twilio/voice/confirm"
	}
	return &CallFlowServiceImpl{
		allowlist: allowlist,
		doors:     doors,
		events:    events,
		config:    config,
	}
}

// HandleVoice implements domain.CallFlowService for the first webhook leg
func (s *CallFlowServiceImpl) HandleVoice(ctx context.Context, from, callSid string) string {
	caller, err := s.allowlist.Resolve(ctx, from)
	if err != nil {
		log.Printf("allowlist resolve failed for call %s: %v", callSid, err)
		s.record(ctx, domain.StageVoiceReceived, domain.DecisionBlocked, from, callSid, "allowlist unreadable: "+err.Error())
		return s.say(MsgUnavailable)
	}
	if caller == nil {
		s.record(ctx, domain.StageVoiceReceived, domain.DecisionBlocked, from, callSid, "caller not in allowlist")
		return s.say(MsgNotAuthorized)
	}

	s.record(ctx, domain.StageVoiceReceived, domain.DecisionAllowed, from, callSid, "caller: "+caller.Name)
	return s.gather(MsgPressOne)
}

// HandleConfirm implements domain.CallFlowService for the confirmation leg.
// The caller is re-resolved here regardless of what leg 1 decided: nothing
// guarantees this request continues a previously-allowed call.
func (s *CallFlowServiceImpl) HandleConfirm(ctx context.Context, from, callSid, digits string) string {
	caller, err := s.allowlist.Resolve(ctx, from)
	if err != nil {
		log.Printf("allowlist resolve failed for call %s: %v", callSid, err)
		s.record(ctx, domain.StageConfirmReceived, domain.DecisionBlocked, from, callSid, "allowlist unreadable: "+err.Error())
		return s.say(MsgUnavailable)
	}
	if caller == nil {
		s.record(ctx, domain.StageConfirmReceived, domain.DecisionBlocked, from, callSid, "caller not in allowlist")
		return s.say(MsgNotAuthorized)
	}

	if digits != "1" {
		s.record(ctx, domain.StageConfirmReceived, domain.DecisionBlocked, from, callSid, "invalid digit "+strconv.Quote(digits))
		return s.say(MsgInvalidDigit)
	}

	doorID, err := s.doors.FindDoorID(ctx, s.config.DoorName)
	if err != nil {
		log.Printf("door resolution failed for call %s: %v", callSid, err)
		s.record(ctx, domain.StageConfirmReceived, domain.DecisionUnlockFailed, from, callSid, err.Error())
		return s.say(MsgUnlockFailed)
	}

	err = s.doors.Unlock(ctx, doorID, s.config.ActorID, s.config.ActorName, map[string]string{
		"source":      "twilio-voice",
		"from":        from,
		"call_sid":    callSid,
		"digit":       digits,
		"caller_name": caller.Name,
	})
	if err != nil {
		log.Printf("unlock failed for call %s: %v", callSid, err)
		s.record(ctx, domain.StageConfirmReceived, domain.DecisionUnlockFailed, from, callSid, err.Error())
		return s.say(MsgUnlockFailed)
	}

	s.record(ctx, domain.StageConfirmReceived, domain.DecisionUnlockSucceeded, from, callSid, "caller: "+caller.Name)
	return s.say(MsgGateOpen)
}

// record appends an audit event. A persistence failure is an operational
// problem only; it never changes the outcome spoken to the caller.
func (s *CallFlowServiceImpl) record(ctx context.Context, stage domain.CallStage, decision domain.CallDecision, from, callSid, detail string) {
	event := &domain.CallEvent{
		CallSid:    callSid,
		FromNumber: domain.NormalizePhone(from),
		Stage:      stage,
		Decision:   decision,
		DoorName:   s.config.DoorName,
		Detail:     detail,
	}
	if err := s.events.Record(ctx, event); err != nil {
		log.Printf("failed to record call event for %s: %v", callSid, err)
	}
}

func (s *CallFlowServiceImpl) say(message string) string {
	doc, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message, Voice: s.config.TTSVoice},
		&twiml.VoiceHangup{},
	})
	if err != nil {
		log.Printf("twiml render failed: %v", err)
		return fallbackTwiML
	}
	return doc
}

func (s *CallFlowServiceImpl) gather(prompt string) string {
	doc, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceGather{
			Input:     "dtmf",
			NumDigits: "1",
			Action:    s.config.ConfirmPath,
			Method:    "POST",
			Timeout:   "5",
			InnerElements: []twiml.Element{
				&twiml.VoiceSay{Message: prompt, Voice: s.config.TTSVoice},
			},
		},
		&twiml.VoiceSay{Message: MsgNoInput, Voice: s.config.TTSVoice},
		&twiml.VoiceHangup{},
	})
	if err != nil {
		log.Printf("twiml render failed: %v", err)
		return fallbackTwiML
	}
	return doc
}
