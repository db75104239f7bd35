// Package fsm defines the interview session state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle                  State = "idle"
	StateRequestingPermissions State = "requesting_permissions"
	StatePermissionsDenied     State = "permissions_denied"
	StateInitializingSession   State = "initializing_session"
	StateConnecting            State = "connecting"
	StateSessionReady          State = "session_ready_waiting_ai"
	StateAITurn                State = "ai_turn"
	StateReadyToListen         State = "ready_to_listen"
	StateUserTurn              State = "user_turn"
	StateUserTurnProcessing    State = "user_turn_processing"
	StateEndedByAI             State = "ended_by_ai"
	StateEndedByUser           State = "ended_by_user"
	StateFetchingSummary       State = "fetching_summary"
	StateSummaryDisplayed      State = "summary_displayed"
	StateSessionError          State = "session_error"
	StateError                 State = "error"
)

const (
	EventStart              Event = "start"
	EventPermissionsGranted Event = "permissions_granted"
	EventPermissionsDenied  Event = "permissions_denied"
	EventDial               Event = "dial"
	EventChannelOpened      Event = "channel_opened"
	EventChannelFailed      Event = "channel_failed"
	EventAIText             Event = "ai_text"
	EventTurnHandoff        Event = "turn_handoff"
	EventPartialFinal       Event = "partial_final"
	EventRecordStart        Event = "record_start"
	EventRecordStop         Event = "record_stop"
	EventEndInterview       Event = "end_interview"
	EventServerEnded        Event = "server_ended"
	EventFetchSummary       Event = "fetch_summary"
	EventSummaryReady       Event = "summary_ready"
	EventFail               Event = "fault"
	EventRetry              Event = "retry"
	EventReset              Event = "reset"
)

var allStates = []State{
	StateIdle,
	StateRequestingPermissions,
	StatePermissionsDenied,
	StateInitializingSession,
	StateConnecting,
	StateSessionReady,
	StateAITurn,
	StateReadyToListen,
	StateUserTurn,
	StateUserTurnProcessing,
	StateEndedByAI,
	StateEndedByUser,
	StateFetchingSummary,
	StateSummaryDisplayed,
	StateSessionError,
	StateError,
}

var allEvents = map[Event]struct{}{
	EventStart: {}, EventPermissionsGranted: {}, EventPermissionsDenied: {}, EventDial: {},
	EventChannelOpened: {}, EventChannelFailed: {}, EventAIText: {}, EventTurnHandoff: {},
	EventPartialFinal: {}, EventRecordStart: {}, EventRecordStop: {}, EventEndInterview: {},
	EventServerEnded: {}, EventFetchSummary: {}, EventSummaryReady: {}, EventFail: {},
	EventRetry: {}, EventReset: {},
}

// States returns every state in flow order.
func States() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

// Valid reports whether s belongs to the closed state set.
func (s State) Valid() bool {
	for _, known := range allStates {
		if s == known {
			return true
		}
	}
	return false
}

// Active reports whether an open channel is carrying interview turns.
func (s State) Active() bool {
	switch s {
	case StateSessionReady, StateAITurn, StateReadyToListen, StateUserTurn, StateUserTurnProcessing:
		return true
	default:
		return false
	}
}

// Live reports whether a session id exists and the interview has not ended.
func (s State) Live() bool {
	return s == StateInitializingSession || s == StateConnecting || s.Active()
}

// Ended reports whether the interview is over and summary retrieval owns the flow.
func (s State) Ended() bool {
	switch s {
	case StateEndedByAI, StateEndedByUser, StateFetchingSummary, StateSummaryDisplayed:
		return true
	default:
		return false
	}
}

// Errored reports whether the state offers the retry action.
func (s State) Errored() bool {
	return s == StatePermissionsDenied || s == StateSessionError || s == StateError
}

// Terminal reports whether no further interview progress is possible
// without retry or reset.
func (s State) Terminal() bool {
	return s == StateSummaryDisplayed || s.Errored()
}

// Transition returns the next state for event, or an error when the pair is
// not part of the machine.
func Transition(current State, event Event) (State, error) {
	if _, ok := allEvents[event]; !ok {
		return current, fmt.Errorf("unknown event %q", event)
	}
	if !current.Valid() {
		return current, fmt.Errorf("unknown state %q", current)
	}

	switch event {
	case EventFail:
		return StateError, nil
	case EventReset:
		return StateIdle, nil
	case EventRetry:
		if current.Errored() {
			return StateRequestingPermissions, nil
		}
		return current, invalidTransition(current, event)
	case EventEndInterview:
		if current.Live() {
			return StateEndedByUser, nil
		}
		return current, invalidTransition(current, event)
	case EventChannelFailed:
		switch {
		case current.Live():
			return StateSessionError, nil
		case current.Ended(), current == StateSessionError, current == StateError:
			// The channel is expected to drop once the session is over.
			return current, nil
		default:
			return current, invalidTransition(current, event)
		}
	case EventServerEnded:
		if current.Active() {
			return StateEndedByAI, nil
		}
		return current, invalidTransition(current, event)
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateRequestingPermissions, nil
		}
	case StateRequestingPermissions:
		switch event {
		case EventPermissionsGranted:
			return StateInitializingSession, nil
		case EventPermissionsDenied:
			return StatePermissionsDenied, nil
		}
	case StateInitializingSession:
		switch event {
		case EventDial:
			return StateConnecting, nil
		}
	case StateConnecting:
		switch event {
		case EventChannelOpened:
			return StateSessionReady, nil
		}
	case StateSessionReady:
		switch event {
		case EventAIText:
			return StateAITurn, nil
		case EventPartialFinal:
			return current, nil
		}
	case StateAITurn:
		switch event {
		case EventAIText, EventPartialFinal:
			return current, nil
		case EventTurnHandoff:
			return StateReadyToListen, nil
		case EventRecordStart:
			return StateUserTurn, nil
		}
	case StateReadyToListen:
		switch event {
		case EventAIText:
			return StateAITurn, nil
		case EventTurnHandoff, EventPartialFinal:
			return current, nil
		case EventRecordStart:
			return StateUserTurn, nil
		}
	case StateUserTurn:
		switch event {
		case EventAIText:
			return current, nil
		case EventPartialFinal, EventRecordStop:
			return StateUserTurnProcessing, nil
		}
	case StateUserTurnProcessing:
		switch event {
		case EventAIText:
			return StateAITurn, nil
		case EventPartialFinal:
			return current, nil
		}
	case StateEndedByAI, StateEndedByUser:
		switch event {
		case EventFetchSummary:
			return StateFetchingSummary, nil
		}
	case StateFetchingSummary:
		switch event {
		case EventSummaryReady:
			return StateSummaryDisplayed, nil
		}
	}
	return current, invalidTransition(current, event)
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
