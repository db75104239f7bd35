package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  State
	}{
		{EventStart, StateRequestingPermissions},
		{EventPermissionsGranted, StateInitializingSession},
		{EventDial, StateConnecting},
		{EventChannelOpened, StateSessionReady},
		{EventAIText, StateAITurn},
		{EventTurnHandoff, StateReadyToListen},
		{EventRecordStart, StateUserTurn},
		{EventRecordStop, StateUserTurnProcessing},
		{EventAIText, StateAITurn},
		{EventServerEnded, StateEndedByAI},
		{EventFetchSummary, StateFetchingSummary},
		{EventSummaryReady, StateSummaryDisplayed},
	}

	s := StateIdle
	for _, step := range steps {
		next, err := Transition(s, step.event)
		require.NoError(t, err, "%s --(%s)-->", s, step.event)
		require.Equal(t, step.want, next)
		s = next
	}
}

func TestTransitionFailFromAnyStateGoesError(t *testing.T) {
	for _, state := range States() {
		next, err := Transition(state, EventFail)
		require.NoError(t, err)
		require.Equal(t, StateError, next)
	}
}

func TestTransitionResetFromAnyStateGoesIdle(t *testing.T) {
	for _, state := range States() {
		next, err := Transition(state, EventReset)
		require.NoError(t, err)
		require.Equal(t, StateIdle, next)
	}
}

func TestTransitionRetryOnlyFromErrorStates(t *testing.T) {
	for _, state := range States() {
		next, err := Transition(state, EventRetry)
		if state.Errored() {
			require.NoError(t, err)
			require.Equal(t, StateRequestingPermissions, next)
			continue
		}
		require.Error(t, err)
		require.Equal(t, state, next)
	}
}

func TestTransitionEndInterviewFromLiveStates(t *testing.T) {
	for _, state := range States() {
		next, err := Transition(state, EventEndInterview)
		if state.Live() {
			require.NoError(t, err)
			require.Equal(t, StateEndedByUser, next)
			continue
		}
		require.Error(t, err, state)
		require.Equal(t, state, next)
	}
}

func TestTransitionChannelFailure(t *testing.T) {
	for _, state := range States() {
		next, err := Transition(state, EventChannelFailed)
		switch {
		case state.Live():
			require.NoError(t, err)
			require.Equal(t, StateSessionError, next)
		case state.Ended(), state == StateSessionError, state == StateError:
			require.NoError(t, err)
			require.Equal(t, state, next)
		default:
			require.Error(t, err)
		}
	}
}

func TestTransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "permission denied", state: StateRequestingPermissions, event: EventPermissionsDenied, want: StatePermissionsDenied},
		{name: "barge-in from ai turn", state: StateAITurn, event: EventRecordStart, want: StateUserTurn},
		{name: "final partial promotes", state: StateUserTurn, event: EventPartialFinal, want: StateUserTurnProcessing},
		{name: "ai text while recording keeps user turn", state: StateUserTurn, event: EventAIText, want: StateUserTurn},
		{name: "server ended from ready", state: StateReadyToListen, event: EventServerEnded, want: StateEndedByAI},
		{name: "user ended fetches", state: StateEndedByUser, event: EventFetchSummary, want: StateFetchingSummary},
		{name: "idle record invalid", state: StateIdle, event: EventRecordStart, want: StateIdle, wantErr: true},
		{name: "session ready record invalid", state: StateSessionReady, event: EventRecordStart, want: StateSessionReady, wantErr: true},
		{name: "processing stop invalid", state: StateUserTurnProcessing, event: EventRecordStop, want: StateUserTurnProcessing, wantErr: true},
		{name: "connecting handoff invalid", state: StateConnecting, event: EventTurnHandoff, want: StateConnecting, wantErr: true},
		{name: "server ended while connecting invalid", state: StateConnecting, event: EventServerEnded, want: StateConnecting, wantErr: true},
		{name: "summary displayed start invalid", state: StateSummaryDisplayed, event: EventStart, want: StateSummaryDisplayed, wantErr: true},
		{name: "fetching summary ready", state: StateFetchingSummary, event: EventSummaryReady, want: StateSummaryDisplayed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionFinalPartialOutsideUserTurn(t *testing.T) {
	tests := []struct {
		state   State
		want    State
		wantErr bool
	}{
		{state: StateUserTurn, want: StateUserTurnProcessing},
		{state: StateSessionReady, want: StateSessionReady},
		{state: StateAITurn, want: StateAITurn},
		{state: StateReadyToListen, want: StateReadyToListen},
		{state: StateUserTurnProcessing, want: StateUserTurnProcessing},
		{state: StateIdle, want: StateIdle, wantErr: true},
		{state: StateConnecting, want: StateConnecting, wantErr: true},
		{state: StateSummaryDisplayed, want: StateSummaryDisplayed, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(string(tc.state), func(t *testing.T) {
			next, err := Transition(tc.state, EventPartialFinal)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownStateAndEvent(t *testing.T) {
	_, err := Transition(State("bogus"), EventStart)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")

	_, err = Transition(StateIdle, Event("bogus"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown event")
}

func TestStatePredicates(t *testing.T) {
	require.True(t, StateConnecting.Live())
	require.False(t, StateConnecting.Active())
	require.True(t, StateUserTurn.Active())
	require.True(t, StateFetchingSummary.Ended())
	require.True(t, StatePermissionsDenied.Errored())
	require.True(t, StateSummaryDisplayed.Terminal())
	require.False(t, StateFetchingSummary.Terminal())
	require.True(t, StateIdle.Valid())
	require.Len(t, States(), 16)
}
