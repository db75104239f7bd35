package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/ipc"
	"github.com/anshc022/vocahire/internal/protocol"
)

func TestNewControllerRejectsBadOptions(t *testing.T) {
	_, err := NewController(nil, Deps{}, Options{Handoff: "vibes"})
	require.ErrorContains(t, err, "unknown handoff mode")

	_, err = NewController(nil, Deps{}, Options{PrebufferChunks: 4, HighWaterChunks: 2})
	require.ErrorContains(t, err, "playback queue")
}

func TestHandleStatusAndUnknownCommand(t *testing.T) {
	h := newHarness(t, Options{})

	status := h.do(t, "status")
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)
	require.Equal(t, "start", status.Action)

	unknown := h.do(t, "definitely-unknown")
	require.False(t, unknown.OK)
	require.Contains(t, unknown.Error, "unknown command")
}

func TestHandleRejectsCommandsInvalidForState(t *testing.T) {
	h := newHarness(t, Options{})

	for _, command := range []string{"record", "stop", "end", "retry"} {
		resp := h.do(t, command)
		require.False(t, resp.OK, command)
		require.Equal(t, "cannot "+command+" from state idle", resp.Error)
	}

	h.connect(t)
	resp := h.do(t, "start")
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "session_ready_waiting_ai")

	resp = h.do(t, "toggle")
	require.False(t, resp.OK)
	require.Equal(t, "cannot toggle from state session_ready_waiting_ai", resp.Error)
}

func TestHandleToggleFollowsAffordance(t *testing.T) {
	h := newHarness(t, Options{})

	resp := h.do(t, "toggle")
	require.True(t, resp.OK)
	waitForState(t, h.ctrl, fsm.StateSessionReady)

	h.ask(t, "Why Go?")

	resp = h.do(t, "toggle")
	require.True(t, resp.OK)
	require.Equal(t, string(fsm.StateUserTurn), resp.State)

	resp = h.do(t, "toggle")
	require.True(t, resp.OK)
	require.Equal(t, string(fsm.StateUserTurnProcessing), resp.State)
}

func TestHandleEndBeforeChannelOpens(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	h := newHarness(t, Options{}, func(h *harness) {
		h.dialGate = gate
	})

	require.True(t, h.do(t, "start").OK)
	waitForState(t, h.ctrl, fsm.StateConnecting)

	resp := h.do(t, "end")
	require.True(t, resp.OK, "end: %+v", resp)
	result := h.result(t)
	require.Equal(t, fsm.StateSummaryDisplayed, result.State)
	require.Len(t, h.summaries.IDs(), 1)
	require.Empty(t, h.ch.Sent())
}

func TestHandleTranscriptRendersMessages(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	h := newHarness(t, Options{Now: func() time.Time { return fixed }})
	h.connect(t)
	h.send(protocol.Inbound{Kind: protocol.KindAIText, Text: "Why Go?"})
	require.Eventually(t, func() bool {
		return len(h.ctrl.Snapshot().Transcript) == 1
	}, waitTimeout, 5*time.Millisecond)

	resp := h.do(t, "transcript")
	require.True(t, resp.OK)
	require.Equal(t, "[09:30:00] Interviewer: Why Go?\n", resp.Message)
}

func TestHandleAfterRunReturnsUsesSnapshot(t *testing.T) {
	h := newHarness(t, Options{})
	require.True(t, h.do(t, "cancel").OK)
	h.result(t)

	status := h.do(t, "status")
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)

	start := h.do(t, "start")
	require.False(t, start.OK)
	require.Equal(t, "session is not running", start.Error)
}

func TestHandleHonorsContextWhenLoopIsBusy(t *testing.T) {
	ctrl, err := NewController(nil, Deps{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := ctrl.Handle(ctx, ipc.Request{Command: "status"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, context.Canceled.Error())
}

func TestUnwiredDepsFailClosed(t *testing.T) {
	ctrl, err := NewController(nil, Deps{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	resp := ctrl.Handle(ctx, ipc.Request{Command: "start"})
	require.True(t, resp.OK)
	waitForState(t, ctrl, fsm.StatePermissionsDenied)
	require.Contains(t, ctrl.Snapshot().Banner, ErrUnavailable.Error())
}
