// Package session drives one interview from permission request to summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/indicator"
	"github.com/anshc022/vocahire/internal/ipc"
	"github.com/anshc022/vocahire/internal/media"
	"github.com/anshc022/vocahire/internal/pipeline"
	"github.com/anshc022/vocahire/internal/playback"
	"github.com/anshc022/vocahire/internal/protocol"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
)

// HandoffMode selects what hands the turn from the interviewer to the candidate.
type HandoffMode string

const (
	HandoffHeuristic HandoffMode = "heuristic"
	HandoffExplicit  HandoffMode = "explicit"
	HandoffBoth      HandoffMode = "both"
)

const (
	commitTimeout = 10 * time.Second
	hideTimeout   = 800 * time.Millisecond
	eventBuffer   = 64
)

// Options tunes one controller.
type Options struct {
	PrebufferChunks int
	HighWaterChunks int
	Handoff         HandoffMode
	// AutoStart begins the permission request as soon as Run starts.
	AutoStart bool
	// PlaybackSampleRate applies to inbound audio without a WAV header.
	PlaybackSampleRate int
	CaptureSampleRate  int
	DebugAudioDump     bool
	Now                func() time.Time
	NewID              func() string
}

func (o Options) withDefaults() Options {
	if o.PrebufferChunks == 0 {
		o.PrebufferChunks = 1
	}
	if o.HighWaterChunks == 0 {
		o.HighWaterChunks = 8
	}
	if o.Handoff == "" {
		o.Handoff = HandoffBoth
	}
	if o.PlaybackSampleRate <= 0 {
		o.PlaybackSampleRate = 24000
	}
	if o.CaptureSampleRate <= 0 {
		o.CaptureSampleRate = 16000
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Result is the lifecycle output returned by one Run invocation.
type Result struct {
	State      fsm.State
	SessionID  string
	Cancelled  bool
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
	Transcript []transcript.Message
	Summary    *summary.Summary
}

// Permission is the outcome of the combined camera and microphone request.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// View is a read-only snapshot of the controller for status surfaces.
type View struct {
	State      fsm.State            `json:"state"`
	SessionID  string               `json:"session_id,omitempty"`
	Permission Permission           `json:"permission"`
	Affordance indicator.Affordance `json:"affordance"`
	Banner     string               `json:"banner,omitempty"`
	QueueDepth int                  `json:"queue_depth"`
	Transcript []transcript.Message `json:"transcript"`
	Summary    *summary.Summary     `json:"summary,omitempty"`
}

type loopExit int

const (
	keepRunning loopExit = iota
	exitCompleted
	exitCancelled
)

type commandEvent struct {
	command string
	reply   chan ipc.Response
}

type permissionResult struct {
	epoch uint64
	grant media.Grant
	err   error
}

type channelOpened struct {
	epoch uint64
	ch    Channel
}

type channelFailed struct {
	epoch  uint64
	dialed bool
	err    error
}

type inboundFrame struct {
	epoch uint64
	frame protocol.Inbound
}

type playbackDone struct {
	epoch uint64
	gen   uint64
	err   error
}

type captureFailed struct {
	epoch     uint64
	recording uint64
	err       error
}

type summaryResult struct {
	epoch   uint64
	summary *summary.Summary
	err     error
}

// Controller owns all interview state. Every mutation happens on the Run
// goroutine; blocking work posts its result back as an event.
type Controller struct {
	logger *slog.Logger
	deps   Deps
	opts   Options

	events chan any
	done   chan struct{}

	runCtx      context.Context
	state       fsm.State
	epoch       uint64
	sessCtx     context.Context
	sessCancel  context.CancelFunc
	sessionID   string
	startedAt   time.Time
	endedAt     time.Time
	endReason   EndReason
	grant       media.Grant
	permission  Permission
	ch          Channel
	queue       *playback.Queue
	stopPlay    context.CancelFunc
	uplink      *pipeline.Uplink
	recording   uint64
	transcript  *transcript.Transcript
	turnEnded   bool
	fetchIssued bool
	banner      string
	summary     *summary.Summary

	mu   sync.RWMutex
	view View
}

// NewController validates options and applies no-op fallbacks for unwired deps.
func NewController(logger *slog.Logger, deps Deps, opts Options) (*Controller, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts = opts.withDefaults()
	switch opts.Handoff {
	case HandoffHeuristic, HandoffExplicit, HandoffBoth:
	default:
		return nil, fmt.Errorf("unknown handoff mode %q", opts.Handoff)
	}
	queue, err := playback.NewQueue(opts.PrebufferChunks, opts.HighWaterChunks)
	if err != nil {
		return nil, fmt.Errorf("playback queue: %w", err)
	}

	c := &Controller{
		logger:     logger,
		deps:       deps.withFallbacks(),
		opts:       opts,
		events:     make(chan any, eventBuffer),
		done:       make(chan struct{}),
		runCtx:     context.Background(),
		state:      fsm.StateIdle,
		permission: PermissionUnknown,
		queue:      queue,
		transcript: transcript.New(transcript.WithClock(opts.Now), transcript.WithIDs(opts.NewID)),
	}
	c.publish()
	return c, nil
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	return c.Snapshot().State
}

// Snapshot returns the state published after the last processed event.
func (c *Controller) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	view := c.view
	view.Transcript = append([]transcript.Message(nil), c.view.Transcript...)
	return view
}

// Run processes events until the summary is committed, the session is
// cancelled, or ctx ends.
func (c *Controller) Run(ctx context.Context) Result {
	defer close(c.done)
	c.runCtx = ctx
	result := Result{StartedAt: c.opts.Now()}

	if c.opts.AutoStart {
		if err := c.begin(fsm.EventStart); err != nil {
			c.logger.Warn("auto-start failed", "error", err)
		}
		c.publish()
	}

	for {
		select {
		case <-ctx.Done():
			c.release()
			c.hide()
			return c.finish(result, ctx.Err())
		case ev := <-c.events:
			exit := c.dispatch(ev)
			c.publish()
			switch exit {
			case exitCompleted:
				c.release()
				return c.finish(result, nil)
			case exitCancelled:
				c.release()
				c.hide()
				result.Cancelled = true
				return c.finish(result, nil)
			}
		}
	}
}

func (c *Controller) finish(result Result, err error) Result {
	result.State = c.state
	result.SessionID = c.sessionID
	result.Err = err
	result.Transcript = c.transcript.Messages()
	result.Summary = c.summary
	result.FinishedAt = c.opts.Now()
	if !c.startedAt.IsZero() {
		result.StartedAt = c.startedAt
	}
	return result
}

// Handle serves IPC commands by routing them through the event loop.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status", "transcript", "start", "record", "stop", "toggle", "end", "retry", "reset", "cancel":
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}

	reply := make(chan ipc.Response, 1)
	select {
	case c.events <- commandEvent{command: req.Command, reply: reply}:
	case <-c.done:
		return c.stoppedResponse(req.Command)
	case <-ctx.Done():
		return ipc.Response{OK: false, State: string(c.State()), Error: ctx.Err().Error()}
	}

	select {
	case resp := <-reply:
		return resp
	case <-c.done:
		return c.stoppedResponse(req.Command)
	case <-ctx.Done():
		return ipc.Response{OK: false, State: string(c.State()), Error: ctx.Err().Error()}
	}
}

func (c *Controller) stoppedResponse(command string) ipc.Response {
	view := c.Snapshot()
	switch command {
	case "status":
		return ipc.Response{OK: true, State: string(view.State), SessionID: view.SessionID, Message: "status"}
	case "transcript":
		return ipc.Response{OK: true, State: string(view.State), SessionID: view.SessionID, Message: transcript.String(view.Transcript)}
	default:
		return ipc.Response{OK: false, State: string(view.State), Error: "session is not running"}
	}
}

// post delivers an event unless Run has already returned.
func (c *Controller) post(ev any) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) dispatch(ev any) loopExit {
	switch ev := ev.(type) {
	case commandEvent:
		resp, exit := c.handleCommand(ev.command)
		ev.reply <- resp
		return exit
	case permissionResult:
		c.onPermission(ev)
	case channelOpened:
		c.onChannelOpened(ev)
	case channelFailed:
		c.onChannelFailed(ev)
	case inboundFrame:
		if ev.epoch == c.epoch {
			c.onFrame(ev.frame)
		}
	case playbackDone:
		c.onPlaybackDone(ev)
	case captureFailed:
		c.onCaptureFailed(ev)
	case summaryResult:
		return c.onSummary(ev)
	default:
		c.logger.Error("unknown session event", "type", fmt.Sprintf("%T", ev))
	}
	return keepRunning
}

func (c *Controller) handleCommand(command string) (ipc.Response, loopExit) {
	switch command {
	case "status":
		return c.respond("status"), keepRunning
	case "transcript":
		return c.respond(transcript.String(c.transcript.Messages())), keepRunning
	case "toggle":
		action := indicator.AffordanceFor(c.state).Action
		if action == "" {
			return c.reject("toggle"), keepRunning
		}
		return c.handleCommand(action)
	case "start":
		if err := c.begin(fsm.EventStart); err != nil {
			return c.reject(command), keepRunning
		}
		return c.respond("permission requested"), keepRunning
	case "retry":
		if !c.can(fsm.EventRetry) {
			return c.reject(command), keepRunning
		}
		c.release()
		if err := c.begin(fsm.EventRetry); err != nil {
			return c.reject(command), keepRunning
		}
		return c.respond("retrying"), keepRunning
	case "record":
		if !c.can(fsm.EventRecordStart) {
			return c.reject(command), keepRunning
		}
		c.startRecording()
		return c.respond("recording"), keepRunning
	case "stop":
		if !c.can(fsm.EventRecordStop) {
			return c.reject(command), keepRunning
		}
		c.stopRecording()
		c.deps.Indicator.CueRecordStop(c.runCtx)
		c.transition(fsm.EventRecordStop)
		return c.respond("recording stopped"), keepRunning
	case "end":
		if !c.can(fsm.EventEndInterview) {
			return c.reject(command), keepRunning
		}
		c.endInterview(fsm.EventEndInterview, EndedByUser)
		return c.respond("interview ended"), keepRunning
	case "reset":
		c.release()
		c.epoch++
		c.clearSession()
		c.transition(fsm.EventReset)
		c.hide()
		return c.respond("reset"), keepRunning
	case "cancel":
		return c.respond("cancelled"), exitCancelled
	}
	return c.reject(command), keepRunning
}

func (c *Controller) respond(message string) ipc.Response {
	return ipc.Response{
		OK:        true,
		State:     string(c.state),
		SessionID: c.sessionID,
		Action:    indicator.AffordanceFor(c.state).Action,
		Message:   message,
	}
}

func (c *Controller) reject(command string) ipc.Response {
	return ipc.Response{
		OK:        false,
		State:     string(c.state),
		SessionID: c.sessionID,
		Action:    indicator.AffordanceFor(c.state).Action,
		Error:     fmt.Sprintf("cannot %s from state %s", command, c.state),
	}
}

func (c *Controller) can(event fsm.Event) bool {
	_, err := fsm.Transition(c.state, event)
	return err == nil
}

// transition applies one FSM event and reports the change to every observer.
func (c *Controller) transition(event fsm.Event) bool {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Debug("transition rejected", "state", c.state, "event", event, "error", err)
		return false
	}
	prev := c.state
	c.state = next
	if prev == next {
		return true
	}
	c.logger.Info("session transition",
		"from", prev,
		"to", next,
		"event", event,
		"session_id", c.sessionID,
	)
	c.deps.Metrics.ObserveTransition(prev, next)
	c.deps.Indicator.ShowState(c.runCtx, next)
	return true
}

// begin starts a fresh session attempt with the permission request.
func (c *Controller) begin(event fsm.Event) error {
	if _, err := fsm.Transition(c.state, event); err != nil {
		return err
	}
	c.epoch++
	c.clearSession()
	c.sessCtx, c.sessCancel = context.WithCancel(c.runCtx)
	c.transition(event)

	epoch, ctx := c.epoch, c.sessCtx
	go func() {
		grant, err := c.deps.Media.Request(ctx)
		c.post(permissionResult{epoch: epoch, grant: grant, err: err})
	}()
	return nil
}

func (c *Controller) clearSession() {
	c.sessionID = ""
	c.startedAt = time.Time{}
	c.endedAt = time.Time{}
	c.endReason = ""
	c.grant = media.Grant{}
	c.permission = PermissionUnknown
	c.turnEnded = false
	c.fetchIssued = false
	c.banner = ""
	c.summary = nil
	c.transcript.Reset()
	c.queue.Clear()
	c.deps.Metrics.SetQueueDepth(0)
}

func (c *Controller) onPermission(ev permissionResult) {
	if ev.epoch != c.epoch || c.state != fsm.StateRequestingPermissions {
		return
	}
	if ev.err != nil {
		reason := ev.err.Error()
		var denied *media.DeniedError
		if errors.As(ev.err, &denied) {
			reason = denied.Error()
		}
		c.banner = reason
		c.permission = PermissionDenied
		c.deps.Metrics.ObserveFault("permission")
		c.transition(fsm.EventPermissionsDenied)
		c.deps.Indicator.ShowError(c.runCtx, reason)
		return
	}

	c.grant = ev.grant
	c.permission = PermissionGranted
	if ev.grant.Warning != "" {
		c.logger.Warn("media access degraded", "warning", ev.grant.Warning)
		c.transcript.Append(transcript.SpeakerSystem, ev.grant.Warning)
	}
	c.sessionID = c.opts.NewID()
	c.startedAt = c.opts.Now()
	c.transition(fsm.EventPermissionsGranted)
	c.transition(fsm.EventDial)

	epoch, ctx, id := c.epoch, c.sessCtx, c.sessionID
	go func() {
		ch, err := c.deps.Dialer.Dial(ctx, id)
		if err != nil {
			c.post(channelFailed{epoch: epoch, err: err})
			return
		}
		c.post(channelOpened{epoch: epoch, ch: ch})
	}()
}

func (c *Controller) onChannelOpened(ev channelOpened) {
	if ev.epoch != c.epoch || c.state != fsm.StateConnecting {
		_ = ev.ch.Close()
		return
	}
	c.ch = ev.ch
	c.transition(fsm.EventChannelOpened)
	go c.readLoop(ev.epoch, ev.ch)
}

func (c *Controller) readLoop(epoch uint64, ch Channel) {
	for {
		frame, err := ch.Receive()
		if err != nil {
			c.post(channelFailed{epoch: epoch, dialed: true, err: err})
			return
		}
		c.post(inboundFrame{epoch: epoch, frame: frame})
	}
}

func (c *Controller) onChannelFailed(ev channelFailed) {
	if ev.epoch != c.epoch {
		return
	}
	if !c.state.Live() {
		c.logger.Debug("channel closed", "state", c.state, "error", ev.err)
		return
	}
	message := ev.err.Error()
	if !ev.dialed {
		message = "connect failed: " + message
	}
	c.teardownResources()
	c.banner = message
	c.deps.Metrics.ObserveFault("channel")
	c.logger.Warn("interview channel failed", "session_id", c.sessionID, "error", ev.err)
	c.transition(fsm.EventChannelFailed)
	c.deps.Indicator.ShowError(c.runCtx, message)
}

func (c *Controller) onFrame(frame protocol.Inbound) {
	c.deps.Metrics.ObserveFrame(frame.Kind)
	if !c.state.Active() {
		c.logger.Debug("frame ignored", "state", c.state, "kind", frame.Kind)
		return
	}

	switch frame.Kind {
	case protocol.KindAudio:
		if c.state == fsm.StateUserTurn {
			c.logger.Debug("audio dropped while recording", "bytes", len(frame.Audio))
			return
		}
		c.queue.Push(frame.Audio)
		c.deps.Metrics.SetQueueDepth(c.queue.Len())
		c.playNext(false)
	case protocol.KindAIText:
		c.transcript.Append(transcript.SpeakerAI, frame.Text)
		c.turnEnded = false
		c.transition(fsm.EventAIText)
		c.playNext(true)
	case protocol.KindSTTPartial:
		c.transcript.UpsertPartial(frame.Text, frame.Final)
		if frame.Final && c.state == fsm.StateUserTurn {
			c.stopRecording()
			c.deps.Indicator.CueRecordStop(c.runCtx)
		}
		if frame.Final {
			c.transition(fsm.EventPartialFinal)
		}
	case protocol.KindFinalTranscript:
		c.transcript.Finalize(frame.Text)
	case protocol.KindAITurnEnd:
		c.turnEnded = true
		c.playNext(true)
		c.maybeHandoff()
	case protocol.KindNotice:
		c.transcript.Append(transcript.SpeakerSystem, frame.Text)
	case protocol.KindSessionEnded:
		notice := "Interview ended by interviewer"
		if frame.Text != "" {
			notice += ": " + frame.Text
		}
		c.transcript.Append(transcript.SpeakerSystem, notice)
		c.endInterview(fsm.EventServerEnded, EndedByAI)
	}
}

// playNext starts the head of the queue when the queue allows it.
func (c *Controller) playNext(force bool) {
	item, ok := c.queue.Next(force)
	if !ok {
		return
	}
	c.deps.Metrics.SetQueueDepth(c.queue.Len())

	ctx, cancel := context.WithCancel(c.sessCtx)
	c.stopPlay = cancel
	epoch := c.epoch
	go func() {
		defer cancel()
		clip, err := audio.DecodeClip(item.Data, c.opts.PlaybackSampleRate)
		if err == nil {
			err = c.deps.Player.Play(ctx, clip)
		}
		c.post(playbackDone{epoch: epoch, gen: item.Gen, err: err})
	}()
}

func (c *Controller) stopPlayback() {
	c.queue.Clear()
	c.deps.Metrics.SetQueueDepth(0)
	if c.stopPlay != nil {
		c.stopPlay()
		c.stopPlay = nil
	}
}

func (c *Controller) onPlaybackDone(ev playbackDone) {
	if ev.epoch != c.epoch || !c.queue.Done(ev.gen) {
		return
	}
	c.stopPlay = nil
	if ev.err != nil && !errors.Is(ev.err, context.Canceled) {
		c.fault("playback", fmt.Sprintf("audio playback failed: %v", ev.err))
		return
	}
	if !c.state.Active() {
		return
	}
	c.playNext(true)
	c.maybeHandoff()
}

// maybeHandoff gives the turn to the candidate once interviewer audio has
// drained and the configured handoff signal is present.
func (c *Controller) maybeHandoff() {
	if c.state != fsm.StateAITurn || !c.queue.Idle() {
		return
	}
	question := false
	if last, ok := c.transcript.LastAI(); ok {
		question = transcript.IsQuestion(last.Text)
	}

	var handoff bool
	switch c.opts.Handoff {
	case HandoffHeuristic:
		handoff = question
	case HandoffExplicit:
		handoff = c.turnEnded
	default:
		handoff = question || c.turnEnded
	}
	if !handoff {
		return
	}
	c.turnEnded = false
	c.transition(fsm.EventTurnHandoff)
	c.deps.Indicator.CueYourTurn(c.runCtx)
}

// startRecording interrupts interviewer playback and begins the uplink.
func (c *Controller) startRecording() {
	c.stopPlayback()
	c.transition(fsm.EventRecordStart)

	source, err := c.deps.Recorder.Start(c.sessCtx, c.grant)
	if err != nil {
		c.fault("capture", fmt.Sprintf("microphone capture failed: %v", err))
		return
	}

	c.recording++
	epoch, recording := c.epoch, c.recording
	c.uplink = pipeline.StartUplink(source, c.ch, pipeline.Options{
		SampleRate:     c.opts.CaptureSampleRate,
		DebugAudioDump: c.opts.DebugAudioDump,
		Logger:         c.logger,
		OnCaptureError: func(err error) {
			go c.post(captureFailed{epoch: epoch, recording: recording, err: err})
		},
	})
	c.deps.Indicator.CueRecordStart(c.runCtx)
}

// stopRecording ends capture; END_OF_STREAM follows the last chunk.
func (c *Controller) stopRecording() {
	if c.uplink == nil {
		return
	}
	stats, err := c.uplink.Stop()
	c.uplink = nil
	c.deps.Metrics.ObserveUplink(stats.Chunks, stats.Bytes)
	if err != nil {
		c.logger.Warn("uplink send failed", "session_id", c.sessionID, "error", err)
	}
	c.logger.Debug("uplink finished", "chunks", stats.Chunks, "bytes", stats.Bytes)
}

func (c *Controller) onCaptureFailed(ev captureFailed) {
	if ev.epoch != c.epoch || ev.recording != c.recording || c.state != fsm.StateUserTurn {
		return
	}
	c.stopRecording()
	c.deps.Metrics.ObserveFault("capture")
	c.transcript.Append(transcript.SpeakerSystem, fmt.Sprintf("Recording stopped: %v", ev.err))
	c.deps.Indicator.CueRecordStop(c.runCtx)
	c.transition(fsm.EventRecordStop)
}

// endInterview finishes the live session and fetches the summary.
func (c *Controller) endInterview(event fsm.Event, reason EndReason) {
	c.stopRecording()
	c.stopPlayback()
	if event == fsm.EventEndInterview && c.ch != nil {
		if err := c.ch.SendControl(protocol.ControlEndInterview); err != nil {
			c.logger.Warn("end interview signal failed", "session_id", c.sessionID, "error", err)
		}
	}
	if !c.transition(event) {
		return
	}
	c.endedAt = c.opts.Now()
	c.endReason = reason
	c.fetchSummary()
}

func (c *Controller) fetchSummary() {
	if c.fetchIssued {
		return
	}
	c.fetchIssued = true
	c.transition(fsm.EventFetchSummary)

	epoch, ctx, id := c.epoch, c.sessCtx, c.sessionID
	go func() {
		s, err := c.deps.Summary.Fetch(ctx, id)
		c.post(summaryResult{epoch: epoch, summary: s, err: err})
	}()
}

func (c *Controller) onSummary(ev summaryResult) loopExit {
	if ev.epoch != c.epoch || c.state != fsm.StateFetchingSummary {
		return keepRunning
	}
	c.closeChannel()

	if ev.err != nil {
		c.deps.Metrics.ObserveSummaryFetch("error")
		c.fault("summary", fmt.Sprintf("summary fetch failed: %v", ev.err))
		c.commit(ev.err)
		return keepRunning
	}

	c.summary = ev.summary
	c.deps.Metrics.ObserveSummaryFetch("ok")
	c.transition(fsm.EventSummaryReady)
	c.deps.Indicator.CueComplete(c.runCtx)
	c.commit(nil)
	return exitCompleted
}

func (c *Controller) commit(err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.runCtx), commitTimeout)
	defer cancel()

	outcome := Outcome{
		SessionID:  c.sessionID,
		StartedAt:  c.startedAt,
		EndedAt:    c.endedAt,
		EndReason:  c.endReason,
		FinalState: c.state,
		Transcript: c.transcript.Messages(),
		Summary:    c.summary,
		Err:        err,
	}
	if commitErr := c.deps.Committer.Commit(ctx, outcome); commitErr != nil {
		c.logger.Error("commit interview outcome", "session_id", c.sessionID, "error", commitErr)
	}
}

// fault moves to the local error state and releases session resources.
func (c *Controller) fault(kind string, message string) {
	c.teardownResources()
	c.banner = message
	c.deps.Metrics.ObserveFault(kind)
	c.logger.Warn("session fault", "kind", kind, "session_id", c.sessionID, "error", message)
	c.transition(fsm.EventFail)
	c.deps.Indicator.ShowError(c.runCtx, message)
}

// teardownResources stops capture and playback and closes the channel. The
// session context stays alive so in-flight results can still be delivered.
func (c *Controller) teardownResources() {
	c.stopRecording()
	c.stopPlayback()
	c.closeChannel()
}

// release tears down everything including in-flight background work.
func (c *Controller) release() {
	c.teardownResources()
	if c.sessCancel != nil {
		c.sessCancel()
		c.sessCancel = nil
	}
}

func (c *Controller) closeChannel() {
	if c.ch == nil {
		return
	}
	if err := c.ch.Close(); err != nil {
		c.logger.Debug("close channel", "error", err)
	}
	c.ch = nil
}

func (c *Controller) hide() {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.runCtx), hideTimeout)
	defer cancel()
	c.deps.Indicator.Hide(ctx)
}

func (c *Controller) publish() {
	view := View{
		State:      c.state,
		SessionID:  c.sessionID,
		Permission: c.permission,
		Affordance: indicator.AffordanceFor(c.state),
		Banner:     c.banner,
		QueueDepth: c.queue.Len(),
		Transcript: c.transcript.Messages(),
		Summary:    c.summary,
	}
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
}
