// Package indicator maps interview states to controls, on-screen status, and
// audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/hypr"
)

// ClipPlayer plays one decoded clip.
type ClipPlayer interface {
	Play(context.Context, audio.Clip) error
}

// Notifier is the concrete indicator used by runtime sessions. It routes
// notifications via Hyprland or desktop DBus based on config backend.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages
	player   ClipPlayer

	mu                    sync.Mutex
	shown                 fsm.State
	desktopNotificationID uint32
	soundMu               sync.Mutex
	cues                  sync.WaitGroup
}

// NewNotifier creates an indicator from config.
func NewNotifier(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: indicatorMessagesFromEnv(),
		player:   audio.PulsePlayer{MediaName: "vocahire cue", Latency: 0.02},
	}
}

// ShowState displays the status line for state. Repeated calls for the same
// state are collapsed.
func (n *Notifier) ShowState(ctx context.Context, state fsm.State) {
	if !n.cfg.Enable {
		return
	}
	msg, ok := n.messages.noticeFor(state)
	if !ok {
		return
	}

	n.mu.Lock()
	if n.shown == state {
		n.mu.Unlock()
		return
	}
	n.shown = state
	n.mu.Unlock()

	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, msg)
	})
}

// ShowError displays an error banner.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if !n.cfg.Enable {
		return
	}
	if text == "" {
		text = n.messages.errorText
	}
	timeout := time.Duration(n.cfg.ErrorTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 1200 * time.Millisecond
	}

	n.mu.Lock()
	n.shown = ""
	n.mu.Unlock()

	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, hypr.Notice{Icon: hypr.IconError, Timeout: timeout, Color: colorRecording, Text: text})
	})
}

// CueRecordStart emits the recording-start cue.
func (n *Notifier) CueRecordStart(context.Context) {
	n.playCue(cueStart)
}

// CueRecordStop emits the recording-stop cue.
func (n *Notifier) CueRecordStop(context.Context) {
	n.playCue(cueStop)
}

// CueYourTurn emits the cue played when the interviewer hands over the turn.
func (n *Notifier) CueYourTurn(context.Context) {
	n.playCue(cueTurn)
}

// CueComplete emits the summary-ready cue.
func (n *Notifier) CueComplete(context.Context) {
	n.playCue(cueComplete)
}

// Hide dismisses the active indicator surface.
func (n *Notifier) Hide(ctx context.Context) {
	n.mu.Lock()
	n.shown = ""
	n.mu.Unlock()
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
}

// Wait blocks until queued cues have finished.
func (n *Notifier) Wait() {
	n.cues.Wait()
}

// notify dispatches indicator output through the configured backend.
func (n *Notifier) notify(ctx context.Context, notice hypr.Notice) error {
	if strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop") {
		return n.notifyDesktop(ctx, int(notice.Timeout.Milliseconds()), notice.Text)
	}
	return hypr.Notify(ctx, notice)
}

// dismiss removes indicator output from the configured backend.
func (n *Notifier) dismiss(ctx context.Context) error {
	if strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop") {
		return n.dismissDesktop(ctx)
	}
	return hypr.DismissNotify(ctx)
}

// notifyDesktop sends a replaceable desktop notification and stores its ID.
func (n *Notifier) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.DesktopAppName)
	if appName == "" {
		appName = "vocahire"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

// dismissDesktop closes the current desktop notification ID when present.
func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable || n.player == nil {
		return
	}
	n.cues.Add(1)
	go func() {
		defer n.cues.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		if err := n.player.Play(ctx, cueClip(kind, n.cfg)); err != nil && n.logger != nil {
			n.logger.Debug("indicator audio cue failed", "cue", string(kind), "error", err.Error())
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}
