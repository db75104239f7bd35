package session

import (
	"context"
	"errors"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/media"
	"github.com/anshc022/vocahire/internal/pipeline"
	"github.com/anshc022/vocahire/internal/protocol"
	"github.com/anshc022/vocahire/internal/summary"
)

// ErrUnavailable indicates a required runtime dependency was not wired.
var ErrUnavailable = errors.New("session dependency not configured")

// MediaAccess grants microphone (and camera) access for one session.
type MediaAccess interface {
	Request(context.Context) (media.Grant, error)
}

// Channel is one open bidirectional interview channel.
type Channel interface {
	Receive() (protocol.Inbound, error)
	SendAudio([]byte) error
	SendControl(protocol.Control) error
	Close() error
}

// Dialer opens the interview channel for a session id.
type Dialer interface {
	Dial(ctx context.Context, sessionID string) (Channel, error)
}

// DialFunc adapts a function to the Dialer interface.
type DialFunc func(context.Context, string) (Channel, error)

func (f DialFunc) Dial(ctx context.Context, sessionID string) (Channel, error) {
	return f(ctx, sessionID)
}

// Recorder starts microphone capture for one answer.
type Recorder interface {
	Start(context.Context, media.Grant) (pipeline.Source, error)
}

// Player plays one decoded clip and returns when it finishes or ctx ends.
type Player interface {
	Play(context.Context, audio.Clip) error
}

// SummaryFetcher retrieves the post-interview summary.
type SummaryFetcher interface {
	Fetch(ctx context.Context, sessionID string) (*summary.Summary, error)
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowState(context.Context, fsm.State)
	ShowError(context.Context, string)
	CueRecordStart(context.Context)
	CueRecordStop(context.Context)
	CueYourTurn(context.Context)
	CueComplete(context.Context)
	Hide(context.Context)
}

// Metrics receives controller measurements.
type Metrics interface {
	ObserveTransition(from fsm.State, to fsm.State)
	ObserveFrame(kind protocol.Kind)
	ObserveUplink(chunks int, bytes int64)
	SetQueueDepth(depth int)
	ObserveSummaryFetch(outcome string)
	ObserveFault(kind string)
}

// Deps are the controller's side-effect ports.
type Deps struct {
	Media     MediaAccess
	Dialer    Dialer
	Recorder  Recorder
	Player    Player
	Summary   SummaryFetcher
	Indicator Indicator
	Committer Committer
	Metrics   Metrics
}

func (d Deps) withFallbacks() Deps {
	if d.Media == nil {
		d.Media = unavailable{}
	}
	if d.Dialer == nil {
		d.Dialer = unavailable{}
	}
	if d.Recorder == nil {
		d.Recorder = unavailable{}
	}
	if d.Player == nil {
		d.Player = unavailable{}
	}
	if d.Summary == nil {
		d.Summary = unavailable{}
	}
	if d.Indicator == nil {
		d.Indicator = noopIndicator{}
	}
	if d.Committer == nil {
		d.Committer = CommitFunc(func(context.Context, Outcome) error { return nil })
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	return d
}

// unavailable fails every blocking port so a partially wired controller
// surfaces errors instead of hanging.
type unavailable struct{}

func (unavailable) Request(context.Context) (media.Grant, error) {
	return media.Grant{}, ErrUnavailable
}

func (unavailable) Dial(context.Context, string) (Channel, error) {
	return nil, ErrUnavailable
}

func (unavailable) Start(context.Context, media.Grant) (pipeline.Source, error) {
	return nil, ErrUnavailable
}

func (unavailable) Play(context.Context, audio.Clip) error {
	return ErrUnavailable
}

func (unavailable) Fetch(context.Context, string) (*summary.Summary, error) {
	return nil, ErrUnavailable
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowState(context.Context, fsm.State) {}
func (noopIndicator) ShowError(context.Context, string)    {}
func (noopIndicator) CueRecordStart(context.Context)       {}
func (noopIndicator) CueRecordStop(context.Context)        {}
func (noopIndicator) CueYourTurn(context.Context)          {}
func (noopIndicator) CueComplete(context.Context)          {}
func (noopIndicator) Hide(context.Context)                 {}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(fsm.State, fsm.State) {}
func (noopMetrics) ObserveFrame(protocol.Kind)             {}
func (noopMetrics) ObserveUplink(int, int64)               {}
func (noopMetrics) SetQueueDepth(int)                      {}
func (noopMetrics) ObserveSummaryFetch(string)             {}
func (noopMetrics) ObserveFault(string)                    {}
