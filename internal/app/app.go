// Package app wires parsed commands to the interview runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/anshc022/vocahire/internal/archive"
	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/channel"
	"github.com/anshc022/vocahire/internal/cli"
	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/doctor"
	"github.com/anshc022/vocahire/internal/httpapi"
	"github.com/anshc022/vocahire/internal/indicator"
	"github.com/anshc022/vocahire/internal/ipc"
	"github.com/anshc022/vocahire/internal/logging"
	"github.com/anshc022/vocahire/internal/media"
	"github.com/anshc022/vocahire/internal/observability"
	"github.com/anshc022/vocahire/internal/output"
	"github.com/anshc022/vocahire/internal/pipeline"
	"github.com/anshc022/vocahire/internal/protocol"
	"github.com/anshc022/vocahire/internal/session"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
	"github.com/anshc022/vocahire/internal/version"
)

const (
	historyLimit = 20
	// forwardTimeout covers indicator dispatch and uplink flushes that run
	// inside the owner's event loop.
	forwardTimeout = 2 * time.Second
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("vocahire"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("vocahire"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.NewOrStderr(r.Stderr)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: log file unavailable, logging to stderr: %v\n", err)
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch {
	case parsed.Command == cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case parsed.Command == cli.CommandDevices:
		return r.commandDevices(ctx)
	case parsed.Command == cli.CommandStart:
		return r.commandStart(ctx, cfgLoaded.Config, logger)
	case parsed.Command == cli.CommandSummary:
		return r.commandSummary(ctx, cfgLoaded.Config, parsed.Args[0])
	case parsed.Command == cli.CommandHistory:
		return r.commandHistory(ctx, cfgLoaded.Config, parsed.Args)
	case parsed.Command == cli.CommandStatus:
		return r.commandStatus(ctx)
	case parsed.Command.Forwarded():
		return r.forwardOrFail(ctx, string(parsed.Command))
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		line := resp.State
		if resp.SessionID != "" {
			line += " " + resp.SessionID
		}
		fmt.Fprintln(r.Stdout, line)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active vocahire session; run `vocahire start`\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, strings.TrimRight(resp.Message, "\n"))
	}
	return 0
}

// commandStart owns the socket and runs one interview until its summary is
// shown, it is cancelled, or the process is signalled.
func (r Runner) commandStart(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, ipc.AcquireOptions{ProbeTimeout: 180 * time.Millisecond, Retries: 8})
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v; use `vocahire status`\n", err)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	metrics := observability.NewMetrics()
	notifier := indicator.NewNotifier(cfg.Indicator, logger)
	defer notifier.Wait()

	committers := []session.Committer{output.NewPublisher(cfg.Export, logger)}
	if cfg.Archive.Enable {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			fmt.Fprintf(r.Stderr, "warning: session history disabled: %v\n", err)
			logger.Warn("open archive failed", "error", err.Error())
		} else {
			defer func() { _ = store.Close() }()
			committers = append(committers, store)
		}
	}

	controller, err := session.NewController(logger, newDeps(cfg, logger, notifier, metrics, committers), session.Options{
		PrebufferChunks:    cfg.Playback.PrebufferChunks,
		HighWaterChunks:    cfg.Playback.HighWaterChunks,
		Handoff:            session.HandoffMode(cfg.Turn.Handoff),
		AutoStart:          true,
		PlaybackSampleRate: cfg.Playback.SampleRate,
		CaptureSampleRate:  cfg.Capture.SampleRate,
		DebugAudioDump:     cfg.Debug.EnableAudioDump,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Server{Handler: controller, Logger: logger}.Serve(serverCtx, listener)
	}()

	if addr := strings.TrimSpace(cfg.Status.Addr); addr != "" {
		api := httpapi.New(controller, metrics, logger)
		go func() {
			if err := api.Serve(serverCtx, addr); err != nil {
				logger.Error("status api failed", "addr", addr, "error", err.Error())
			}
		}()
	}

	result := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, result)

	if result.Cancelled {
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	r.printInterview(result.Summary, result.Transcript)
	return 0
}

func newDeps(
	cfg config.Config,
	logger *slog.Logger,
	notifier *indicator.Notifier,
	metrics *observability.Metrics,
	committers []session.Committer,
) session.Deps {
	dialer := &channel.Dialer{
		BaseURL:          cfg.Server.ChannelURL,
		Wire:             protocol.Wire(cfg.Protocol.Wire),
		HandshakeTimeout: time.Duration(cfg.Server.HandshakeTimeoutMS) * time.Millisecond,
		Logger:           logger,
	}

	return session.Deps{
		Media: media.Access{
			Input:        cfg.Media.Input,
			Fallback:     cfg.Media.Fallback,
			RequireVideo: cfg.Media.RequireVideo,
			VideoDevice:  cfg.Media.VideoDevice,
		},
		Dialer: session.DialFunc(func(ctx context.Context, sessionID string) (session.Channel, error) {
			conn, err := dialer.Dial(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}),
		Recorder: pipeline.Recorder{Capture: audio.CaptureOptions{
			SampleRate: cfg.Capture.SampleRate,
			ChunkMS:    cfg.Capture.ChunkMS,
		}},
		Player:    audio.PulsePlayer{MediaName: "vocahire interviewer"},
		Summary:   summary.NewClient(cfg.Server.APIURL, cfg.Server.HealthPath, time.Duration(cfg.Server.RequestTimeoutMS)*time.Millisecond),
		Indicator: notifier,
		Committer: session.Committers(committers...),
		Metrics:   metrics,
	}
}

func (r Runner) commandSummary(ctx context.Context, cfg config.Config, sessionID string) int {
	client := summary.NewClient(cfg.Server.APIURL, cfg.Server.HealthPath, time.Duration(cfg.Server.RequestTimeoutMS)*time.Millisecond)
	s, err := client.Retrieve(ctx, sessionID)
	if err != nil {
		if errors.Is(err, summary.ErrNotFound) {
			fmt.Fprintf(r.Stderr, "error: no summary for session %s\n", sessionID)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	r.printInterview(s, nil)
	return 0
}

func (r Runner) commandHistory(ctx context.Context, cfg config.Config, args []string) int {
	if !cfg.Archive.Enable {
		fmt.Fprintln(r.Stderr, "error: session history is disabled (archive.enable=false)")
		return 1
	}
	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	if len(args) == 1 {
		messages, s, err := store.Transcript(ctx, args[0])
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		r.printInterview(s, messages)
		return 0
	}

	entries, err := store.List(ctx, historyLimit)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.Stdout, "no interviews recorded")
		return 0
	}

	tw := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tENDED BY\tSTATE\tSCORE\tMESSAGES")
	for _, entry := range entries {
		score := "-"
		if entry.OverallScore != nil {
			score = fmt.Sprintf("%.0f%%", *entry.OverallScore*100)
		}
		started := "-"
		if !entry.StartedAt.IsZero() {
			started = entry.StartedAt.Local().Format("2006-01-02 15:04")
		}
		endedBy := entry.EndReason
		if endedBy == "" {
			endedBy = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", entry.ID, started, endedBy, entry.FinalState, score, entry.Messages)
	}
	_ = tw.Flush()
	return 0
}

func (r Runner) printInterview(s *summary.Summary, messages []transcript.Message) {
	if s != nil {
		_ = summary.Render(r.Stdout, s)
	}
	if len(messages) > 0 {
		if s != nil {
			fmt.Fprintln(r.Stdout)
		}
		fmt.Fprintln(r.Stdout, "Transcript")
		_ = transcript.Render(r.Stdout, messages)
	}
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"session_id", result.SessionID,
		"cancelled", result.Cancelled,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"messages", len(result.Transcript),
		"summary", result.Summary != nil,
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	client := ipc.Client{Path: socketPath, Timeout: forwardTimeout}
	resp, err := client.Do(ctx, ipc.Request{Command: command})
	switch {
	case err == nil && resp.OK:
		return resp, true, nil
	case err == nil:
		return resp, true, errors.New(resp.Error)
	case ipc.Unavailable(err):
		return ipc.Response{}, false, nil
	default:
		return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
	}
}
