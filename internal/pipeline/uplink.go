// Package pipeline streams one recorded answer from the microphone to the
// interview channel.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/media"
	"github.com/anshc022/vocahire/internal/protocol"
)

// Source produces capture chunks until stopped or faulted. Chunks must be
// closed exactly once.
type Source interface {
	Chunks() <-chan []byte
	Stop() error
	Err() error
}

// Sender is the outbound half of the interview channel.
type Sender interface {
	SendAudio(chunk []byte) error
	SendControl(ctrl protocol.Control) error
}

// Options configures one uplink.
type Options struct {
	SampleRate     int
	DebugAudioDump bool
	Logger         *slog.Logger
	// OnCaptureError runs on the uplink goroutine, after the end marker is
	// sent, when the source faulted without Stop being called.
	OnCaptureError func(error)
}

// Stats summarizes a finished uplink.
type Stats struct {
	Chunks int
	Bytes  int64
}

// Uplink forwards chunks as they arrive and then sends END_OF_STREAM once.
type Uplink struct {
	source Source
	sender Sender
	opts   Options

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}

	stats   Stats
	sendErr error
	pcm     []byte
}

// StartUplink begins forwarding source chunks to sender.
func StartUplink(source Source, sender Sender, opts Options) *Uplink {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	u := &Uplink{
		source:  source,
		sender:  sender,
		opts:    opts,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go u.run()
	return u
}

// Done closes when the end marker has been sent (or sending failed).
func (u *Uplink) Done() <-chan struct{} {
	return u.done
}

// Stop ends the capture and waits for the uplink to flush.
func (u *Uplink) Stop() (Stats, error) {
	u.stopOnce.Do(func() {
		close(u.stopped)
		_ = u.source.Stop()
	})
	<-u.done
	return u.stats, u.sendErr
}

func (u *Uplink) run() {
	defer close(u.done)

	for chunk := range u.source.Chunks() {
		if len(chunk) == 0 || u.sendErr != nil {
			continue
		}
		if err := u.sender.SendAudio(chunk); err != nil {
			u.sendErr = fmt.Errorf("send audio chunk: %w", err)
			// Stop flushes the tail into Chunks, so keep draining while it runs.
			go func() { _ = u.source.Stop() }()
			continue
		}
		u.stats.Chunks++
		u.stats.Bytes += int64(len(chunk))
		if u.opts.DebugAudioDump {
			u.pcm = append(u.pcm, chunk...)
		}
	}

	u.writeDebugAudio()

	if u.sendErr != nil {
		return
	}
	if err := u.sender.SendControl(protocol.ControlEndOfStream); err != nil {
		u.sendErr = fmt.Errorf("send end of stream: %w", err)
		return
	}

	select {
	case <-u.stopped:
		return
	default:
	}
	if err := u.source.Err(); err != nil && u.opts.OnCaptureError != nil {
		u.opts.OnCaptureError(err)
	}
}

// Recorder starts Pulse captures for granted microphones.
type Recorder struct {
	Capture audio.CaptureOptions
}

// Start opens a capture on the granted microphone.
func (r Recorder) Start(ctx context.Context, grant media.Grant) (Source, error) {
	capture, err := audio.StartCapture(ctx, grant.Microphone, r.Capture)
	if err != nil {
		return nil, err
	}
	return capture, nil
}

// DescribeDevice formats device metadata for logs.
func DescribeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func (u *Uplink) writeDebugAudio() {
	if !u.opts.DebugAudioDump || len(u.pcm) == 0 {
		return
	}
	file, err := createDebugFile("answer", "wav")
	if err != nil {
		u.opts.Logger.Warn("unable to create debug audio dump", "error", err.Error())
		return
	}
	defer file.Close()

	if _, err := file.Write(audio.EncodeWAV(u.pcm, u.opts.SampleRate)); err != nil {
		u.opts.Logger.Warn("unable to write debug audio dump", "error", err.Error())
	}
}

// createDebugFile creates timestamped debug artifacts under state/vocahire/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "vocahire", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
