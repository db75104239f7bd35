// Package output publishes finished interview reports (JSON file and clipboard).
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/session"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
)

// Report is the exported JSON document for one interview.
type Report struct {
	SessionID  string               `json:"session_id"`
	StartedAt  time.Time            `json:"started_at"`
	EndedAt    time.Time            `json:"ended_at"`
	EndReason  string               `json:"end_reason"`
	FinalState string               `json:"final_state"`
	Error      string               `json:"error,omitempty"`
	Summary    *summary.Summary     `json:"summary,omitempty"`
	Transcript []transcript.Message `json:"transcript"`
}

// Publisher applies report side effects for a finished interview.
type Publisher struct {
	config config.ExportConfig
	logger *slog.Logger
}

// NewPublisher constructs a report publisher from runtime config.
func NewPublisher(cfg config.ExportConfig, logger *slog.Logger) *Publisher {
	return &Publisher{config: cfg, logger: logger}
}

// Commit writes <dir>/<session_id>.json and pipes the text report into the
// clipboard command. Either step is skipped when unconfigured.
func (p *Publisher) Commit(ctx context.Context, outcome session.Outcome) error {
	if strings.TrimSpace(outcome.SessionID) == "" {
		return nil
	}

	var errs []error
	if dir := strings.TrimSpace(p.config.Dir); dir != "" {
		path, err := writeReport(dir, newReport(outcome))
		if err != nil {
			errs = append(errs, err)
		} else if p.logger != nil {
			p.logger.Info("interview report exported", "session_id", outcome.SessionID, "path", path)
		}
	}

	if len(p.config.Clipboard.Argv) > 0 && outcome.Summary != nil {
		clipboardCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := runCommandWithInput(clipboardCtx, p.config.Clipboard.Argv, TextReport(outcome)); err != nil {
			errs = append(errs, fmt.Errorf("set clipboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

// TextReport renders the summary followed by the transcript.
func TextReport(outcome session.Outcome) string {
	var b bytes.Buffer
	_ = summary.Render(&b, outcome.Summary)
	if len(outcome.Transcript) > 0 {
		b.WriteString("\nTranscript\n")
		_ = transcript.Render(&b, outcome.Transcript)
	}
	return b.String()
}

func newReport(outcome session.Outcome) Report {
	report := Report{
		SessionID:  outcome.SessionID,
		StartedAt:  outcome.StartedAt,
		EndedAt:    outcome.EndedAt,
		EndReason:  string(outcome.EndReason),
		FinalState: string(outcome.FinalState),
		Summary:    outcome.Summary,
		Transcript: outcome.Transcript,
	}
	if outcome.Err != nil {
		report.Error = outcome.Err.Error()
	}
	if report.Transcript == nil {
		report.Transcript = []transcript.Message{}
	}
	return report
}

func writeReport(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := filepath.Base(filepath.Clean("/" + report.SessionID))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid session id %q for export", report.SessionID)
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, append(payload, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
