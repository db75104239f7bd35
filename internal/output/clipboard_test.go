package output

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/session"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
	"github.com/stretchr/testify/require"
)

func sampleOutcome() session.Outcome {
	score := 0.8
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return session.Outcome{
		SessionID:  "s-1",
		StartedAt:  started,
		EndedAt:    started.Add(3 * time.Minute),
		EndReason:  session.EndedByAI,
		FinalState: fsm.StateSummaryDisplayed,
		Transcript: []transcript.Message{
			{ID: "m1", Speaker: transcript.SpeakerAI, Text: "Why Go?", Timestamp: started},
		},
		Summary: &summary.Summary{
			SessionID:          "s-1",
			Evaluation:         &summary.Evaluation{OverallScore: &score},
			TipsForImprovement: []string{"Slow down"},
		},
	}
}

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from vocahire")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from vocahire", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestPublisherWritesReportAndClipboard(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	exportDir := filepath.Join(t.TempDir(), "reports")

	cfg := config.ExportConfig{
		Dir:       exportDir,
		Clipboard: config.CommandConfig{Argv: []string{scriptPath, clipboardPath}},
	}
	require.NoError(t, NewPublisher(cfg, nil).Commit(context.Background(), sampleOutcome()))

	reportPath := filepath.Join(exportDir, "s-1.json")
	stat, err := os.Stat(reportPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), stat.Mode().Perm())

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Equal(t, "s-1", report.SessionID)
	require.Equal(t, "ai", report.EndReason)
	require.Equal(t, "summary_displayed", report.FinalState)
	require.Len(t, report.Transcript, 1)
	require.InDelta(t, 0.8, report.Summary.Overall(), 1e-9)

	clip, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Contains(t, string(clip), "overall: 80%")
	require.Contains(t, string(clip), "Interviewer: Why Go?")
}

func TestPublisherFailedOutcomeSkipsClipboard(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	exportDir := t.TempDir()

	outcome := sampleOutcome()
	outcome.Summary = nil
	outcome.FinalState = fsm.StateError
	outcome.Err = errors.New("HTTP 500: boom")

	cfg := config.ExportConfig{
		Dir:       exportDir,
		Clipboard: config.CommandConfig{Argv: []string{scriptPath, clipboardPath}},
	}
	require.NoError(t, NewPublisher(cfg, nil).Commit(context.Background(), outcome))

	raw, err := os.ReadFile(filepath.Join(exportDir, "s-1.json"))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"error": "HTTP 500: boom"`)

	_, statErr := os.Stat(clipboardPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestPublisherReturnsErrorWhenClipboardCommandFails(t *testing.T) {
	cfg := config.ExportConfig{
		Clipboard: config.CommandConfig{Argv: []string{writeFailScript(t, "clipboard failed")}},
	}
	err := NewPublisher(cfg, nil).Commit(context.Background(), sampleOutcome())
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
}

func TestPublisherUnconfiguredIsNoop(t *testing.T) {
	require.NoError(t, NewPublisher(config.ExportConfig{}, nil).Commit(context.Background(), sampleOutcome()))
	require.NoError(t, NewPublisher(config.ExportConfig{Dir: t.TempDir()}, nil).Commit(context.Background(), session.Outcome{}))
}

func TestWriteReportConfinesSessionIDToDir(t *testing.T) {
	dir := t.TempDir()
	path, err := writeReport(dir, Report{SessionID: "../../etc/passwd"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "passwd.json"), path)
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho " + "\"" + message + "\"" + " >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
