package indicator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	mu    sync.Mutex
	clips []audio.Clip
}

func (p *recordingPlayer) Play(_ context.Context, clip audio.Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clips = append(p.clips, clip)
	return nil
}

func hyprConfig() config.IndicatorConfig {
	cfg := config.Default().Indicator
	cfg.Backend = "hypr"
	cfg.SoundEnable = false
	cfg.Enable = true
	return cfg
}

func TestNotifierDispatchesStatesThroughHyprctl(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	cfg := hyprConfig()
	cfg.ErrorTimeoutMS = 1600

	notify := NewNotifier(cfg, nil)
	notify.messages = indicatorMessages(localeEnglish)
	notify.ShowState(context.Background(), fsm.StateUserTurn)
	notify.ShowState(context.Background(), fsm.StateUserTurn)
	notify.ShowState(context.Background(), fsm.StateIdle)
	notify.ShowError(context.Background(), "")
	notify.Hide(context.Background())

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "--quiet dispatch notify 1 300000 rgb(f38ba8) Recording…", lines[0])
	require.Equal(t, "--quiet dispatch notify 3 1600 rgb(f38ba8) Interview error", lines[1])
	require.Equal(t, "--quiet dispatch dismissnotify", lines[2])
}

func TestNotifierShowErrorUsesProvidedTextAndDefaultTimeout(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	cfg := hyprConfig()
	cfg.ErrorTimeoutMS = 0

	notify := NewNotifier(cfg, nil)
	notify.ShowError(context.Background(), "channel closed (code 1006): abnormal closure")

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "--quiet dispatch notify 3 1200 rgb(f38ba8) channel closed (code 1006): abnormal closure\n", string(data))
}

func TestNotifierDisabledSkipsDispatch(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	cfg := hyprConfig()
	cfg.Enable = false

	notify := NewNotifier(cfg, nil)
	notify.ShowState(context.Background(), fsm.StateAITurn)
	notify.ShowError(context.Background(), "ignored")
	notify.Hide(context.Background())

	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestNotifierDesktopBackendReplacesNotification(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installStub(t, "busctl", `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
if [[ "$*" == *" Notify "* ]]; then
  echo 'u 42'
fi
`)

	cfg := hyprConfig()
	cfg.Backend = "desktop"

	notify := NewNotifier(cfg, nil)
	notify.messages = indicatorMessages(localeEnglish)
	notify.ShowState(context.Background(), fsm.StateAITurn)
	notify.ShowState(context.Background(), fsm.StateReadyToListen)
	notify.Hide(context.Background())

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Notify susssasa{sv}i vocahire 0  Interviewer speaking…")
	require.Contains(t, lines[1], "Notify susssasa{sv}i vocahire 42  Your turn: start recording")
	require.True(t, strings.HasSuffix(lines[2], "CloseNotification u 42"))
}

func TestNotifierCuesPlayThroughPlayer(t *testing.T) {
	cfg := hyprConfig()
	cfg.Enable = false
	cfg.SoundEnable = true

	player := &recordingPlayer{}
	notify := NewNotifier(cfg, nil)
	notify.player = player

	notify.CueRecordStart(context.Background())
	notify.CueYourTurn(context.Background())
	notify.Wait()

	player.mu.Lock()
	defer player.mu.Unlock()
	require.Len(t, player.clips, 2)
	for _, clip := range player.clips {
		require.Equal(t, cueSampleRate, clip.SampleRate)
		require.NotEmpty(t, clip.Samples)
	}
}

func TestNotifierSoundDisabledSkipsPlayer(t *testing.T) {
	cfg := hyprConfig()
	cfg.Enable = false

	player := &recordingPlayer{}
	notify := NewNotifier(cfg, nil)
	notify.player = player
	notify.CueComplete(context.Background())
	notify.Wait()
	require.Empty(t, player.clips)
}

func installHyprctlStub(t *testing.T, body string) {
	t.Helper()
	installStub(t, "hyprctl", body)
}

func installStub(t *testing.T, name string, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
