package hypr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueryFocusedMonitor(t *testing.T) {
	installHyprctlStub(t, `
if [[ "${1:-}" == "-j" && "${2:-}" == "monitors" ]]; then
  echo '[{"name":"HDMI-A-1","focused":false},{"name":" DP-1 ","focused":true}]'
  exit 0
fi
exit 1
`)

	monitor, err := QueryFocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "DP-1", monitor)
}

func TestQueryFocusedMonitorFallsBackToFirst(t *testing.T) {
	installHyprctlStub(t, `
echo '[{"name":"eDP-1","focused":false}]'
`)

	monitor, err := QueryFocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eDP-1", monitor)
}

func TestQueryFocusedMonitorRejectsMalformedJSON(t *testing.T) {
	installHyprctlStub(t, `
echo 'not json'
`)

	_, err := QueryFocusedMonitor(context.Background())
	require.ErrorContains(t, err, "decode hyprctl monitors json")
}

func TestQueryFocusedMonitorRejectsEmptyList(t *testing.T) {
	installHyprctlStub(t, `
echo '[]'
`)

	_, err := QueryFocusedMonitor(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no outputs")
}

func TestNotifyAndDismissUseHyprctlDispatch(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	err := Notify(context.Background(), Notice{Icon: IconError, Text: "Interview error"})
	require.NoError(t, err)
	err = Notify(context.Background(), Notice{Icon: IconOK, Timeout: 4 * time.Second, Color: "rgb(a6e3a1)", Text: "Interview complete"})
	require.NoError(t, err)

	err = DismissNotify(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{
		"--quiet dispatch notify 3 1200 rgb(89b4fa) Interview error",
		"--quiet dispatch notify 5 4000 rgb(a6e3a1) Interview complete",
		"--quiet dispatch dismissnotify",
	}, lines)
}

func TestNotifyReturnsCombinedOutputOnFailure(t *testing.T) {
	installHyprctlStub(t, `
echo 'boom from hyprctl' >&2
exit 1
`)

	err := Notify(context.Background(), Notice{Icon: IconInfo, Timeout: time.Second, Text: "x"})
	require.ErrorContains(t, err, "boom from hyprctl")
	require.ErrorContains(t, err, "hyprctl --quiet dispatch notify 1 1000")
}

func installHyprctlStub(t *testing.T, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hyprctl")
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
