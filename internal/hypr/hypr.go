// Package hypr wraps the hyprctl calls used for on-screen interview status.
package hypr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Icon is hyprctl's numeric notification icon.
type Icon int

const (
	IconWarning Icon = iota
	IconInfo
	IconHint
	IconError
	IconConfused
	IconOK
)

const (
	defaultColor   = "rgb(89b4fa)"
	defaultTimeout = 1200 * time.Millisecond
)

// Notice is one `hyprctl dispatch notify` payload.
type Notice struct {
	Icon    Icon
	Timeout time.Duration
	Color   string
	Text    string
}

func (n Notice) args() []string {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = defaultColor
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return []string{
		"--quiet", "dispatch", "notify",
		strconv.Itoa(int(n.Icon)),
		strconv.FormatInt(timeout.Milliseconds(), 10),
		color,
		n.Text,
	}
}

// Notify shows n through the compositor.
func Notify(ctx context.Context, n Notice) error {
	_, err := hyprctl(ctx, n.args()...)
	return err
}

// DismissNotify dismisses active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	_, err := hyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
	return err
}

// QueryFocusedMonitor returns the focused monitor name, or the first monitor
// when none reports focus. doctor uses it to prove the compositor answers.
func QueryFocusedMonitor(ctx context.Context) (string, error) {
	out, err := hyprctl(ctx, "-j", "monitors")
	if err != nil {
		return "", err
	}

	var monitors []struct {
		Name    string `json:"name"`
		Focused bool   `json:"focused"`
	}
	if err := json.Unmarshal(out, &monitors); err != nil {
		return "", fmt.Errorf("decode hyprctl monitors json: %w", err)
	}
	if len(monitors) == 0 {
		return "", errors.New("hyprctl monitors returned no outputs")
	}
	name := monitors[0].Name
	for _, mon := range monitors {
		if mon.Focused {
			name = mon.Name
			break
		}
	}
	return strings.TrimSpace(name), nil
}

func hyprctl(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err == nil {
		return out, nil
	}
	if detail := strings.TrimSpace(string(out)); detail != "" {
		return nil, fmt.Errorf("hyprctl %s: %w (%s)", strings.Join(args, " "), err, detail)
	}
	return nil, fmt.Errorf("hyprctl %s: %w", strings.Join(args, " "), err)
}
