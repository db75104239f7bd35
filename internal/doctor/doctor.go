// Package doctor runs runtime readiness diagnostics for config, tools, audio,
// and the interview server.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/channel"
	"github.com/anshc022/vocahire/internal/config"
	"github.com/anshc022/vocahire/internal/hypr"
	"github.com/anshc022/vocahire/internal/summary"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkChannelURL(cfg.Config.Server))
	checks = append(checks, checkServerHealth(ctx, cfg.Config.Server))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config.Media))
	if cfg.Config.Media.RequireVideo {
		checks = append(checks, checkCamera(cfg.Config.Media.VideoDevice))
	}

	if len(cfg.Config.Export.Clipboard.Argv) > 0 {
		checks = append(checks, checkCommand(cfg.Config.Export.Clipboard.Argv, "clipboard_cmd"))
	}

	if cfg.Config.Indicator.Enable {
		switch cfg.Config.Indicator.Backend {
		case "hypr":
			checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
				return strings.TrimSpace(v) != ""
			}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))
			checks = append(checks, checkHyprland(ctx))
		default:
			checks = append(checks, checkBinary("busctl", "desktop notifications use busctl"))
		}
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.MediaConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

func checkCamera(device string) Check {
	device = strings.TrimSpace(device)
	if device == "" {
		return Check{Name: "media.camera", Pass: false, Message: "video_device is empty"}
	}
	info, err := os.Stat(device)
	if err != nil {
		return Check{Name: "media.camera", Pass: false, Message: err.Error()}
	}
	if info.IsDir() {
		return Check{Name: "media.camera", Pass: false, Message: fmt.Sprintf("%s is a directory", device)}
	}
	return Check{Name: "media.camera", Pass: true, Message: fmt.Sprintf("found %s", device)}
}

func checkChannelURL(cfg config.ServerConfig) Check {
	target, err := channel.SessionURL(cfg.ChannelURL, "SESSION_ID")
	if err != nil {
		return Check{Name: "server.channel", Pass: false, Message: err.Error()}
	}
	return Check{Name: "server.channel", Pass: true, Message: fmt.Sprintf("sessions open %s", target)}
}

// checkServerHealth probes the interview server's health endpoint.
func checkServerHealth(ctx context.Context, cfg config.ServerConfig) Check {
	client := summary.NewClient(cfg.APIURL, cfg.HealthPath, probeTimeout)
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	url := strings.TrimRight(cfg.APIURL, "/") + cfg.HealthPath
	if err := client.Health(ctx); err != nil {
		return Check{Name: "server.health", Pass: false, Message: fmt.Sprintf("%s: %v", url, err)}
	}
	return Check{Name: "server.health", Pass: true, Message: fmt.Sprintf("reachable at %s", url)}
}

func checkHyprland(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	monitor, err := hypr.QueryFocusedMonitor(ctx)
	if err != nil {
		return Check{Name: "hyprctl", Pass: false, Message: err.Error()}
	}
	return Check{Name: "hyprctl", Pass: true, Message: fmt.Sprintf("focused monitor %q", monitor)}
}
