package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateURL("server.channel_url", cfg.Server.ChannelURL, "ws", "wss", "http", "https"); err != nil {
		return nil, err
	}
	if err := validateURL("server.api_url", cfg.Server.APIURL, "http", "https"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Server.HealthPath) == "" {
		return nil, fmt.Errorf("server.health_path must not be empty")
	}
	if !strings.HasPrefix(strings.TrimSpace(cfg.Server.HealthPath), "/") {
		return nil, fmt.Errorf("server.health_path must start with '/'")
	}
	if cfg.Server.HandshakeTimeoutMS <= 0 {
		return nil, fmt.Errorf("server.handshake_timeout_ms must be > 0")
	}
	if cfg.Server.RequestTimeoutMS <= 0 {
		return nil, fmt.Errorf("server.request_timeout_ms must be > 0")
	}

	if cfg.Media.RequireVideo && strings.TrimSpace(cfg.Media.VideoDevice) == "" {
		return nil, fmt.Errorf("media.video_device must not be empty when media.require_video=true")
	}
	if !cfg.Media.RequireVideo {
		warnings = append(warnings, Warning{Message: "media.require_video=false; camera access will not be checked"})
	}

	if cfg.Capture.SampleRate <= 0 {
		return nil, fmt.Errorf("capture.sample_rate must be > 0")
	}
	if cfg.Capture.ChunkMS <= 0 || cfg.Capture.ChunkMS > 1000 {
		return nil, fmt.Errorf("capture.chunk_ms must be in 1..1000")
	}

	if cfg.Playback.PrebufferChunks < 1 {
		return nil, fmt.Errorf("playback.prebuffer_chunks must be >= 1")
	}
	if cfg.Playback.HighWaterChunks < cfg.Playback.PrebufferChunks {
		return nil, fmt.Errorf("playback.high_water_chunks must be >= playback.prebuffer_chunks")
	}
	if cfg.Playback.SampleRate <= 0 {
		return nil, fmt.Errorf("playback.sample_rate must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Protocol.Wire)) {
	case "legacy", "envelope":
	default:
		return nil, fmt.Errorf("protocol.wire must be one of: legacy, envelope")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Turn.Handoff)) {
	case HandoffHeuristic, HandoffExplicit, HandoffBoth:
	default:
		return nil, fmt.Errorf("turn.handoff must be one of: heuristic, explicit, both")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if cfg.Export.Clipboard.Raw != "" && len(cfg.Export.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("export.clipboard_cmd is configured but empty")
	}

	if cfg.Debug.EnableAudioDump {
		warnings = append(warnings, Warning{Message: "debug.audio_dump=true; microphone audio will be written to disk"})
	}

	return warnings, nil
}

func validateURL(key, raw string, schemes ...string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%s must not be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	for _, scheme := range schemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return nil
		}
	}
	return fmt.Errorf("%s scheme must be one of: %s", key, strings.Join(schemes, ", "))
}
