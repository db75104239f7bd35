package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty channel url", mutate: func(c *Config) { c.Server.ChannelURL = " " }, wantErr: "server.channel_url must not be empty"},
		{name: "channel scheme", mutate: func(c *Config) { c.Server.ChannelURL = "ftp://host" }, wantErr: "server.channel_url scheme"},
		{name: "api websocket scheme", mutate: func(c *Config) { c.Server.APIURL = "ws://host" }, wantErr: "server.api_url scheme"},
		{name: "api missing host", mutate: func(c *Config) { c.Server.APIURL = "http://" }, wantErr: "must include a host"},
		{name: "health path", mutate: func(c *Config) { c.Server.HealthPath = "ready" }, wantErr: "start with '/'"},
		{name: "handshake timeout", mutate: func(c *Config) { c.Server.HandshakeTimeoutMS = 0 }, wantErr: "handshake_timeout_ms"},
		{name: "request timeout", mutate: func(c *Config) { c.Server.RequestTimeoutMS = -1 }, wantErr: "request_timeout_ms"},
		{name: "video device", mutate: func(c *Config) { c.Media.VideoDevice = "" }, wantErr: "media.video_device"},
		{name: "chunk size", mutate: func(c *Config) { c.Capture.ChunkMS = 5000 }, wantErr: "capture.chunk_ms"},
		{name: "prebuffer", mutate: func(c *Config) { c.Playback.PrebufferChunks = 0 }, wantErr: "prebuffer_chunks"},
		{name: "high water", mutate: func(c *Config) { c.Playback.HighWaterChunks = 0 }, wantErr: "high_water_chunks"},
		{name: "wire", mutate: func(c *Config) { c.Protocol.Wire = "grpc" }, wantErr: "protocol.wire"},
		{name: "handoff", mutate: func(c *Config) { c.Turn.Handoff = "never" }, wantErr: "turn.handoff"},
		{name: "backend", mutate: func(c *Config) { c.Indicator.Backend = "tray" }, wantErr: "indicator.backend"},
		{name: "desktop app name", mutate: func(c *Config) { c.Indicator.DesktopAppName = "" }, wantErr: "desktop_app_name"},
		{name: "error timeout", mutate: func(c *Config) { c.Indicator.ErrorTimeoutMS = -1 }, wantErr: "error_timeout_ms"},
		{name: "clipboard", mutate: func(c *Config) { c.Export.Clipboard = CommandConfig{Raw: "# disabled"} }, wantErr: "export.clipboard_cmd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnAudioDump(t *testing.T) {
	cfg := Default()
	cfg.Debug.EnableAudioDump = true
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "audio_dump")
}
