package config

import (
	"fmt"
	"strings"
)

// fileConfig is the on-disk shape shared by the JSONC and YAML formats.
// Pointer fields distinguish "unset" from zero values.
type fileConfig struct {
	Server    *fileServer    `json:"server" yaml:"server"`
	Media     *fileMedia     `json:"media" yaml:"media"`
	Capture   *fileCapture   `json:"capture" yaml:"capture"`
	Playback  *filePlayback  `json:"playback" yaml:"playback"`
	Protocol  *fileProtocol  `json:"protocol" yaml:"protocol"`
	Turn      *fileTurn      `json:"turn" yaml:"turn"`
	Indicator *fileIndicator `json:"indicator" yaml:"indicator"`
	Status    *fileStatus    `json:"status" yaml:"status"`
	Archive   *fileArchive   `json:"archive" yaml:"archive"`
	Export    *fileExport    `json:"export" yaml:"export"`
	Debug     *fileDebug     `json:"debug" yaml:"debug"`
}

type fileServer struct {
	ChannelURL         *string `json:"channel_url" yaml:"channel_url"`
	APIURL             *string `json:"api_url" yaml:"api_url"`
	HealthPath         *string `json:"health_path" yaml:"health_path"`
	HandshakeTimeoutMS *int    `json:"handshake_timeout_ms" yaml:"handshake_timeout_ms"`
	RequestTimeoutMS   *int    `json:"request_timeout_ms" yaml:"request_timeout_ms"`
}

type fileMedia struct {
	Input        *string `json:"input" yaml:"input"`
	Fallback     *string `json:"fallback" yaml:"fallback"`
	RequireVideo *bool   `json:"require_video" yaml:"require_video"`
	VideoDevice  *string `json:"video_device" yaml:"video_device"`
}

type fileCapture struct {
	SampleRate *int `json:"sample_rate" yaml:"sample_rate"`
	ChunkMS    *int `json:"chunk_ms" yaml:"chunk_ms"`
}

type filePlayback struct {
	PrebufferChunks *int `json:"prebuffer_chunks" yaml:"prebuffer_chunks"`
	HighWaterChunks *int `json:"high_water_chunks" yaml:"high_water_chunks"`
	SampleRate      *int `json:"sample_rate" yaml:"sample_rate"`
}

type fileProtocol struct {
	Wire *string `json:"wire" yaml:"wire"`
}

type fileTurn struct {
	Handoff *string `json:"handoff" yaml:"handoff"`
}

type fileIndicator struct {
	Enable            *bool   `json:"enable" yaml:"enable"`
	Backend           *string `json:"backend" yaml:"backend"`
	DesktopAppName    *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundEnable       *bool   `json:"sound_enable" yaml:"sound_enable"`
	SoundStartFile    *string `json:"sound_start_file" yaml:"sound_start_file"`
	SoundStopFile     *string `json:"sound_stop_file" yaml:"sound_stop_file"`
	SoundTurnFile     *string `json:"sound_turn_file" yaml:"sound_turn_file"`
	SoundCompleteFile *string `json:"sound_complete_file" yaml:"sound_complete_file"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
}

type fileStatus struct {
	Addr *string `json:"addr" yaml:"addr"`
}

type fileArchive struct {
	Enable *bool   `json:"enable" yaml:"enable"`
	Path   *string `json:"path" yaml:"path"`
}

type fileExport struct {
	Dir          *string `json:"dir" yaml:"dir"`
	ClipboardCmd *string `json:"clipboard_cmd" yaml:"clipboard_cmd"`
}

type fileDebug struct {
	AudioDump *bool `json:"audio_dump" yaml:"audio_dump"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func (payload fileConfig) applyTo(cfg *Config) error {
	if s := payload.Server; s != nil {
		setString(&cfg.Server.ChannelURL, s.ChannelURL)
		setString(&cfg.Server.APIURL, s.APIURL)
		setString(&cfg.Server.HealthPath, s.HealthPath)
		setInt(&cfg.Server.HandshakeTimeoutMS, s.HandshakeTimeoutMS)
		setInt(&cfg.Server.RequestTimeoutMS, s.RequestTimeoutMS)
	}

	if m := payload.Media; m != nil {
		setString(&cfg.Media.Input, m.Input)
		setString(&cfg.Media.Fallback, m.Fallback)
		setBool(&cfg.Media.RequireVideo, m.RequireVideo)
		setString(&cfg.Media.VideoDevice, m.VideoDevice)
	}

	if c := payload.Capture; c != nil {
		setInt(&cfg.Capture.SampleRate, c.SampleRate)
		setInt(&cfg.Capture.ChunkMS, c.ChunkMS)
	}

	if p := payload.Playback; p != nil {
		setInt(&cfg.Playback.PrebufferChunks, p.PrebufferChunks)
		setInt(&cfg.Playback.HighWaterChunks, p.HighWaterChunks)
		setInt(&cfg.Playback.SampleRate, p.SampleRate)
	}

	if payload.Protocol != nil {
		setString(&cfg.Protocol.Wire, payload.Protocol.Wire)
	}
	if payload.Turn != nil {
		setString(&cfg.Turn.Handoff, payload.Turn.Handoff)
	}

	if ind := payload.Indicator; ind != nil {
		setBool(&cfg.Indicator.Enable, ind.Enable)
		setString(&cfg.Indicator.Backend, ind.Backend)
		setString(&cfg.Indicator.DesktopAppName, ind.DesktopAppName)
		setBool(&cfg.Indicator.SoundEnable, ind.SoundEnable)
		setString(&cfg.Indicator.SoundStartFile, ind.SoundStartFile)
		setString(&cfg.Indicator.SoundStopFile, ind.SoundStopFile)
		setString(&cfg.Indicator.SoundTurnFile, ind.SoundTurnFile)
		setString(&cfg.Indicator.SoundCompleteFile, ind.SoundCompleteFile)
		setInt(&cfg.Indicator.ErrorTimeoutMS, ind.ErrorTimeoutMS)
	}

	if payload.Status != nil {
		setString(&cfg.Status.Addr, payload.Status.Addr)
	}

	if a := payload.Archive; a != nil {
		setBool(&cfg.Archive.Enable, a.Enable)
		setString(&cfg.Archive.Path, a.Path)
	}

	if e := payload.Export; e != nil {
		setString(&cfg.Export.Dir, e.Dir)
		if e.ClipboardCmd != nil {
			raw := *e.ClipboardCmd
			argv, err := splitCommand(raw)
			if err != nil {
				return fmt.Errorf("invalid export.clipboard_cmd: %w", err)
			}
			cfg.Export.Clipboard = CommandConfig{Raw: raw, Argv: argv}
		}
	}

	if payload.Debug != nil {
		setBool(&cfg.Debug.EnableAudioDump, payload.Debug.AudioDump)
	}

	return nil
}
