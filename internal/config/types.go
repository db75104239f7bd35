// Package config resolves, parses, validates, and defaults vocahire configuration.
package config

// Config is the fully materialized runtime configuration.
type Config struct {
	Server    ServerConfig
	Media     MediaConfig
	Capture   CaptureConfig
	Playback  PlaybackConfig
	Protocol  ProtocolConfig
	Turn      TurnConfig
	Indicator IndicatorConfig
	Status    StatusConfig
	Archive   ArchiveConfig
	Export    ExportConfig
	Debug     DebugConfig
}

// ServerConfig locates the remote interview server.
type ServerConfig struct {
	ChannelURL         string
	APIURL             string
	HealthPath         string
	HandshakeTimeoutMS int
	RequestTimeoutMS   int
}

// MediaConfig controls microphone selection and the camera probe.
type MediaConfig struct {
	Input        string
	Fallback     string
	RequireVideo bool
	VideoDevice  string
}

// CaptureConfig sizes outbound audio chunks.
type CaptureConfig struct {
	SampleRate int
	ChunkMS    int
}

// PlaybackConfig controls the inbound audio queue.
type PlaybackConfig struct {
	PrebufferChunks int
	HighWaterChunks int
	// SampleRate applies to raw PCM buffers that carry no WAV header.
	SampleRate int
}

// ProtocolConfig selects the outbound control encoding.
type ProtocolConfig struct {
	Wire string
}

// TurnConfig selects how the AI hands the turn to the candidate.
type TurnConfig struct {
	Handoff string
}

// IndicatorConfig controls notifications and audio cues.
type IndicatorConfig struct {
	Enable            bool
	Backend           string
	DesktopAppName    string
	SoundEnable       bool
	SoundStartFile    string
	SoundStopFile     string
	SoundTurnFile     string
	SoundCompleteFile string
	ErrorTimeoutMS    int
}

// StatusConfig controls the local HTTP status server. Empty Addr disables it.
type StatusConfig struct {
	Addr string
}

// ArchiveConfig controls the local sqlite session history.
type ArchiveConfig struct {
	Enable bool
	Path   string
}

// ExportConfig controls where finished interview reports go.
type ExportConfig struct {
	Dir       string
	Clipboard CommandConfig
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}

const (
	HandoffHeuristic = "heuristic"
	HandoffExplicit  = "explicit"
	HandoffBoth      = "both"
)
