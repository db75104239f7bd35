package config

// Default returns the local-development configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ChannelURL:         "ws://localhost:8000",
			APIURL:             "http://localhost:8000",
			HealthPath:         "/",
			HandshakeTimeoutMS: 10000,
			RequestTimeoutMS:   30000,
		},
		Media: MediaConfig{
			Input:        "default",
			Fallback:     "default",
			RequireVideo: true,
			VideoDevice:  "/dev/video0",
		},
		Capture: CaptureConfig{
			SampleRate: 16000,
			ChunkMS:    20,
		},
		Playback: PlaybackConfig{
			PrebufferChunks: 1,
			HighWaterChunks: 8,
			SampleRate:      24000,
		},
		Protocol: ProtocolConfig{Wire: "legacy"},
		Turn:     TurnConfig{Handoff: HandoffBoth},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "desktop",
			DesktopAppName: "vocahire",
			SoundEnable:    true,
			ErrorTimeoutMS: 4000,
		},
		Archive: ArchiveConfig{Enable: true},
	}
}
