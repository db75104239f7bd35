package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment overrides applied after the file is parsed.
const (
	EnvChannelURL = "VOCAHIRE_CHANNEL_URL"
	EnvAPIURL     = "VOCAHIRE_API_URL"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}
		cfg := ApplyEnv(base, os.LookupEnv)
		warnings, err := Validate(cfg)
		if err != nil {
			return Loaded{}, fmt.Errorf("validate config: %w", err)
		}
		warnings = append([]Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		}}, warnings...)
		return Loaded{Path: resolvedPath, Config: cfg, Warnings: warnings}, nil
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	cfg = ApplyEnv(cfg, os.LookupEnv)
	if _, err := Validate(cfg); err != nil {
		return Loaded{}, fmt.Errorf("validate config: %w", err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// ApplyEnv overlays server endpoints from the environment.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if v, ok := lookup(EnvChannelURL); ok && strings.TrimSpace(v) != "" {
		cfg.Server.ChannelURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.Server.APIURL = strings.TrimSpace(v)
	}
	return cfg
}
