package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/vocahire.jsonc", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/vocahire.jsonc", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
		wantArgs []string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "valid cancel command",
			args:     []string{"cancel"},
			wantCmd:  CommandCancel,
			wantHelp: false,
		},
		{
			name:     "summary with session id",
			args:     []string{"summary", "abc-123"},
			wantCmd:  CommandSummary,
			wantArgs: []string{"abc-123"},
		},
		{
			name:    "summary without session id",
			args:    []string{"summary"},
			wantErr: "usage: summary SESSION_ID",
		},
		{
			name:    "summary with two ids",
			args:    []string{"summary", "a", "b"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "history without id",
			args:    []string{"history"},
			wantCmd: CommandHistory,
		},
		{
			name:     "history with id and config",
			args:     []string{"--config", "/tmp/cfg", "history", "abc"},
			wantCmd:  CommandHistory,
			wantPath: "/tmp/cfg",
			wantArgs: []string{"abc"},
		},
		{
			name:    "interview commands",
			args:    []string{"end"},
			wantCmd: CommandEnd,
		},
		{
			name:     "valid stop with config",
			args:     []string{"--config", "/tmp/cfg", "stop"},
			wantCmd:  CommandStop,
			wantHelp: false,
			wantPath: "/tmp/cfg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			if len(tc.wantArgs) == 0 {
				require.Empty(t, parsed.Args)
			} else {
				require.Equal(t, tc.wantArgs, parsed.Args)
			}
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("vocahire")
	for _, want := range []string{"start", "record", "toggle", "end", "retry", "summary SESSION_ID", "history", "doctor", "--config PATH"} {
		require.Contains(t, text, want)
	}
}

func TestForwardedCommands(t *testing.T) {
	for _, cmd := range []Command{CommandRecord, CommandStop, CommandToggle, CommandEnd, CommandRetry, CommandReset, CommandCancel, CommandStatus, CommandTranscript} {
		require.True(t, cmd.Forwarded(), cmd)
	}
	for _, cmd := range []Command{CommandStart, CommandSummary, CommandHistory, CommandDevices, CommandDoctor, CommandVersion, CommandHelp} {
		require.False(t, cmd.Forwarded(), cmd)
	}
}
