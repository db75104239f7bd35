// Package cli parses vocahire command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandStart      Command = "start"
	CommandRecord     Command = "record"
	CommandStop       Command = "stop"
	CommandToggle     Command = "toggle"
	CommandEnd        Command = "end"
	CommandRetry      Command = "retry"
	CommandReset      Command = "reset"
	CommandCancel     Command = "cancel"
	CommandStatus     Command = "status"
	CommandTranscript Command = "transcript"
	CommandSummary    Command = "summary"
	CommandHistory    Command = "history"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

// argSpec is the number of positional arguments a command accepts.
type argSpec struct {
	min, max int
	usage    string
}

var validCommands = map[Command]argSpec{
	CommandStart:      {},
	CommandRecord:     {},
	CommandStop:       {},
	CommandToggle:     {},
	CommandEnd:        {},
	CommandRetry:      {},
	CommandReset:      {},
	CommandCancel:     {},
	CommandStatus:     {},
	CommandTranscript: {},
	CommandSummary:    {min: 1, max: 1, usage: "summary SESSION_ID"},
	CommandHistory:    {max: 1, usage: "history [SESSION_ID]"},
	CommandDevices:    {},
	CommandDoctor:     {},
	CommandVersion:    {},
	CommandHelp:       {},
}

// Forwarded reports whether the command is sent to a running session owner.
func (c Command) Forwarded() bool {
	switch c {
	case CommandRecord, CommandStop, CommandToggle, CommandEnd, CommandRetry,
		CommandReset, CommandCancel, CommandStatus, CommandTranscript:
		return true
	default:
		return false
	}
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			rule, ok := validCommands[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			rest := args[i+1:]
			for _, extra := range rest {
				if strings.HasPrefix(extra, "-") {
					return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
				}
			}
			if len(rest) > rule.max {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
			if len(rest) < rule.min {
				return Parsed{}, fmt.Errorf("usage: %s", rule.usage)
			}

			parsed.Command = cmd
			parsed.Args = rest
			parsed.ShowHelp = cmd == CommandHelp
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Session:
  start        Start an interview and own it until the summary is shown
  record       Start recording an answer (interrupts the interviewer)
  stop         Stop recording and send the answer
  toggle       Trigger the primary action for the current state
  end          End the interview and fetch the summary
  retry        Restart after a permission or session error
  reset        Abandon the session and return to idle
  cancel       Stop the session owner
  status       Print current state
  transcript   Print the live transcript

Results:
  summary SESSION_ID     Fetch a summary from the interview server
  history [SESSION_ID]   List past interviews, or show one transcript

Tools:
  devices      List available input devices
  doctor       Run configuration and environment checks
  version      Print version information
  help         Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/vocahire/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
