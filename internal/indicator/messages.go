package indicator

import (
	"os"
	"strings"
	"time"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/hypr"
)

const (
	colorNeutral   = "rgb(89b4fa)"
	colorReady     = "rgb(a6e3a1)"
	colorRecording = "rgb(f38ba8)"

	// Status notices stay up until the next state replaces them.
	statusTimeout = 5 * time.Minute
)

type locale string

const (
	localeEnglish locale = "en"
)

type messages struct {
	states    map[fsm.State]string
	errorText string
}

func indicatorMessagesFromEnv() messages {
	return indicatorMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func indicatorMessages(tag locale) messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return messages{
			states: map[fsm.State]string{
				fsm.StateRequestingPermissions: "Checking microphone and camera…",
				fsm.StateConnecting:            "Connecting to interviewer…",
				fsm.StateSessionReady:          "Waiting for interviewer…",
				fsm.StateAITurn:                "Interviewer speaking…",
				fsm.StateReadyToListen:         "Your turn: start recording",
				fsm.StateUserTurn:              "Recording…",
				fsm.StateUserTurnProcessing:    "Processing answer…",
				fsm.StateFetchingSummary:       "Fetching interview summary…",
				fsm.StateSummaryDisplayed:      "Interview complete",
			},
			errorText: "Interview error",
		}
	}
}

// noticeFor returns the notification for state, or false when the state has
// no on-screen status.
func (m messages) noticeFor(state fsm.State) (hypr.Notice, bool) {
	text, ok := m.states[state]
	if !ok {
		return hypr.Notice{}, false
	}
	n := hypr.Notice{Icon: hypr.IconInfo, Timeout: statusTimeout, Color: colorNeutral, Text: text}
	switch state {
	case fsm.StateUserTurn:
		n.Color = colorRecording
	case fsm.StateReadyToListen:
		n.Icon, n.Color = hypr.IconOK, colorReady
	case fsm.StateSummaryDisplayed:
		n.Icon, n.Color, n.Timeout = hypr.IconOK, colorReady, 4*time.Second
	}
	return n, true
}
