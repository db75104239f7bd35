package transcript

import (
	"fmt"
	"io"
	"strings"
)

var speakerLabels = map[Speaker]string{
	SpeakerUser:    "You",
	SpeakerAI:      "Interviewer",
	SpeakerSystem:  "System",
	SpeakerPartial: "You (live)",
}

// Label returns the display label for a speaker.
func (s Speaker) Label() string {
	if label, ok := speakerLabels[s]; ok {
		return label
	}
	return string(s)
}

// Render writes messages as "[hh:mm:ss] Label: text" lines.
func Render(w io.Writer, messages []Message) error {
	for _, msg := range messages {
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Speaker.Label(), msg.Text); err != nil {
			return err
		}
	}
	return nil
}

// String renders messages to a string.
func String(messages []Message) string {
	var b strings.Builder
	_ = Render(&b, messages)
	return b.String()
}
