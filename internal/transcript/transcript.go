// Package transcript holds the ordered interview conversation shown to the candidate.
package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Speaker attributes a transcript message.
type Speaker string

const (
	SpeakerUser    Speaker = "user"
	SpeakerAI      Speaker = "ai"
	SpeakerSystem  Speaker = "system"
	SpeakerPartial Speaker = "transcription-partial"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-ordered message list with at most one live partial.
//
// A live partial is updated in place until a final marker freezes it. Frozen
// partials of the current user turn stay visible until Finalize replaces them
// with a single user message. Transcript is not safe for concurrent use.
type Transcript struct {
	messages []Message
	live     int
	pending  []string

	now   func() time.Time
	newID func() string
}

// Option customizes a Transcript.
type Option func(*Transcript)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Transcript) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIDs overrides message id generation.
func WithIDs(newID func() string) Option {
	return func(t *Transcript) {
		if newID != nil {
			t.newID = newID
		}
	}
}

// New returns an empty transcript.
func New(opts ...Option) *Transcript {
	t := &Transcript{
		live:  -1,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append adds a message at the end of the transcript. An interviewer message
// closes the user turn: the live partial is frozen and earlier partials are no
// longer replaced by a later Finalize.
func (t *Transcript) Append(speaker Speaker, text string) Message {
	if speaker == SpeakerAI {
		t.live = -1
		t.pending = nil
	}
	msg := Message{
		ID:        t.newID(),
		Speaker:   speaker,
		Text:      Normalize(text),
		Timestamp: t.now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// UpsertPartial updates the live partial in place, or appends a new one when
// none is live. A final partial is frozen and the next partial starts anew.
func (t *Transcript) UpsertPartial(text string, final bool) Message {
	var msg Message
	if t.live >= 0 {
		t.messages[t.live].Text = Normalize(text)
		t.messages[t.live].Timestamp = t.now()
		msg = t.messages[t.live]
	} else {
		msg = t.Append(SpeakerPartial, text)
		t.live = len(t.messages) - 1
		t.pending = append(t.pending, msg.ID)
	}
	if final {
		t.live = -1
	}
	return msg
}

// Finalize removes the partials of the current user turn and appends one
// finalized user message.
func (t *Transcript) Finalize(text string) Message {
	if len(t.pending) > 0 {
		drop := make(map[string]struct{}, len(t.pending))
		for _, id := range t.pending {
			drop[id] = struct{}{}
		}
		kept := t.messages[:0]
		for _, msg := range t.messages {
			if _, ok := drop[msg.ID]; ok {
				continue
			}
			kept = append(kept, msg)
		}
		t.messages = kept
	}
	t.live = -1
	t.pending = nil
	return t.Append(SpeakerUser, text)
}

// Live returns the live partial, if any.
func (t *Transcript) Live() (Message, bool) {
	if t.live < 0 {
		return Message{}, false
	}
	return t.messages[t.live], true
}

// LastAI returns the most recent ai message.
func (t *Transcript) LastAI() (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Speaker == SpeakerAI {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Reset discards every message.
func (t *Transcript) Reset() {
	t.messages = nil
	t.live = -1
	t.pending = nil
}

// Normalize collapses runs of whitespace and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
