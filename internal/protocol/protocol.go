// Package protocol decodes interview channel frames and encodes client controls.
//
// Two text encodings share one discriminated union: the legacy prefixed
// strings ("AI_TEXT:hello") and a versioned JSON envelope
// ({"v":1,"type":"ai_text","text":"hello"}).
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Version is the only envelope version understood by this client.
const Version = 1

// Kind discriminates inbound frames.
type Kind string

const (
	KindAudio           Kind = "audio"
	KindAIText          Kind = "ai_text"
	KindSTTPartial      Kind = "stt_partial"
	KindFinalTranscript Kind = "final_transcript"
	KindSessionEnded    Kind = "session_ended"
	KindAITurnEnd       Kind = "ai_turn_end"
	KindNotice          Kind = "notice"
)

// Inbound is one decoded server frame.
type Inbound struct {
	Kind  Kind
	Text  string
	Final bool
	Audio []byte
}

// Control is a client-to-server control message.
type Control string

const (
	ControlEndOfStream  Control = "END_OF_STREAM"
	ControlEndInterview Control = "END_INTERVIEW"
)

// Wire selects how controls are encoded on the channel.
type Wire string

const (
	WireLegacy   Wire = "legacy"
	WireEnvelope Wire = "envelope"
)

var (
	ErrUnsupportedType    = errors.New("unsupported message type")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
)

// Envelope is the structured v1 frame.
type Envelope struct {
	V      int    `json:"v"`
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Final  bool   `json:"final,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const finalMarker = "(final)"

var textPrefixes = []struct {
	prefix string
	kind   Kind
}{
	{"AI_TEXT:", KindAIText},
	{"STT_PARTIAL:", KindSTTPartial},
	{"FINAL_TRANSCRIPT:", KindFinalTranscript},
	{"AI_says:", KindAIText},
	{"STT_part:", KindSTTPartial},
	{"Candidate_says:", KindFinalTranscript},
}

var endedLiterals = map[string]struct{}{
	"SESSION_ENDED_BY_SERVER": {},
	"SESSION_ENDED_BY_AI":     {},
	"INTERVIEW_ENDED_BY_AI":   {},
}

var controlTypes = map[Control]string{
	ControlEndOfStream:  "end_of_stream",
	ControlEndInterview: "end_interview",
}

// DecodeBinary wraps a binary frame as audio.
func DecodeBinary(payload []byte) Inbound {
	return Inbound{Kind: KindAudio, Audio: payload}
}

// DecodeText decodes a text frame. Text that matches no known form is a
// notice. An envelope with an unknown version or type returns an error along
// with a notice carrying the raw text.
func DecodeText(raw string) (Inbound, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		msg, err := ParseEnvelope([]byte(trimmed))
		if err == nil {
			return msg, nil
		}
		return Inbound{Kind: KindNotice, Text: raw}, err
	}

	if _, ok := endedLiterals[trimmed]; ok {
		return Inbound{Kind: KindSessionEnded, Text: trimmed}, nil
	}

	for _, p := range textPrefixes {
		if !strings.HasPrefix(trimmed, p.prefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(trimmed, p.prefix))
		msg := Inbound{Kind: p.kind, Text: payload}
		if p.kind == KindSTTPartial {
			msg.Text, msg.Final = splitFinal(payload)
		}
		return msg, nil
	}
	return Inbound{Kind: KindNotice, Text: raw}, nil
}

// ParseEnvelope decodes a v1 JSON envelope.
func ParseEnvelope(raw []byte) (Inbound, error) {
	var env Envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&env); err != nil {
		return Inbound{}, fmt.Errorf("invalid envelope: %w", err)
	}
	if env.V != Version {
		return Inbound{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.V)
	}

	switch Kind(env.Type) {
	case KindAIText, KindFinalTranscript, KindNotice:
		return Inbound{Kind: Kind(env.Type), Text: strings.TrimSpace(env.Text)}, nil
	case KindSTTPartial:
		return Inbound{Kind: KindSTTPartial, Text: strings.TrimSpace(env.Text), Final: env.Final}, nil
	case KindSessionEnded:
		return Inbound{Kind: KindSessionEnded, Text: env.Reason}, nil
	case KindAITurnEnd:
		return Inbound{Kind: KindAITurnEnd}, nil
	default:
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}

// EncodeControl renders a control for the given wire mode.
func EncodeControl(wire Wire, ctrl Control) ([]byte, error) {
	typ, ok := controlTypes[ctrl]
	if !ok {
		return nil, fmt.Errorf("unknown control %q", ctrl)
	}
	switch wire {
	case WireLegacy, "":
		return []byte(ctrl), nil
	case WireEnvelope:
		return json.Marshal(Envelope{V: Version, Type: typ})
	default:
		return nil, fmt.Errorf("unknown wire mode %q", wire)
	}
}

func splitFinal(payload string) (string, bool) {
	if !strings.HasSuffix(payload, finalMarker) {
		return payload, false
	}
	return strings.TrimSpace(strings.TrimSuffix(payload, finalMarker)), true
}
