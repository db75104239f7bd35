package transcript

import "strings"

// leadInPhrases mark an AI utterance that hands the turn to the candidate
// even without a trailing question mark.
var leadInPhrases = []string{
	"tell me about",
	"tell me more",
	"can you",
	"could you",
	"would you",
	"walk me through",
	"describe",
	"please explain",
	"how would you",
	"what would you",
	"why did you",
	"share an example",
	"give me an example",
}

// IsQuestion reports whether text reads as a prompt for the candidate.
func IsQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range leadInPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
