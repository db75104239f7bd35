package summary

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Render writes a human-readable report.
func Render(w io.Writer, s *Summary) error {
	if s == nil {
		_, err := io.WriteString(w, "no summary\n")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Interview summary %s\n", s.SessionID)
	if s.DurationSeconds > 0 {
		d := time.Duration(s.DurationSeconds * float64(time.Second)).Round(time.Second)
		fmt.Fprintf(&b, "duration: %s\n", d)
	}
	fmt.Fprintf(&b, "overall: %s\n", percent(s.Overall()))

	if e := s.Evaluation; e != nil {
		rows := []struct {
			name  string
			value float64
		}{
			{"clarity", e.Clarity},
			{"confidence", e.Confidence},
			{"relevance", e.Relevance},
			{"depth", e.Depth},
			{"keyword match", e.KeywordMatchScore},
			{"answer length", e.AnswerLengthScore},
		}
		for _, row := range rows {
			fmt.Fprintf(&b, "  %-14s %s\n", row.name+":", percent(row.value))
		}
	}

	if len(s.TipsForImprovement) > 0 {
		b.WriteString("tips:\n")
		for _, tip := range s.TipsForImprovement {
			fmt.Fprintf(&b, "  - %s\n", strings.TrimSpace(tip))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}
