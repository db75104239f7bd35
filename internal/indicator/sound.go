package indicator

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/config"
)

type cueKind string

const (
	cueStart    cueKind = "record_start"
	cueStop     cueKind = "record_stop"
	cueTurn     cueKind = "your_turn"
	cueComplete cueKind = "complete"
)

const (
	cueSampleRate = 16000
	cueGap        = 22 * time.Millisecond
)

type note struct {
	hz     float64
	length time.Duration
	gain   float64
}

// Rising figures announce the candidate's turn; the single low note closes it.
var cueScores = map[cueKind][]note{
	cueStart:    {{880, 70 * time.Millisecond, 0.18}, {1175, 70 * time.Millisecond, 0.18}},
	cueStop:     {{620, 120 * time.Millisecond, 0.18}},
	cueTurn:     {{523, 60 * time.Millisecond, 0.16}, {659, 60 * time.Millisecond, 0.16}, {784, 80 * time.Millisecond, 0.16}},
	cueComplete: {{740, 65 * time.Millisecond, 0.18}, {988, 90 * time.Millisecond, 0.18}},
}

var cuePCM = func() map[cueKind][]int16 {
	rendered := make(map[cueKind][]int16, len(cueScores))
	for kind, score := range cueScores {
		rendered[kind] = renderScore(score)
	}
	return rendered
}()

// cueClip returns the configured cue file when it decodes, otherwise the
// synthesized figure.
func cueClip(kind cueKind, cfg config.IndicatorConfig) audio.Clip {
	if path := expandUserPath(cueFile(kind, cfg)); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if clip, err := audio.DecodeClip(data, cueSampleRate); err == nil {
				return clip
			}
		}
	}
	return audio.Clip{SampleRate: cueSampleRate, Channels: 1, Samples: cuePCM[kind]}
}

func cueFile(kind cueKind, cfg config.IndicatorConfig) string {
	switch kind {
	case cueStart:
		return cfg.SoundStartFile
	case cueStop:
		return cfg.SoundStopFile
	case cueTurn:
		return cfg.SoundTurnFile
	case cueComplete:
		return cfg.SoundCompleteFile
	}
	return ""
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(raw[1:], "/"))
}

func renderScore(score []note) []int16 {
	var pcm []int16
	for i, n := range score {
		if i > 0 {
			pcm = append(pcm, make([]int16, sampleCount(cueGap))...)
		}
		pcm = append(pcm, renderNote(n)...)
	}
	return pcm
}

// renderNote renders a sine note with raised-cosine fades so it starts and
// ends at zero without clicks.
func renderNote(n note) []int16 {
	total := sampleCount(n.length)
	if total == 0 || n.hz <= 0 || n.gain <= 0 {
		return nil
	}

	fade := min(max(total/10, 1), cueSampleRate/200)
	step := 2 * math.Pi * n.hz / cueSampleRate
	pcm := make([]int16, total)
	for i := range pcm {
		edge := min(i, total-1-i)
		env := 1.0
		if edge < fade {
			env = 0.5 - 0.5*math.Cos(math.Pi*float64(edge)/float64(fade))
		}
		pcm[i] = int16(math.Round(math.Sin(step*float64(i)) * n.gain * env * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
