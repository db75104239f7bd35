package indicator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anshc022/vocahire/internal/audio"
	"github.com/anshc022/vocahire/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEveryCueHasSynthesizedAudio(t *testing.T) {
	for _, kind := range []cueKind{cueStart, cueStop, cueTurn, cueComplete} {
		require.NotEmpty(t, cuePCM[kind], kind)
	}
	require.Empty(t, cuePCM[cueKind("unknown")])
}

func TestRenderScoreInsertsGapsBetweenNotes(t *testing.T) {
	score := []note{{440, 50 * time.Millisecond, 0.2}, {660, 50 * time.Millisecond, 0.2}}
	got := renderScore(score)
	require.Len(t, got, 2*sampleCount(50*time.Millisecond)+sampleCount(cueGap))
}

func TestRenderNoteFadesToSilenceAtEdges(t *testing.T) {
	got := renderNote(note{440, 100 * time.Millisecond, 0.5})
	require.Len(t, got, sampleCount(100*time.Millisecond))
	require.Zero(t, got[0])
	require.Zero(t, got[len(got)-1])

	var peak int16
	for _, s := range got {
		peak = max(peak, s)
	}
	require.InDelta(t, 0.5*32767, float64(peak), 400)
}

func TestRenderNoteInvalidNoteIsSilent(t *testing.T) {
	require.Empty(t, renderNote(note{0, 100 * time.Millisecond, 0.2}))
	require.Empty(t, renderNote(note{440, 0, 0.2}))
	require.Empty(t, renderNote(note{440, 100 * time.Millisecond, 0}))
}

func TestCueClipPrefersConfiguredWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turn.wav")
	require.NoError(t, os.WriteFile(path, audio.EncodeWAV([]byte{1, 0, 2, 0}, 8000), 0o600))

	cfg := config.Default().Indicator
	cfg.SoundTurnFile = path

	clip := cueClip(cueTurn, cfg)
	require.Equal(t, 8000, clip.SampleRate)
	require.Equal(t, []int16{1, 2}, clip.Samples)
}

func TestCueClipFallsBackToSynth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(path, []byte{1}, 0o600))

	cfg := config.Default().Indicator
	cfg.SoundStartFile = path
	cfg.SoundStopFile = filepath.Join(t.TempDir(), "missing.wav")

	require.Equal(t, cuePCM[cueStart], cueClip(cueStart, cfg).Samples)
	require.Equal(t, cuePCM[cueStop], cueClip(cueStop, cfg).Samples)
}

func TestExpandUserPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.Equal(t, filepath.Join(home, "cues", "a.wav"), expandUserPath(" ~/cues/a.wav "))
	require.Equal(t, home, expandUserPath("~"))
	require.Equal(t, "/abs/a.wav", expandUserPath("/abs/a.wav"))
	require.Empty(t, expandUserPath(" "))
}
