package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anshc022/vocahire/internal/audio"
)

func micOK(context.Context, string, string) (audio.Selection, error) {
	return audio.Selection{Device: audio.Device{ID: "mic"}, Warning: "fell back"}, nil
}

func TestRequestGrantsMicrophoneAndCamera(t *testing.T) {
	cam := filepath.Join(t.TempDir(), "video0")
	require.NoError(t, os.WriteFile(cam, nil, 0o600))

	a := Access{RequireVideo: true, VideoDevice: cam, selectMicrophone: micOK}
	grant, err := a.Request(context.Background())
	require.NoError(t, err)
	require.Equal(t, "mic", grant.Microphone.ID)
	require.Equal(t, cam, grant.Camera)
	require.Equal(t, "fell back", grant.Warning)
}

func TestRequestSkipsCameraWhenNotRequired(t *testing.T) {
	a := Access{selectMicrophone: micOK, openCamera: func(string) error {
		t.Fatal("camera should not be probed")
		return nil
	}}
	grant, err := a.Request(context.Background())
	require.NoError(t, err)
	require.Empty(t, grant.Camera)
}

func TestRequestDeniedReasons(t *testing.T) {
	tests := []struct {
		name   string
		access Access
		want   string
	}{
		{
			name: "microphone",
			access: Access{selectMicrophone: func(context.Context, string, string) (audio.Selection, error) {
				return audio.Selection{}, errors.New("no audio input devices found")
			}},
			want: "microphone unavailable: no audio input devices found",
		},
		{
			name:   "camera missing",
			access: Access{RequireVideo: true, VideoDevice: filepath.Join(t.TempDir(), "missing"), selectMicrophone: micOK},
			want:   "camera unavailable",
		},
		{
			name:   "camera unset",
			access: Access{RequireVideo: true, selectMicrophone: micOK},
			want:   "no video device configured",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.access.Request(context.Background())
			var denied *DeniedError
			require.True(t, errors.As(err, &denied))
			require.Contains(t, denied.Reason, tc.want)
		})
	}
}
