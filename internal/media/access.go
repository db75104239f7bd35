// Package media resolves microphone and camera access before an interview starts.
package media

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anshc022/vocahire/internal/audio"
)

// Grant is the capture access obtained for one session.
type Grant struct {
	Microphone audio.Device
	Camera     string
	Warning    string
}

// DeniedError is a permission failure with a reason fit for the candidate.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "media access denied: " + e.Reason
}

// Access probes the configured devices.
type Access struct {
	Input        string
	Fallback     string
	RequireVideo bool
	VideoDevice  string

	selectMicrophone func(ctx context.Context, input string, fallback string) (audio.Selection, error)
	openCamera       func(path string) error
}

// Request returns a Grant when the microphone, and the camera if required,
// are usable. Every failure is a *DeniedError.
func (a Access) Request(ctx context.Context) (Grant, error) {
	selectMic := a.selectMicrophone
	if selectMic == nil {
		selectMic = audio.SelectDevice
	}
	openCam := a.openCamera
	if openCam == nil {
		openCam = probeCamera
	}

	selection, err := selectMic(ctx, a.Input, a.Fallback)
	if err != nil {
		return Grant{}, &DeniedError{Reason: fmt.Sprintf("microphone unavailable: %v", err)}
	}

	grant := Grant{Microphone: selection.Device, Warning: selection.Warning}
	if !a.RequireVideo {
		return grant, nil
	}

	device := strings.TrimSpace(a.VideoDevice)
	if device == "" {
		return Grant{}, &DeniedError{Reason: "camera unavailable: no video device configured"}
	}
	if err := openCam(device); err != nil {
		return Grant{}, &DeniedError{Reason: fmt.Sprintf("camera unavailable: %v", err)}
	}
	grant.Camera = device
	return grant, nil
}

func probeCamera(path string) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
