package miniaudio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

var ErrDeviceNotFound = errors.New("capture device not found")

// Device is a capture device as reported by the platform backend.
type Device struct {
	ID        string
	Name      string
	IsDefault bool

	id malgo.DeviceID
}

// CaptureDevices lists the capture devices currently available.
func CaptureDevices() ([]Device, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	defer func() {
		_ = audioCtx.Uninit()
		audioCtx.Free()
	}()

	return captureDevices(audioCtx)
}

func captureDevices(audioCtx *malgo.AllocatedContext) ([]Device, error) {
	infos, err := audioCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for i := range infos {
		devices = append(devices, Device{
			ID:        infos[i].ID.String(),
			Name:      infos[i].Name(),
			IsDefault: infos[i].IsDefault != 0,
			id:        infos[i].ID,
		})
	}
	return devices, nil
}

// findDevice matches want against device IDs first and then, ignoring case,
// against device names.
func findDevice(devices []Device, want string) (Device, error) {
	want = strings.TrimSpace(want)
	for _, device := range devices {
		if device.ID == want {
			return device, nil
		}
	}
	for _, device := range devices {
		if strings.EqualFold(device.Name, want) {
			return device, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, want)
}
