package orchestration

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/koscakluka/ema-dictation/core/audio"
)

type audioInput struct {
	// base stores the configured input client used for streaming audio.
	base audioInputBase
	// fineCaptureControl is set when the input client supports explicit capture controls.
	fineCaptureControl AudioInputFine

	// isCapturing reports whether the input client is currently capturing audio.
	isCapturing atomic.Bool

	// onInputAudio is called for every captured frame
	onInputAudio func(audio []byte)
}

func (a *audioInput) Set(client audioInputBase) {
	if a == nil {
		return
	}

	a.base = client
	a.fineCaptureControl = nil
	a.isCapturing.Store(false)

	if fine, ok := client.(AudioInputFine); ok {
		a.fineCaptureControl = fine
	}
}

func (a *audioInput) IsConfigured() bool { return a != nil && a.base != nil }

// Start begins capturing. Capture failures are logged, the coordinator keeps
// working with signals and transcripts from elsewhere.
func (a *audioInput) Start(ctx context.Context) {
	if !a.IsConfigured() || !a.isCapturing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		var err error
		if a.fineCaptureControl != nil {
			err = a.fineCaptureControl.StartCapture(ctx, a.onAudio)
		} else {
			err = a.base.Stream(ctx, a.onAudio)
		}
		if err != nil {
			a.isCapturing.Store(false)
			logger.ErrorContext(ctx, "failed to start audio input", "error", err)
		}
	}()
}

func (a *audioInput) Close() error {
	if !a.IsConfigured() {
		return nil
	}

	var errs error
	if a.fineCaptureControl != nil && a.isCapturing.Load() {
		if err := a.fineCaptureControl.StopCapture(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	a.base.Close()
	a.isCapturing.Store(false)

	return errs
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if !a.IsConfigured() {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

func (a *audioInput) onAudio(audio []byte) {
	if a.onInputAudio != nil {
		a.onInputAudio(audio)
	}
}
