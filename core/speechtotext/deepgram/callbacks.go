package deepgram

import "github.com/koscakluka/ema-dictation/core/speechtotext"

type callbacks struct {
	interimTranscriptionCallback func(transcript string)
	partialTranscriptionCallback func(transcript string)
	startSpeechCallback          func()
	endSpeechCallback            func()
	finalizedCallback            func()
}

type websocketConfig struct {
	shouldDetectSpeechStart            bool
	shouldEnhanceSpeechEndingDetection bool
	shouldRequestInterimResults        bool
}

func newCallbackConfig(options speechtotext.TranscriptionOptions) (callbacks, websocketConfig) {
	noopTranscript := func(string) {}
	noop := func() {}

	cb := callbacks{
		interimTranscriptionCallback: noopTranscript,
		partialTranscriptionCallback: noopTranscript,
		startSpeechCallback:          noop,
		endSpeechCallback:            noop,
		finalizedCallback:            noop,
	}
	if options.InterimTranscriptionCallback != nil {
		cb.interimTranscriptionCallback = options.InterimTranscriptionCallback
	}
	if options.PartialTranscriptionCallback != nil {
		cb.partialTranscriptionCallback = options.PartialTranscriptionCallback
	}
	if options.SpeechStartedCallback != nil {
		cb.startSpeechCallback = options.SpeechStartedCallback
	}
	if options.SpeechEndedCallback != nil {
		cb.endSpeechCallback = options.SpeechEndedCallback
	}
	if options.FinalizedCallback != nil {
		cb.finalizedCallback = options.FinalizedCallback
	}

	config := websocketConfig{
		shouldDetectSpeechStart: options.SpeechStartedCallback != nil,
		shouldEnhanceSpeechEndingDetection: options.SpeechEndedCallback != nil,
		shouldRequestInterimResults: options.InterimTranscriptionCallback != nil,
	}

	return cb, config
}
