package orchestration

import (
	"context"
	"fmt"

	"github.com/koscakluka/ema-dictation/core/audio"
	"github.com/koscakluka/ema-dictation/core/speechtotext"
)

// speechToText forwards transcription callbacks into the coordinator queue.
type speechToText struct {
	// client stores the configured speech-to-text implementation.
	client SpeechToText

	enqueue func(queueInput) bool
}

func (s *speechToText) set(client SpeechToText) {
	if s != nil {
		s.client = client
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.client != nil
}

func (s *speechToText) supportsFinalize() bool {
	if !s.isConfigured() {
		return false
	}
	_, ok := s.client.(SpeechToTextWithFinalize)
	return ok
}

func (s *speechToText) Start(ctx context.Context, encodingInfo audio.EncodingInfo) error {
	if !s.isConfigured() {
		return nil
	}

	sttOptions := []speechtotext.TranscriptionOption{
		speechtotext.WithSpeechStartedCallback(s.invokeSpeechStarted),
		speechtotext.WithSpeechEndedCallback(s.invokeSpeechEnded),
		speechtotext.WithInterimTranscriptionCallback(s.invokeInterimTranscription),
		speechtotext.WithPartialTranscriptionCallback(s.invokePartialTranscription),
		speechtotext.WithFinalizedCallback(s.invokeFinalized),
		speechtotext.WithEncodingInfo(encodingInfo),
	}

	if err := s.client.Transcribe(ctx, sttOptions...); err != nil {
		return fmt.Errorf("failed to start transcribing: %w", err)
	}

	return nil
}

func (s *speechToText) SendAudio(audio []byte) error {
	if !s.isConfigured() {
		return nil
	}

	return s.client.SendAudio(audio)
}

func (s *speechToText) Finalize(ctx context.Context, mode speechtotext.FinalizeMode) error {
	client, ok := s.client.(SpeechToTextWithFinalize)
	if !ok {
		return nil
	}
	return client.Finalize(ctx, mode)
}

func (s *speechToText) Close(ctx context.Context) error {
	if !s.isConfigured() {
		return nil
	}

	switch c := s.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}

func (s *speechToText) invokeSpeechStarted() {
	s.enqueue(speechActivityInput{speaking: true})
}

func (s *speechToText) invokeSpeechEnded() {
	s.enqueue(speechActivityInput{speaking: false})
}

func (s *speechToText) invokeInterimTranscription(transcript string) {
	s.enqueue(interimTranscriptInput{transcript: transcript})
}

func (s *speechToText) invokePartialTranscription(transcript string) {
	s.enqueue(transcriptSegmentInput{segment: transcript})
}

func (s *speechToText) invokeFinalized() {
	s.enqueue(finalizedInput{})
}
