package orchestration

import (
	"context"

	"github.com/koscakluka/ema-dictation/core/audio"
	"github.com/koscakluka/ema-dictation/core/events"
	"github.com/koscakluka/ema-dictation/core/llms"
	"github.com/koscakluka/ema-dictation/core/prompts"
	"github.com/koscakluka/ema-dictation/core/speechtotext"
)

type CoordinatorOption func(*TurnCoordinator)

type LLMWithStream interface {
	PromptWithStream(ctx context.Context, messages []llms.Message, opts ...llms.StreamingPromptOption) llms.Stream
}

func WithStreamingLLM(client LLMWithStream, opts ...llms.StreamingPromptOption) CoordinatorOption {
	return func(c *TurnCoordinator) {
		c.llm.set(client, opts...)
	}
}

type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
}

// SpeechToTextWithFinalize is a transcription client that can flush the
// utterance in progress on request. Clients without it are treated as if
// every finalize was acknowledged immediately.
type SpeechToTextWithFinalize interface {
	SpeechToText
	Finalize(ctx context.Context, mode speechtotext.FinalizeMode) error
}

func WithSpeechToTextClient(client SpeechToText) CoordinatorOption {
	return func(c *TurnCoordinator) {
		c.speechToText.set(client)
	}
}

type AudioInput interface {
	audioInputBase
}

type AudioInputFine interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioInput(client AudioInput) CoordinatorOption {
	return func(c *TurnCoordinator) { c.audioInput.Set(client) }
}

// WithPromptSections sets the prompt configuration used from the first turn.
func WithPromptSections(config prompts.SectionConfig) CoordinatorOption {
	return func(c *TurnCoordinator) { c.promptConfig.Store(&config) }
}

// WithEventHandler receives every event in the order the coordinator
// produced it. The handler runs on the coordinator goroutine and must not
// block.
func WithEventHandler(handler func(events.Event)) CoordinatorOption {
	return func(c *TurnCoordinator) { c.eventHandler = handler }
}

type audioInputBase interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}
