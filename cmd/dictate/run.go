package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	orchestration "github.com/koscakluka/ema-dictation/core"
	"github.com/koscakluka/ema-dictation/core/audio/miniaudio"
	"github.com/koscakluka/ema-dictation/core/events"
	"github.com/koscakluka/ema-dictation/core/llms"
	"github.com/koscakluka/ema-dictation/core/llms/groq"
	"github.com/koscakluka/ema-dictation/core/llms/openai"
	"github.com/koscakluka/ema-dictation/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-dictation/internal/config"
)

const eventBufferSize = 256

var runAutoStop bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dictate from the configured microphone",
	Long: `Start an interactive dictation session.

Keys:
  space   start a turn, or stop it and flush the last word
  enter   stop the turn at a natural pause
  esc     abandon the turn in progress
  q       quit

Each formatted dictation is copied to the clipboard and saved to the
history unless output.clipboard or history.enabled turn that off.`,
	RunE: runDictation,
}

func init() {
	runCmd.Flags().BoolVar(&runAutoStop, "auto-stop", false, "stop the turn when the speaker goes quiet")
}

func runDictation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sections, err := cfg.PromptSections()
	if err != nil {
		return err
	}

	llm, err := newLLMClient(cfg.LLM)
	if err != nil {
		return err
	}

	output, err := newOutputDelivery(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			logger.Warn("failed to close history", "error", err)
		}
	}()

	mic, err := miniaudio.NewClient(
		miniaudio.WithSampleRate(cfg.Audio.SampleRate),
		miniaudio.WithDevice(cfg.Audio.Device),
	)
	if err != nil {
		return err
	}

	eventCh := make(chan events.Event, eventBufferSize)
	coordinator := orchestration.NewTurnCoordinator(
		orchestration.WithAudioInput(mic),
		orchestration.WithSpeechToTextClient(newTranscriptionClient(cfg.Deepgram)),
		orchestration.WithStreamingLLM(llm,
			llms.WithTemperature(cfg.LLM.Temperature),
			llms.WithMaxTokens(cfg.LLM.MaxTokens),
		),
		orchestration.WithPromptSections(sections),
		orchestration.WithEventHandler(forwardEvents(eventCh)),
	)

	workers := pool.New().WithContext(cmd.Context()).WithCancelOnError()
	workers.Go(func(ctx context.Context) error {
		err := coordinator.Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, orchestration.ErrCoordinatorClosed) {
			return nil
		}
		return err
	})
	workers.Go(func(ctx context.Context) error {
		defer coordinator.Close()

		m := newModel(coordinator, eventCh, runAutoStop)
		m.deliver = output
		program := tea.NewProgram(
			m,
			tea.WithContext(ctx),
			tea.WithAltScreen(),
		)
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("terminal interface failed: %w", err)
		}
		return nil
	})
	return workers.Wait()
}

func newTranscriptionClient(cfg config.DeepgramConfig) *deepgram.TranscriptionClient {
	opts := []deepgram.ClientOption{
		deepgram.WithModel(cfg.Model),
		deepgram.WithLanguage(cfg.Language),
		deepgram.WithHardFinalizePadding(cfg.HardFinalizePadding),
	}
	if cfg.APIKey != "" {
		opts = append(opts, deepgram.WithAPIKey(cfg.APIKey))
	}
	if cfg.URL != "" {
		opts = append(opts, deepgram.WithURL(cfg.URL))
	}
	return deepgram.NewTranscriptionClient(opts...)
}

func newLLMClient(cfg config.LLMConfig) (orchestration.LLMWithStream, error) {
	apiKey := cfg.ResolvedAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no api key configured for llm provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []openai.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.NewClient(apiKey, cfg.Model, opts...), nil
	case config.ProviderGroq:
		var opts []groq.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, groq.WithURL(cfg.BaseURL))
		}
		return groq.NewClient(apiKey, cfg.Model, opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown llm provider %q", config.ErrInvalidConfig, cfg.Provider)
}

// forwardEvents hands coordinator events to the terminal interface without
// blocking the coordinator goroutine.
func forwardEvents(eventCh chan<- events.Event) func(events.Event) {
	return func(event events.Event) {
		select {
		case eventCh <- event:
		default:
			logger.Warn("dropped coordinator event", "kind", event.Kind())
		}
	}
}
