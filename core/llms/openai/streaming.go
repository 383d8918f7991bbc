package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/koscakluka/ema-dictation/core/llms"
)

const DefaultModel = goopenai.GPT4oMini

// Client streams chat completions through any OpenAI compatible API.
type Client struct {
	client *goopenai.Client
	model  string
}

type ClientOption func(*goopenai.ClientConfig)

// WithBaseURL targets an OpenAI compatible server instead of api.openai.com.
func WithBaseURL(baseURL string) ClientOption {
	return func(config *goopenai.ClientConfig) { config.BaseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(config *goopenai.ClientConfig) { config.HTTPClient = httpClient }
}

func NewClient(apiKey string, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = DefaultModel
	}

	config := goopenai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{client: goopenai.NewClientWithConfig(config), model: model}
}

func (c *Client) PromptWithStream(_ context.Context, conversation []llms.Message, opts ...llms.StreamingPromptOption) llms.Stream {
	messages, err := toOpenAIMessages(conversation)
	return &Stream{
		client:   c.client,
		model:    c.model,
		messages: messages,
		options:  llms.ApplyStreamingOptions(opts...),
		err:      err,
	}
}

type Stream struct {
	client   *goopenai.Client
	model    string
	messages []goopenai.ChatCompletionMessage
	options  llms.StreamingPromptOptions

	err error
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(
			attribute.String("request.model", s.model),
			attribute.Int("request.messages", len(s.messages)),
		)

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		if s.err != nil {
			fail(s.err)
			return
		}

		request := goopenai.ChatCompletionRequest{
			Model:         s.model,
			Messages:      s.messages,
			Stream:        true,
			StreamOptions: &goopenai.StreamOptions{IncludeUsage: true},
		}
		if s.options.Temperature != nil {
			request.Temperature = *s.options.Temperature
		}
		if s.options.MaxTokens > 0 {
			request.MaxCompletionTokens = s.options.MaxTokens
		}

		stream, err := s.client.CreateChatCompletionStream(ctx, request)
		if err != nil {
			fail(fmt.Errorf("failed to open completion stream: %w", err))
			return
		}
		defer stream.Close()

		span.AddEvent("request started")
		firstChunk := true
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				logger.DebugContext(ctx, "completion stream finished", "model", s.model)
				return
			} else if err != nil {
				fail(fmt.Errorf("error reading streamed response: %w", err))
				return
			}

			if firstChunk {
				span.AddEvent("received first chunk")
				firstChunk = false
			}

			if len(response.Choices) > 0 {
				choice := response.Choices[0]
				var finishReason *string
				if choice.FinishReason != "" {
					reason := string(choice.FinishReason)
					finishReason = &reason
				}

				if choice.Delta.Content != "" || finishReason != nil {
					if !yield(llms.ContentChunk{Text: choice.Delta.Content, Finish: finishReason}, nil) {
						return
					}
				}
			}

			if response.Usage != nil {
				span.SetAttributes(
					attribute.Int("usage.input", response.Usage.PromptTokens),
					attribute.Int("usage.output", response.Usage.CompletionTokens),
					attribute.Int("usage.total", response.Usage.TotalTokens),
				)
				if !yield(usageChunk{usage: llms.Usage{
					InputTokens:  response.Usage.PromptTokens,
					OutputTokens: response.Usage.CompletionTokens,
					TotalTokens:  response.Usage.TotalTokens,
				}}, nil) {
					return
				}
			}
		}
	}
}

type usageChunk struct {
	usage llms.Usage
}

func (usageChunk) FinishReason() *string { return nil }

func (c usageChunk) Usage() llms.Usage { return c.usage }
