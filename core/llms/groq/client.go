package groq

import (
	"context"
	"net/http"

	"github.com/koscakluka/ema-dictation/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	url = "https://api.groq.com/openai/v1/chat/completions"

	endMessage  = "[DONE]"
	chunkPrefix = "data:"

	DefaultModel = "llama-3.3-70b-versatile"
)

// Client streams chat completions from Groq's OpenAI compatible endpoint.
type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithURL points the client at a different chat completions endpoint.
func WithURL(url string) ClientOption {
	return func(c *Client) { c.url = url }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = DefaultModel
	}

	client := &Client{
		apiKey: apiKey,
		model:  model,
		url:    url,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) PromptWithStream(ctx context.Context, messages []llms.Message, opts ...llms.StreamingPromptOption) llms.Stream {
	return PromptWithStream(ctx, c.httpClient, c.url, c.apiKey, c.model, messages, opts...)
}
