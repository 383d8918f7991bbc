package deepgram

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-dictation/core/audio"
)

const (
	listenURL = "wss://api.deepgram.com/v1/listen"

	DefaultModel               = "nova-3"
	DefaultLanguage            = "en-US"
	DefaultHardFinalizePadding = 300 * time.Millisecond
)

// TranscriptionClient is a Deepgram live transcription client that supports
// soft and hard finalization of the utterance in progress.
type TranscriptionClient struct {
	apiKey   string
	url      string
	model    string
	language string

	// hardFinalizePadding is the amount of silence submitted ahead of a hard
	// finalize.
	hardFinalizePadding time.Duration

	conn      *websocket.Conn
	connMu    sync.Mutex
	encoding  audio.EncodingInfo
	callbacks callbacks

	lastMsgTs time.Time
	// audioSinceFinalize is set once audio has been sent after the last
	// finalize. Without it Deepgram has nothing to flush and never answers.
	audioSinceFinalize bool

	// unendedSegment is only touched from the read loop
	unendedSegment bool
}

type ClientOption func(*TranscriptionClient)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *TranscriptionClient) { c.apiKey = apiKey }
}

// WithURL replaces the listen endpoint, useful for proxies and tests.
func WithURL(url string) ClientOption {
	return func(c *TranscriptionClient) { c.url = url }
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func WithLanguage(language string) ClientOption {
	return func(c *TranscriptionClient) { c.language = language }
}

func WithHardFinalizePadding(padding time.Duration) ClientOption {
	return func(c *TranscriptionClient) { c.hardFinalizePadding = padding }
}

func NewTranscriptionClient(opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		url:                 listenURL,
		model:               DefaultModel,
		language:            DefaultLanguage,
		hardFinalizePadding: DefaultHardFinalizePadding,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
