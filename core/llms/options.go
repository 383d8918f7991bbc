package llms

type StreamingPromptOptions struct {
	// Temperature is left to the provider default when nil.
	Temperature *float32
	// MaxTokens is left to the provider default when zero.
	MaxTokens int
}

type StreamingPromptOption func(*StreamingPromptOptions)

func WithTemperature(temperature float32) StreamingPromptOption {
	return func(o *StreamingPromptOptions) {
		o.Temperature = &temperature
	}
}

func WithMaxTokens(maxTokens int) StreamingPromptOption {
	return func(o *StreamingPromptOptions) {
		o.MaxTokens = maxTokens
	}
}

func ApplyStreamingOptions(opts ...StreamingPromptOption) StreamingPromptOptions {
	options := StreamingPromptOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}
