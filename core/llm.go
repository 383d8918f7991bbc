package orchestration

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/ema-dictation/core/llms"
)

type llm struct {
	// client is the configured streaming LLM implementation.
	client LLMWithStream
	// options are passed to every prompt.
	options []llms.StreamingPromptOption
}

func (runtime *llm) set(client LLMWithStream, opts ...llms.StreamingPromptOption) {
	if runtime == nil {
		return
	}

	runtime.client = client
	runtime.options = append([]llms.StreamingPromptOption(nil), opts...)
}

func (runtime *llm) isConfigured() bool {
	return runtime != nil && runtime.client != nil
}

// generate streams the reply to messages and hands every text segment to
// onSegment in order.
func (runtime *llm) generate(
	ctx context.Context,
	turnID string,
	messages []llms.Message,
	onSegment func(string),
) error {
	if !runtime.isConfigured() {
		return nil
	}

	ctx, span := tracer.Start(ctx, "generate reply", trace.WithAttributes(
		attribute.String("turn.id", turnID),
		attribute.Int("request.messages", len(messages)),
	))
	defer span.End()

	stream := runtime.client.PromptWithStream(ctx, messages, runtime.options...)

	segments := 0
	var finishReason string
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			err = fmt.Errorf("failed to stream reply: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch c := chunk.(type) {
		case llms.StreamContentChunk:
			if content := c.Content(); content != "" {
				segments++
				onSegment(content)
			}
		case llms.StreamUsageChunk:
			usage := c.Usage()
			span.SetAttributes(
				attribute.Int("usage.input", usage.InputTokens),
				attribute.Int("usage.output", usage.OutputTokens),
				attribute.Int("usage.total", usage.TotalTokens),
			)
		}
		if chunk != nil && chunk.FinishReason() != nil {
			finishReason = *chunk.FinishReason()
		}
	}

	span.SetAttributes(
		attribute.Int("response.segments", segments),
		attribute.String("response.finish_reason", finishReason),
	)
	return nil
}
