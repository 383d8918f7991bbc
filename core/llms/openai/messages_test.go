package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/koscakluka/ema-dictation/core/llms"
)

func TestToOpenAIMessagesMapsRoles(t *testing.T) {
	messages, err := toOpenAIMessages([]llms.Message{
		llms.SystemMessage("format this"),
		llms.UserMessage("scratch that hello"),
		llms.AssistantMessage("Hello."),
	})
	if err != nil {
		t.Fatalf("expected conversion to succeed, got %v", err)
	}

	expectedRoles := []string{goopenai.ChatMessageRoleSystem, goopenai.ChatMessageRoleUser, goopenai.ChatMessageRoleAssistant}
	if len(messages) != len(expectedRoles) {
		t.Fatalf("expected %d messages, got %d", len(expectedRoles), len(messages))
	}
	for i, role := range expectedRoles {
		if messages[i].Role != role {
			t.Fatalf("expected message %d role %q, got %q", i, role, messages[i].Role)
		}
	}
	if messages[1].Content != "scratch that hello" {
		t.Fatalf("expected user content to be passed through untouched, got %q", messages[1].Content)
	}
}

func TestToOpenAIMessagesRejectsUnknownRole(t *testing.T) {
	if _, err := toOpenAIMessages([]llms.Message{{Role: "developer"}}); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}

func TestStreamYieldsContentChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Send it\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\" to Jane.\"},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("key", "test-model", WithBaseURL(server.URL+"/v1"), WithHTTPClient(server.Client()))
	stream := client.PromptWithStream(context.Background(), []llms.Message{llms.UserMessage("send it to john i mean jane")})

	var content strings.Builder
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		if contentChunk, ok := chunk.(llms.StreamContentChunk); ok {
			content.WriteString(contentChunk.Content())
		}
	}

	if content.String() != "Send it to Jane." {
		t.Fatalf("expected %q, got %q", "Send it to Jane.", content.String())
	}
}
