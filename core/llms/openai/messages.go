package openai

import (
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/koscakluka/ema-dictation/core/llms"
)

func toOpenAIMessages(conversation []llms.Message) ([]goopenai.ChatCompletionMessage, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(conversation))
	for _, msg := range conversation {
		var role string
		switch msg.Role {
		case llms.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		case llms.RoleUser:
			role = goopenai.ChatMessageRoleUser
		case llms.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}

		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages, nil
}
