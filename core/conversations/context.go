package conversations

import "github.com/koscakluka/ema-dictation/core/llms"

// UserContext is the part of the store the transcript side is allowed to
// touch.
type UserContext interface {
	AppendUserFragment(text string) error
	CommitUserMessage() ([]llms.Message, error)
}

// AssistantContext is the part of the store the reply side is allowed to
// touch.
type AssistantContext interface {
	AppendAssistantFragment(text string) error
	AssistantMessage() string
}

var (
	_ UserContext      = (*Store)(nil)
	_ AssistantContext = (*Store)(nil)
)
