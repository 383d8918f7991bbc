package orchestration

import (
	"github.com/koscakluka/ema-dictation/core/conversations"
	"github.com/koscakluka/ema-dictation/core/llms"
)

// TranscriptCollector moves transcript fragments of one turn into the user
// side of the conversation.
type TranscriptCollector struct {
	context conversations.UserContext

	turnID string
	open   bool
}

func NewTranscriptCollector(context conversations.UserContext) *TranscriptCollector {
	return &TranscriptCollector{context: context}
}

// Open starts collecting for turnID. The context must already be reset.
func (c *TranscriptCollector) Open(turnID string) {
	c.turnID = turnID
	c.open = true
}

func (c *TranscriptCollector) TurnID() string { return c.turnID }
func (c *TranscriptCollector) IsOpen() bool   { return c.open }

// Collect appends a fragment in arrival order.
func (c *TranscriptCollector) Collect(fragment string) error {
	if !c.open {
		return conversations.ErrNoActiveTurn
	}
	return c.context.AppendUserFragment(fragment)
}

// Finalize closes the collector and commits the user message. The collector
// is closed even when the commit fails.
func (c *TranscriptCollector) Finalize() ([]llms.Message, error) {
	if !c.open {
		return nil, conversations.ErrNoActiveTurn
	}
	c.open = false
	return c.context.CommitUserMessage()
}

// Close stops collecting without committing.
func (c *TranscriptCollector) Close() {
	c.open = false
	c.turnID = ""
}

// ResponseCollector moves streamed reply segments of one turn into the
// assistant side of the conversation.
type ResponseCollector struct {
	context conversations.AssistantContext

	turnID string
	armed  bool
}

func NewResponseCollector(context conversations.AssistantContext) *ResponseCollector {
	return &ResponseCollector{context: context}
}

// Arm prepares the collector for the reply to turnID.
func (c *ResponseCollector) Arm(turnID string) {
	c.turnID = turnID
	c.armed = true
}

// Collect appends a segment. Segments for any other turn are ignored and
// reported as not accepted.
func (c *ResponseCollector) Collect(turnID, segment string) (accepted bool, err error) {
	if !c.armed || turnID != c.turnID {
		return false, nil
	}
	if err := c.context.AppendAssistantFragment(segment); err != nil {
		return false, err
	}
	return true, nil
}

// Finish disarms the collector and returns the whole reply of turnID as it
// was written to the conversation.
func (c *ResponseCollector) Finish(turnID string) (string, bool) {
	if !c.armed || turnID != c.turnID {
		return "", false
	}
	c.Disarm()
	return c.context.AssistantMessage(), true
}

func (c *ResponseCollector) Disarm() {
	c.armed = false
	c.turnID = ""
}
