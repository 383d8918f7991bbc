// Package conversations holds the turn-scoped conversation context: one
// system message, at most one user message and at most one assistant reply.
package conversations

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/koscakluka/ema-dictation/core/llms"
)

type turnPhase int

const (
	// phaseNone means no reset happened since construction or abandon.
	phaseNone turnPhase = iota
	phaseCollecting
	phaseCommitted
	// phaseClosed is reached by an empty commit. The turn is over but
	// nothing was committed.
	phaseClosed
)

// Store is the conversation of a single turn. It is meant to be owned by one
// goroutine; the lock only makes snapshots safe to take from elsewhere.
type Store struct {
	mu sync.RWMutex

	phase     turnPhase
	system    llms.Message
	user      strings.Builder
	hasUser   bool
	assistant strings.Builder
	hasReply  bool
}

func NewStore() *Store {
	return &Store{}
}

// Reset discards everything and seeds the store with a single system message.
func (s *Store) Reset(systemText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	s.system = llms.SystemMessage(systemText)
	s.phase = phaseCollecting
}

// Abandon drops the turn without committing anything.
func (s *Store) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	s.phase = phaseNone
}

func (s *Store) clear() {
	s.system = llms.Message{}
	s.user.Reset()
	s.hasUser = false
	s.assistant.Reset()
	s.hasReply = false
}

// AppendUserFragment adds a transcript fragment to the pending user message.
// Fragments are joined with a single space unless the boundary already has
// whitespace on either side.
func (s *Store) AppendUserFragment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseCollecting {
		return ErrNoActiveTurn
	}
	if text == "" {
		return nil
	}

	if s.hasUser && needsSeparator(s.user.String(), text) {
		s.user.WriteByte(' ')
	}
	s.user.WriteString(text)
	s.hasUser = true
	return nil
}

func needsSeparator(left, right string) bool {
	last, _ := utf8.DecodeLastRuneInString(left)
	first, _ := utf8.DecodeRuneInString(right)
	return !unicode.IsSpace(last) && !unicode.IsSpace(first)
}

// CommitUserMessage closes the user side of the turn and returns the
// conversation to send to the language model.
func (s *Store) CommitUserMessage() ([]llms.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseCollecting {
		return nil, ErrNoActiveTurn
	}
	if !s.hasUser || strings.TrimSpace(s.user.String()) == "" {
		s.phase = phaseClosed
		return nil, ErrNoPendingMessage
	}

	s.phase = phaseCommitted
	return s.messages(), nil
}

// AppendAssistantFragment adds reply text. Fragments are concatenated as
// they are, the model streams its own whitespace.
func (s *Store) AppendAssistantFragment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseCommitted {
		return ErrPrematureAssistantMessage
	}

	s.assistant.WriteString(text)
	s.hasReply = true
	return nil
}

// Messages returns a copy of the conversation in system, user, assistant
// order. The pending user message is included before commit.
func (s *Store) Messages() []llms.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messages()
}

func (s *Store) messages() []llms.Message {
	if s.phase == phaseNone {
		return nil
	}

	messages := make([]llms.Message, 0, 3)
	messages = append(messages, s.system)
	if s.hasUser {
		messages = append(messages, llms.UserMessage(s.user.String()))
	}
	if s.hasReply {
		messages = append(messages, llms.AssistantMessage(s.assistant.String()))
	}
	return messages
}

// AssistantMessage returns the reply collected so far.
func (s *Store) AssistantMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assistant.String()
}
