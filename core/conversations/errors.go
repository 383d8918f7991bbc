package conversations

import "errors"

var (
	// ErrNoActiveTurn is returned for a user fragment or commit without an
	// open turn. It points at an ordering bug upstream.
	ErrNoActiveTurn = errors.New("no active turn")

	// ErrNoPendingMessage is returned when a turn is committed before any
	// transcript arrived. Callers discard the turn.
	ErrNoPendingMessage = errors.New("no pending user message")

	// ErrPrematureAssistantMessage is returned for an assistant fragment that
	// arrives before the user message of the turn was committed.
	ErrPrematureAssistantMessage = errors.New("assistant message before user message was committed")
)
