package orchestration

import (
	"errors"

	"github.com/koscakluka/ema-dictation/core/speechtotext"
)

// ErrProtocolViolation reports a signal that the current turn state does not
// accept. It is logged and ignored.
var ErrProtocolViolation = errors.New("turn signal not accepted in current state")

type TurnState int32

const (
	TurnStateIdle TurnState = iota
	TurnStateRecording
	TurnStateFinalizing
)

func (s TurnState) String() string {
	switch s {
	case TurnStateIdle:
		return "idle"
	case TurnStateRecording:
		return "recording"
	case TurnStateFinalizing:
		return "finalizing"
	}
	return "unknown"
}

type turnInput int

const (
	inputStart turnInput = iota
	inputStopNatural
	inputStopForced
	inputFinalized
	inputAbandon
)

func (i turnInput) String() string {
	switch i {
	case inputStart:
		return "start"
	case inputStopNatural:
		return "stop_natural"
	case inputStopForced:
		return "stop_forced"
	case inputFinalized:
		return "finalized"
	case inputAbandon:
		return "abandon"
	}
	return "unknown"
}

type commandKind int

const (
	commandReset commandKind = iota
	commandFinalize
	commandCommit
	commandAbandon
)

type command struct {
	kind commandKind
	// mode is only set for commandFinalize
	mode speechtotext.FinalizeMode
}

type transitionResult struct {
	next     TurnState
	commands []command
	// err is ErrProtocolViolation when the input was ignored
	err error
	// stale is set for a finalize acknowledgement nobody is waiting for
	stale bool
}

// transition is the whole turn lifecycle. It has no side effects, the caller
// executes the returned commands in order.
func transition(state TurnState, input turnInput) transitionResult {
	if input == inputAbandon {
		return transitionResult{next: TurnStateIdle, commands: []command{{kind: commandAbandon}}}
	}

	switch state {
	case TurnStateIdle:
		switch input {
		case inputStart:
			return transitionResult{next: TurnStateRecording, commands: []command{{kind: commandReset}}}
		case inputFinalized:
			return transitionResult{next: state, stale: true}
		}

	case TurnStateRecording:
		switch input {
		case inputStart:
			return transitionResult{next: TurnStateRecording, commands: []command{{kind: commandReset}}}
		case inputStopNatural:
			return transitionResult{next: TurnStateFinalizing, commands: []command{{kind: commandFinalize, mode: speechtotext.FinalizeSoft}}}
		case inputStopForced:
			return transitionResult{next: TurnStateFinalizing, commands: []command{{kind: commandFinalize, mode: speechtotext.FinalizeHard}}}
		case inputFinalized:
			return transitionResult{next: state, stale: true}
		}

	case TurnStateFinalizing:
		if input == inputFinalized {
			return transitionResult{next: TurnStateIdle, commands: []command{{kind: commandCommit}}}
		}
	}

	return transitionResult{next: state, err: ErrProtocolViolation}
}
