package events

import "github.com/koscakluka/ema-dictation/core/llms"

const (
	KindTurnStarted       Kind = "turn_state.started"
	KindTurnContextReady  Kind = "turn_state.context_ready"
	KindTurnCompleted     Kind = "turn_state.completed"
	KindTurnDiscarded     Kind = "turn_state.discarded"
	KindTurnFailed        Kind = "turn_state.failed"
	KindTurnCancelled     Kind = "turn_state.cancelled"
	KindTurnSignalIgnored Kind = "turn_state.signal_ignored"
	KindFragmentRejected  Kind = "turn_state.fragment_rejected"
)

type TurnStarted struct {
	Base
	TurnID string
}

func NewTurnStarted(turnID string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID}
}

// TurnContextReady carries a snapshot of the conversation sent to the
// language model.
type TurnContextReady struct {
	Base
	TurnID   string
	Messages []llms.Message
}

func NewTurnContextReady(turnID string, messages []llms.Message) TurnContextReady {
	return TurnContextReady{Base: NewBase(KindTurnContextReady), TurnID: turnID, Messages: messages}
}

// TurnCompleted carries the final conversation, including the reply.
type TurnCompleted struct {
	Base
	TurnID   string
	Messages []llms.Message
}

func NewTurnCompleted(turnID string, messages []llms.Message) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID, Messages: messages}
}

type TurnDiscarded struct {
	Base
	TurnID string
	Reason error
}

func NewTurnDiscarded(turnID string, reason error) TurnDiscarded {
	return TurnDiscarded{Base: NewBase(KindTurnDiscarded), TurnID: turnID, Reason: reason}
}

type TurnFailed struct {
	Base
	TurnID string
	Err    error
}

func NewTurnFailed(turnID string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Err: err}
}

// TurnCancelled marks an abandoned turn. TurnID is empty when nothing was in
// progress.
type TurnCancelled struct {
	Base
	TurnID string
}

func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}

// TurnSignalIgnored reports a signal that the turn state did not accept.
type TurnSignalIgnored struct {
	Base
	Signal Kind
	State  string
	Err    error
}

func NewTurnSignalIgnored(signal Kind, state string, err error) TurnSignalIgnored {
	return TurnSignalIgnored{Base: NewBase(KindTurnSignalIgnored), Signal: signal, State: state, Err: err}
}

// FragmentRejected reports a user or assistant fragment that could not be
// added to the context.
type FragmentRejected struct {
	Base
	TurnID   string
	Source   string
	Fragment string
	Err      error
}

func NewFragmentRejected(turnID, source, fragment string, err error) FragmentRejected {
	return FragmentRejected{
		Base:     NewBase(KindFragmentRejected),
		TurnID:   turnID,
		Source:   source,
		Fragment: fragment,
		Err:      err,
	}
}
