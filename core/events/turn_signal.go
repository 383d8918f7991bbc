package events

const (
	KindTurnStart       Kind = "turn_signal.start"
	KindTurnStopNatural Kind = "turn_signal.stop_natural"
	KindTurnStopForced  Kind = "turn_signal.stop_forced"
)

// TurnSignal is implemented only by TurnStart, TurnStopNatural and
// TurnStopForced.
type TurnSignal interface {
	Event
	turnSignal()
}

type TurnStart struct{ Base }

func NewTurnStart() TurnStart {
	return TurnStart{Base: NewBase(KindTurnStart)}
}

type TurnStopNatural struct{ Base }

func NewTurnStopNatural() TurnStopNatural {
	return TurnStopNatural{Base: NewBase(KindTurnStopNatural)}
}

type TurnStopForced struct{ Base }

func NewTurnStopForced() TurnStopForced {
	return TurnStopForced{Base: NewBase(KindTurnStopForced)}
}

func (TurnStart) turnSignal()       {}
func (TurnStopNatural) turnSignal() {}
func (TurnStopForced) turnSignal()  {}
