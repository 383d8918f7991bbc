package orchestration

import "github.com/koscakluka/ema-dictation/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newEventEmitter(handler func(events.Event)) eventEmitter {
	if handler == nil {
		return noopEventEmitter
	}
	return handler
}
