package orchestration

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-dictation/core/events"
)

const coordinatorQueueCapacity = 64

// queueInput is anything the coordinator goroutine consumes. Inputs are
// processed strictly in the order they were enqueued.
type queueInput interface{ isQueueInput() }

type signalInput struct{ signal events.TurnSignal }
type abandonInput struct{}
type speechActivityInput struct{ speaking bool }
type interimTranscriptInput struct{ transcript string }
type transcriptSegmentInput struct{ segment string }
type finalizedInput struct{}
type finalizeFailedInput struct {
	turnID string
	err    error
}
type responseSegmentInput struct {
	turnID  string
	segment string
}
type responseDoneInput struct {
	turnID string
	err    error
}

func (signalInput) isQueueInput()            {}
func (abandonInput) isQueueInput()           {}
func (speechActivityInput) isQueueInput()    {}
func (interimTranscriptInput) isQueueInput() {}
func (transcriptSegmentInput) isQueueInput() {}
func (finalizedInput) isQueueInput()         {}
func (finalizeFailedInput) isQueueInput()    {}
func (responseSegmentInput) isQueueInput()   {}
func (responseDoneInput) isQueueInput()      {}

type queueItem struct {
	input    queueInput
	queuedAt time.Time
}

type coordinatorRuntime struct {
	queue   chan queueItem
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once

	started atomic.Bool
}

func newCoordinatorRuntime() *coordinatorRuntime {
	return &coordinatorRuntime{
		queue:   make(chan queueItem, coordinatorQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start reports true exactly once.
func (runtime *coordinatorRuntime) start() (started bool) {
	runtime.startOnce.Do(func() {
		started = true
		runtime.started.Store(true)
	})
	return started
}

func (runtime *coordinatorRuntime) close() {
	runtime.closeOnce.Do(func() {
		close(runtime.closeCh)
	})
}

func (runtime *coordinatorRuntime) waitUntilDone() {
	if runtime.started.Load() {
		<-runtime.done
	}
}

// enqueue blocks while the queue is full and reports false once the runtime
// is closed.
func (runtime *coordinatorRuntime) enqueue(input queueInput) bool {
	if runtime.isClosed() {
		return false
	}

	item := queueItem{input: input, queuedAt: time.Now()}
	select {
	case <-runtime.closeCh:
		return false
	case runtime.queue <- item:
		return true
	}
}

func (runtime *coordinatorRuntime) isClosed() bool {
	select {
	case <-runtime.closeCh:
		return true
	default:
		return false
	}
}
