// Package orchestration runs dictation turns: it owns the turn context,
// drives the transcription service through the turn lifecycle and hands the
// committed conversation to a language model.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/ema-dictation/core/conversations"
	"github.com/koscakluka/ema-dictation/core/events"
	"github.com/koscakluka/ema-dictation/core/llms"
	"github.com/koscakluka/ema-dictation/core/prompts"
	"github.com/koscakluka/ema-dictation/core/speechtotext"
)

var (
	ErrCoordinatorClosed = errors.New("turn coordinator is closed")
	ErrAlreadyRunning    = errors.New("turn coordinator is already running")
)

const (
	fragmentSourceUser      = "user"
	fragmentSourceAssistant = "assistant"
)

// TurnCoordinator binds the turn state machine to the context store, the
// transcription service and the language model. All of its state is owned
// by the goroutine running Run, the exported methods only enqueue work.
type TurnCoordinator struct {
	store       *conversations.Store
	transcripts *TranscriptCollector
	responses   *ResponseCollector

	speechToText speechToText
	llm          llm
	audioInput   audioInput

	promptConfig atomic.Pointer[prompts.SectionConfig]

	eventHandler func(events.Event)
	emitEvent    eventEmitter

	runtime *coordinatorRuntime

	stateSnapshot atomic.Int32
	acceptAudio   atomic.Bool

	// owned by the Run goroutine
	baseContext      context.Context
	state            TurnState
	turnID           string
	turnCtx          context.Context
	turnSpan         trace.Span
	finalizeMode     speechtotext.FinalizeMode
	pendingFinalizes []string
	generatingTurn   string
	cancelGeneration context.CancelFunc
	// backlog holds inputs that arrived for the next turn while the reply of
	// the previous one was still streaming.
	backlog []queueItem
}

func NewTurnCoordinator(opts ...CoordinatorOption) *TurnCoordinator {
	store := conversations.NewStore()
	c := &TurnCoordinator{
		store:       store,
		transcripts: NewTranscriptCollector(store),
		responses:   NewResponseCollector(store),
		runtime:     newCoordinatorRuntime(),
		baseContext: context.Background(),
	}
	defaults := prompts.DefaultSectionConfig()
	c.promptConfig.Store(&defaults)
	c.speechToText.enqueue = c.runtime.enqueue
	c.audioInput.onInputAudio = c.forwardAudio

	for _, opt := range opts {
		opt(c)
	}
	c.emitEvent = newEventEmitter(c.eventHandler)

	return c
}

// Run processes turn inputs until ctx is done or Close is called. Any turn in
// progress is abandoned on the way out and the coordinator refuses further
// input.
func (c *TurnCoordinator) Run(ctx context.Context) error {
	if !c.runtime.start() {
		return ErrAlreadyRunning
	}
	defer close(c.runtime.done)
	// inputs queued after Run returns would never be processed
	defer c.runtime.close()

	if c.runtime.isClosed() {
		return ErrCoordinatorClosed
	}
	c.baseContext = ctx
	defer c.shutdown()

	if err := c.speechToText.Start(ctx, c.audioInput.EncodingInfo()); err != nil {
		return err
	}
	c.audioInput.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.runtime.closeCh:
			return nil
		case item := <-c.runtime.queue:
			c.process(item)
		}
	}
}

// Close stops the coordinator and waits for Run to return.
func (c *TurnCoordinator) Close() {
	c.runtime.close()
	c.runtime.waitUntilDone()
}

// Signal queues a turn signal. It reports false once the coordinator is
// closed.
func (c *TurnCoordinator) Signal(signal events.TurnSignal) bool {
	if signal == nil {
		return false
	}
	return c.runtime.enqueue(signalInput{signal: signal})
}

// Abandon drops whatever turn is in progress, including a reply that is
// still streaming.
func (c *TurnCoordinator) Abandon() bool {
	return c.runtime.enqueue(abandonInput{})
}

// SetPromptSections takes effect on the next turn start. A turn in progress
// keeps the instruction it started with.
func (c *TurnCoordinator) SetPromptSections(config prompts.SectionConfig) {
	c.promptConfig.Store(&config)
}

func (c *TurnCoordinator) PromptSections() prompts.SectionConfig {
	return *c.promptConfig.Load()
}

func (c *TurnCoordinator) State() TurnState {
	return TurnState(c.stateSnapshot.Load())
}

// Messages returns a snapshot of the current or last turn's conversation.
func (c *TurnCoordinator) Messages() []llms.Message {
	return c.store.Messages()
}

// SendAudio forwards audio to the transcription service while a turn is
// recording. Audio captured after a stop is dropped, the transcription client
// pads a hard finalize itself.
func (c *TurnCoordinator) SendAudio(audio []byte) error {
	if !c.acceptAudio.Load() {
		return nil
	}
	return c.speechToText.SendAudio(audio)
}

func (c *TurnCoordinator) forwardAudio(audio []byte) {
	if err := c.SendAudio(audio); err != nil {
		logger.Debug("failed to forward audio", "error", err)
	}
}

func (c *TurnCoordinator) process(item queueItem) {
	if c.holdBack(item.input) {
		c.backlog = append(c.backlog, item)
		c.refreshSnapshots()
		return
	}

	c.handle(item)
	c.replayBacklog()
	c.refreshSnapshots()
}

func (c *TurnCoordinator) holdBack(input queueInput) bool {
	switch input.(type) {
	case responseSegmentInput, responseDoneInput, abandonInput,
		speechActivityInput, interimTranscriptInput:
		return false
	}

	if len(c.backlog) > 0 {
		return true
	}
	if c.generatingTurn == "" {
		return false
	}
	signal, ok := input.(signalInput)
	return ok && signal.signal.Kind() == events.KindTurnStart
}

func (c *TurnCoordinator) replayBacklog() {
	for len(c.backlog) > 0 && c.generatingTurn == "" {
		item := c.backlog[0]
		c.backlog = c.backlog[1:]
		c.handle(item)
	}
}

func (c *TurnCoordinator) refreshSnapshots() {
	startPending := slices.ContainsFunc(c.backlog, func(item queueItem) bool {
		signal, ok := item.input.(signalInput)
		return ok && signal.signal.Kind() == events.KindTurnStart
	})
	c.acceptAudio.Store(c.state == TurnStateRecording || startPending)
	c.stateSnapshot.Store(int32(c.state))
}

func (c *TurnCoordinator) handle(item queueItem) {
	switch input := item.input.(type) {
	case signalInput:
		c.handleSignal(item, input.signal)
	case abandonInput:
		c.apply(inputAbandon)
	case speechActivityInput:
		if input.speaking {
			c.emitEvent(events.NewUserSpeechStarted())
		} else {
			c.emitEvent(events.NewUserSpeechEnded())
		}
	case interimTranscriptInput:
		c.emitEvent(events.NewUserTranscriptInterimUpdated(input.transcript))
	case transcriptSegmentInput:
		c.handleTranscriptSegment(input.segment)
	case finalizedInput:
		c.handleFinalized()
	case finalizeFailedInput:
		c.handleFinalizeFailed(input)
	case responseSegmentInput:
		c.handleResponseSegment(input)
	case responseDoneInput:
		c.handleResponseDone(input)
	}
}

func (c *TurnCoordinator) handleSignal(item queueItem, signal events.TurnSignal) {
	var input turnInput
	switch signal.(type) {
	case events.TurnStart:
		input = inputStart
	case events.TurnStopNatural:
		input = inputStopNatural
	case events.TurnStopForced:
		input = inputStopForced
	default:
		logger.WarnContext(c.context(), "unknown turn signal", "kind", signal.Kind())
		return
	}

	if c.turnSpan != nil {
		c.turnSpan.AddEvent("signal received", trace.WithAttributes(
			attribute.String("signal", string(signal.Kind())),
			attribute.Float64("signal.queued_time", time.Since(item.queuedAt).Seconds()),
		))
	}
	c.apply(input)
}

func (c *TurnCoordinator) apply(input turnInput) {
	result := transition(c.state, input)
	if result.err != nil {
		logger.WarnContext(c.context(), "ignoring turn signal",
			"signal", input.String(),
			"state", c.state.String(),
			"turn_id", c.turnID,
			"error", result.err,
		)
		c.emitEvent(events.NewTurnSignalIgnored(signalKind(input), c.state.String(), result.err))
		return
	}
	if result.stale {
		logger.DebugContext(c.context(), "ignoring stale finalize acknowledgement", "state", c.state.String())
		return
	}

	c.state = result.next
	for _, cmd := range result.commands {
		switch cmd.kind {
		case commandReset:
			c.resetTurn()
		case commandFinalize:
			c.requestFinalize(cmd.mode)
		case commandCommit:
			c.commitTurn()
		case commandAbandon:
			c.abandonTurn()
		}
	}
}

func signalKind(input turnInput) events.Kind {
	switch input {
	case inputStart:
		return events.KindTurnStart
	case inputStopNatural:
		return events.KindTurnStopNatural
	case inputStopForced:
		return events.KindTurnStopForced
	}
	return events.Kind(input.String())
}

func (c *TurnCoordinator) resetTurn() {
	if c.turnID != "" {
		c.cancelTurn("replaced by a new turn")
	}

	config := c.PromptSections()
	sectionNames := []string{}
	for _, section := range prompts.Sections(config) {
		sectionNames = append(sectionNames, string(section.Name))
	}

	c.turnID = uuid.NewString()
	c.turnCtx, c.turnSpan = tracer.Start(c.baseContext, "dictation turn", trace.WithAttributes(
		attribute.String("turn.id", c.turnID),
		attribute.StringSlice("prompt.sections", sectionNames),
	))

	c.store.Reset(prompts.Compose(config))
	c.transcripts.Open(c.turnID)
	c.responses.Disarm()

	logger.DebugContext(c.turnCtx, "turn started", "turn_id", c.turnID)
	c.emitEvent(events.NewTurnStarted(c.turnID))
}

func (c *TurnCoordinator) requestFinalize(mode speechtotext.FinalizeMode) {
	c.finalizeMode = mode
	turnID := c.turnID
	c.pendingFinalizes = append(c.pendingFinalizes, turnID)
	c.turnSpan.AddEvent("finalize requested", trace.WithAttributes(attribute.String("finalize.mode", mode.String())))

	if !c.speechToText.supportsFinalize() {
		c.handleFinalized()
		return
	}

	ctx := c.turnCtx
	finalize := panicSafeNamedWorker("finalize transcription", func(ctx context.Context) error {
		return c.speechToText.Finalize(ctx, mode)
	})
	go func() {
		if err := finalize(ctx); err != nil {
			c.runtime.enqueue(finalizeFailedInput{turnID: turnID, err: err})
		}
	}()
}

func (c *TurnCoordinator) handleFinalized() {
	if len(c.pendingFinalizes) == 0 {
		logger.DebugContext(c.context(), "finalize acknowledged without a request")
		return
	}

	ackTurn := c.pendingFinalizes[0]
	c.pendingFinalizes = c.pendingFinalizes[1:]
	if ackTurn != c.turnID {
		logger.DebugContext(c.context(), "ignoring finalize acknowledgement of an earlier turn", "turn_id", ackTurn)
		return
	}

	c.apply(inputFinalized)
}

func (c *TurnCoordinator) handleFinalizeFailed(input finalizeFailedInput) {
	if i := slices.Index(c.pendingFinalizes, input.turnID); i >= 0 {
		c.pendingFinalizes = slices.Delete(c.pendingFinalizes, i, i+1)
	}
	if input.turnID != c.turnID || c.state != TurnStateFinalizing {
		return
	}

	c.store.Abandon()
	c.failTurn(fmt.Errorf("failed to finalize transcription: %w", input.err))
}

func (c *TurnCoordinator) commitTurn() {
	turnID := c.turnID
	messages, err := c.transcripts.Finalize()
	switch {
	case errors.Is(err, conversations.ErrNoPendingMessage):
		logger.InfoContext(c.context(), "discarding turn without transcript", "turn_id", turnID)
		c.endTurn("discarded", nil)
		c.emitEvent(events.NewTurnDiscarded(turnID, err))
		return
	case err != nil:
		c.failTurn(fmt.Errorf("failed to commit user message: %w", err))
		return
	}

	userMessage := messages[len(messages)-1].Content
	c.turnSpan.SetAttributes(attribute.Int("turn.user_message_length", len(userMessage)))
	c.emitEvent(events.NewUserTranscriptionFinalized(turnID, c.finalizeMode.String(), userMessage))
	c.emitEvent(events.NewTurnContextReady(turnID, messages))

	if !c.llm.isConfigured() {
		c.completeTurn()
		return
	}

	c.responses.Arm(turnID)
	c.startGeneration(turnID, messages)
}

func (c *TurnCoordinator) startGeneration(turnID string, messages []llms.Message) {
	ctx, cancel := context.WithCancel(c.turnCtx)
	c.generatingTurn = turnID
	c.cancelGeneration = cancel

	generate := panicSafeNamedWorker("llm generation", func(ctx context.Context) error {
		return c.llm.generate(ctx, turnID, messages, func(segment string) {
			c.runtime.enqueue(responseSegmentInput{turnID: turnID, segment: segment})
		})
	})
	go func() {
		defer cancel()
		err := generate(ctx)
		c.runtime.enqueue(responseDoneInput{turnID: turnID, err: err})
	}()
}

func (c *TurnCoordinator) handleTranscriptSegment(segment string) {
	if err := c.transcripts.Collect(segment); err != nil {
		logger.WarnContext(c.context(), "rejected transcript fragment",
			"state", c.state.String(),
			"error", err,
		)
		c.emitEvent(events.NewFragmentRejected(c.turnID, fragmentSourceUser, segment, err))
		return
	}

	c.emitEvent(events.NewUserTranscriptSegment(c.turnID, segment))
}

func (c *TurnCoordinator) handleResponseSegment(input responseSegmentInput) {
	if input.turnID != c.generatingTurn {
		logger.DebugContext(c.context(), "dropping reply segment of an earlier turn", "turn_id", input.turnID)
		return
	}

	accepted, err := c.responses.Collect(input.turnID, input.segment)
	if err != nil {
		logger.WarnContext(c.context(), "rejected reply fragment", "turn_id", input.turnID, "error", err)
		c.emitEvent(events.NewFragmentRejected(input.turnID, fragmentSourceAssistant, input.segment, err))
		return
	}
	if accepted {
		c.emitEvent(events.NewAssistantResponseSegment(input.turnID, input.segment))
	}
}

func (c *TurnCoordinator) handleResponseDone(input responseDoneInput) {
	if input.turnID != c.generatingTurn {
		return
	}
	c.generatingTurn = ""
	c.cancelGeneration = nil

	if input.err != nil {
		c.emitEvent(events.NewAssistantResponseFailed(input.turnID, input.err))
		c.failTurn(input.err)
		return
	}

	response, _ := c.responses.Finish(input.turnID)
	c.emitEvent(events.NewAssistantResponseFinal(input.turnID, response))
	c.completeTurn()
}

func (c *TurnCoordinator) completeTurn() {
	turnID := c.turnID
	c.endTurn("completed", nil)
	c.emitEvent(events.NewTurnCompleted(turnID, c.store.Messages()))
}

func (c *TurnCoordinator) failTurn(err error) {
	turnID := c.turnID
	c.stopGeneration()
	c.transcripts.Close()
	c.responses.Disarm()
	c.state = TurnStateIdle

	logger.ErrorContext(c.context(), "turn failed", "turn_id", turnID, "error", err)
	c.endTurn("failed", err)
	c.emitEvent(events.NewTurnFailed(turnID, err))
}

func (c *TurnCoordinator) abandonTurn() {
	c.backlog = nil
	if c.turnID == "" {
		return
	}
	c.cancelTurn("abandoned")
}

func (c *TurnCoordinator) cancelTurn(reason string) {
	turnID := c.turnID
	c.stopGeneration()
	c.store.Abandon()
	c.transcripts.Close()
	c.responses.Disarm()

	logger.InfoContext(c.context(), "turn cancelled", "turn_id", turnID, "reason", reason)
	c.endTurn("cancelled", nil)
	c.emitEvent(events.NewTurnCancelled(turnID))
}

func (c *TurnCoordinator) stopGeneration() {
	if c.cancelGeneration != nil {
		c.cancelGeneration()
		c.cancelGeneration = nil
	}
	c.generatingTurn = ""
}

func (c *TurnCoordinator) endTurn(outcome string, err error) {
	if c.turnSpan != nil {
		c.turnSpan.SetAttributes(attribute.String("turn.outcome", outcome))
		if err != nil {
			c.turnSpan.RecordError(err)
			c.turnSpan.SetStatus(codes.Error, err.Error())
		}
		c.turnSpan.End()
	}

	c.turnSpan = nil
	c.turnCtx = nil
	c.turnID = ""
}

func (c *TurnCoordinator) context() context.Context {
	if c.turnCtx != nil {
		return c.turnCtx
	}
	return c.baseContext
}

func (c *TurnCoordinator) shutdown() {
	c.apply(inputAbandon)
	c.refreshSnapshots()

	ctx := context.WithoutCancel(c.baseContext)
	if err := c.audioInput.Close(); err != nil {
		logger.WarnContext(ctx, "failed to close audio input", "error", err)
	}
	if err := c.speechToText.Close(ctx); err != nil {
		logger.WarnContext(ctx, "failed to close speech-to-text client", "error", err)
	}
}
