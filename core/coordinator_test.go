package orchestration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/koscakluka/ema-dictation/core/audio"
	"github.com/koscakluka/ema-dictation/core/conversations"
	"github.com/koscakluka/ema-dictation/core/events"
	"github.com/koscakluka/ema-dictation/core/llms"
	"github.com/koscakluka/ema-dictation/core/prompts"
	"github.com/koscakluka/ema-dictation/core/speechtotext"
)

var spanRecorder = tracetest.NewSpanRecorder()

func TestMain(m *testing.M) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder)))
	os.Exit(m.Run())
}

type speechToTextStub struct {
	autoAck bool

	ready     chan struct{}
	readyOnce sync.Once

	mu        sync.Mutex
	options   speechtotext.TranscriptionOptions
	finalizes []speechtotext.FinalizeMode
	audio     int
	closed    bool
}

func newSpeechToTextStub(autoAck bool) *speechToTextStub {
	return &speechToTextStub{autoAck: autoAck, ready: make(chan struct{})}
}

func (s *speechToTextStub) Transcribe(_ context.Context, opts ...speechtotext.TranscriptionOption) error {
	s.mu.Lock()
	for _, opt := range opts {
		opt(&s.options)
	}
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	return nil
}

func (s *speechToTextStub) SendAudio([]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio++
	return nil
}

func (s *speechToTextStub) Finalize(_ context.Context, mode speechtotext.FinalizeMode) error {
	s.mu.Lock()
	s.finalizes = append(s.finalizes, mode)
	s.mu.Unlock()

	if s.autoAck {
		s.ack()
	}
	return nil
}

func (s *speechToTextStub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *speechToTextStub) waitReady(t *testing.T) {
	t.Helper()
	select {
	case <-s.ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for transcription to start")
	}
}

func (s *speechToTextStub) fragment(t *testing.T, text string) {
	t.Helper()
	s.waitReady(t)
	s.mu.Lock()
	callback := s.options.PartialTranscriptionCallback
	s.mu.Unlock()
	callback(text)
}

func (s *speechToTextStub) ack() {
	s.mu.Lock()
	callback := s.options.FinalizedCallback
	s.mu.Unlock()
	callback()
}

func (s *speechToTextStub) finalizeModes() []speechtotext.FinalizeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]speechtotext.FinalizeMode(nil), s.finalizes...)
}

func (s *speechToTextStub) audioFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

type streamingLLMStub struct {
	chunks  []string
	err     error
	release chan struct{}

	mu    sync.Mutex
	calls [][]llms.Message
}

func (s *streamingLLMStub) PromptWithStream(_ context.Context, messages []llms.Message, _ ...llms.StreamingPromptOption) llms.Stream {
	s.mu.Lock()
	s.calls = append(s.calls, messages)
	s.mu.Unlock()
	return streamStub{llm: s}
}

func (s *streamingLLMStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type streamStub struct {
	llm *streamingLLMStub
}

func (s streamStub) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		if s.llm.release != nil {
			select {
			case <-s.llm.release:
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
		if s.llm.err != nil {
			yield(nil, s.llm.err)
			return
		}
		for _, chunk := range s.llm.chunks {
			if !yield(llms.ContentChunk{Text: chunk}, nil) {
				return
			}
		}
	}
}

type eventLog struct {
	ch chan events.Event
}

func newEventLog() *eventLog {
	return &eventLog{ch: make(chan events.Event, 512)}
}

func (l *eventLog) handle(event events.Event) {
	l.ch <- event
}

// waitFor returns the next event of the given kind and every event seen
// before it.
func (l *eventLog) waitFor(t *testing.T, kind events.Kind) (events.Event, []events.Event) {
	t.Helper()
	seen := []events.Event{}
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-l.ch:
			seen = append(seen, event)
			if event.Kind() == kind {
				return event, seen
			}
		case <-timeout:
			kinds := []events.Kind{}
			for _, event := range seen {
				kinds = append(kinds, event.Kind())
			}
			t.Fatalf("timed out waiting for %q, saw %v", kind, kinds)
			return nil, nil
		}
	}
}

func startCoordinator(t *testing.T, opts ...CoordinatorOption) (*TurnCoordinator, *eventLog) {
	t.Helper()
	log := newEventLog()
	coordinator := NewTurnCoordinator(append(opts, WithEventHandler(log.handle))...)

	ctx, cancel := context.WithCancel(context.Background())
	go coordinator.Run(ctx)
	t.Cleanup(func() {
		coordinator.Close()
		cancel()
	})
	return coordinator, log
}

func eventually(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func assertConversation(t *testing.T, got []llms.Message, want ...llms.Message) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestForcedStopTurnWritesReplyIntoContext(t *testing.T) {
	stt := newSpeechToTextStub(true)
	llm := &streamingLLMStub{chunks: []string{"do", "ne"}}
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt), WithStreamingLLM(llm))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "test")
	coordinator.Signal(events.NewTurnStopForced())

	event, _ := log.waitFor(t, events.KindTurnCompleted)
	completed := event.(events.TurnCompleted)

	system := llms.SystemMessage(prompts.Compose(prompts.DefaultSectionConfig()))
	assertConversation(t, completed.Messages, system, llms.UserMessage("test"), llms.AssistantMessage("done"))
	assertConversation(t, coordinator.Messages(), system, llms.UserMessage("test"), llms.AssistantMessage("done"))

	modes := stt.finalizeModes()
	if len(modes) != 1 || modes[0] != speechtotext.FinalizeHard {
		t.Fatalf("expected a single hard finalize, got %v", modes)
	}
}

func TestNaturalStopJoinsFragmentsAndRequestsSoftFinalize(t *testing.T) {
	stt := newSpeechToTextStub(true)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "um ")
	stt.fragment(t, "hello")
	coordinator.Signal(events.NewTurnStopNatural())

	event, _ := log.waitFor(t, events.KindTurnContextReady)
	ready := event.(events.TurnContextReady)
	if len(ready.Messages) != 2 || ready.Messages[1] != llms.UserMessage("um hello") {
		t.Fatalf("unexpected committed conversation %+v", ready.Messages)
	}

	log.waitFor(t, events.KindTurnCompleted)
	modes := stt.finalizeModes()
	if len(modes) != 1 || modes[0] != speechtotext.FinalizeSoft {
		t.Fatalf("expected a single soft finalize, got %v", modes)
	}
}

func TestEmptyTurnIsDiscardedWithoutModelCall(t *testing.T) {
	stt := newSpeechToTextStub(true)
	llm := &streamingLLMStub{chunks: []string{"unused"}}
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt), WithStreamingLLM(llm))

	coordinator.Signal(events.NewTurnStart())
	coordinator.Signal(events.NewTurnStopNatural())

	event, seen := log.waitFor(t, events.KindTurnDiscarded)
	if !errors.Is(event.(events.TurnDiscarded).Reason, conversations.ErrNoPendingMessage) {
		t.Fatalf("expected ErrNoPendingMessage, got %v", event.(events.TurnDiscarded).Reason)
	}
	for _, e := range seen {
		if e.Kind() == events.KindTurnContextReady {
			t.Fatalf("did not expect the context to become ready")
		}
	}
	if got := llm.callCount(); got != 0 {
		t.Fatalf("expected no model call, got %d", got)
	}
}

func TestSecondStartReplacesFirstTurn(t *testing.T) {
	stt := newSpeechToTextStub(true)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))

	coordinator.Signal(events.NewTurnStart())
	first, _ := log.waitFor(t, events.KindTurnStarted)
	stt.fragment(t, "first")
	coordinator.Signal(events.NewTurnStart())

	cancelled, _ := log.waitFor(t, events.KindTurnCancelled)
	if cancelled.(events.TurnCancelled).TurnID != first.(events.TurnStarted).TurnID {
		t.Fatalf("expected the first turn to be cancelled")
	}
	second, _ := log.waitFor(t, events.KindTurnStarted)
	if second.(events.TurnStarted).TurnID == first.(events.TurnStarted).TurnID {
		t.Fatalf("expected a new turn ID")
	}

	stt.fragment(t, "second")
	coordinator.Signal(events.NewTurnStopNatural())

	event, _ := log.waitFor(t, events.KindTurnContextReady)
	ready := event.(events.TurnContextReady)
	if ready.TurnID != second.(events.TurnStarted).TurnID {
		t.Fatalf("expected the second turn to be committed")
	}
	if len(ready.Messages) != 2 || ready.Messages[1] != llms.UserMessage("second") {
		t.Fatalf("expected only the second turn's transcript, got %+v", ready.Messages)
	}
}

func TestSignalsWhileFinalizingAreIgnored(t *testing.T) {
	stt := newSpeechToTextStub(false)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "hello")
	coordinator.Signal(events.NewTurnStopNatural())
	coordinator.Signal(events.NewTurnStopForced())
	coordinator.Signal(events.NewTurnStart())

	for _, signal := range []events.Kind{events.KindTurnStopForced, events.KindTurnStart} {
		event, _ := log.waitFor(t, events.KindTurnSignalIgnored)
		ignored := event.(events.TurnSignalIgnored)
		if ignored.Signal != signal || ignored.State != TurnStateFinalizing.String() {
			t.Fatalf("unexpected ignored signal %+v", ignored)
		}
		if !errors.Is(ignored.Err, ErrProtocolViolation) {
			t.Fatalf("expected ErrProtocolViolation, got %v", ignored.Err)
		}
	}

	eventually(t, func() bool { return len(stt.finalizeModes()) == 1 })
	stt.ack()

	event, _ := log.waitFor(t, events.KindTurnContextReady)
	if messages := event.(events.TurnContextReady).Messages; messages[1] != llms.UserMessage("hello") {
		t.Fatalf("unexpected committed conversation %+v", messages)
	}
	if modes := stt.finalizeModes(); len(modes) != 1 || modes[0] != speechtotext.FinalizeSoft {
		t.Fatalf("expected only the soft finalize, got %v", modes)
	}
}

func TestStopWhileIdleIsIgnored(t *testing.T) {
	coordinator, log := startCoordinator(t)

	coordinator.Signal(events.NewTurnStopForced())

	event, _ := log.waitFor(t, events.KindTurnSignalIgnored)
	ignored := event.(events.TurnSignalIgnored)
	if ignored.State != TurnStateIdle.String() || !errors.Is(ignored.Err, ErrProtocolViolation) {
		t.Fatalf("unexpected ignored signal %+v", ignored)
	}
}

func TestStrayTranscriptFragmentIsRejected(t *testing.T) {
	stt := newSpeechToTextStub(true)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))

	stt.fragment(t, "stray")

	event, _ := log.waitFor(t, events.KindFragmentRejected)
	rejected := event.(events.FragmentRejected)
	if !errors.Is(rejected.Err, conversations.ErrNoActiveTurn) || rejected.Fragment != "stray" {
		t.Fatalf("unexpected rejection %+v", rejected)
	}

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "kept")
	coordinator.Signal(events.NewTurnStopNatural())

	ready, _ := log.waitFor(t, events.KindTurnContextReady)
	if messages := ready.(events.TurnContextReady).Messages; messages[1] != llms.UserMessage("kept") {
		t.Fatalf("expected the pipeline to keep working, got %+v", messages)
	}
}

func TestModelFailureFailsTurnWithoutRetry(t *testing.T) {
	stt := newSpeechToTextStub(true)
	llm := &streamingLLMStub{err: errors.New("model unavailable")}
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt), WithStreamingLLM(llm))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "hello")
	coordinator.Signal(events.NewTurnStopNatural())

	log.waitFor(t, events.KindAssistantResponseFailed)
	event, _ := log.waitFor(t, events.KindTurnFailed)
	if event.(events.TurnFailed).Err == nil {
		t.Fatalf("expected the failure to be reported")
	}
	if got := llm.callCount(); got != 1 {
		t.Fatalf("expected a single model call, got %d", got)
	}
	eventually(t, func() bool { return coordinator.State() == TurnStateIdle })
}

func TestStartDuringReplyWaitsForReplyToFinish(t *testing.T) {
	stt := newSpeechToTextStub(true)
	llm := &streamingLLMStub{chunks: []string{"reply"}, release: make(chan struct{})}
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt), WithStreamingLLM(llm))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "one")
	coordinator.Signal(events.NewTurnStopNatural())
	first, _ := log.waitFor(t, events.KindTurnContextReady)

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "two")
	coordinator.Signal(events.NewTurnStopNatural())
	close(llm.release)

	completed, seen := log.waitFor(t, events.KindTurnCompleted)
	if completed.(events.TurnCompleted).TurnID != first.(events.TurnContextReady).TurnID {
		t.Fatalf("expected the first turn to complete first")
	}
	for _, event := range seen {
		if event.Kind() == events.KindTurnStarted || event.Kind() == events.KindFragmentRejected {
			t.Fatalf("next turn was processed before the reply finished: %s", event.Kind())
		}
	}
	assertConversation(t, completed.(events.TurnCompleted).Messages,
		llms.SystemMessage(prompts.Compose(prompts.DefaultSectionConfig())),
		llms.UserMessage("one"),
		llms.AssistantMessage("reply"),
	)

	second, _ := log.waitFor(t, events.KindTurnCompleted)
	if messages := second.(events.TurnCompleted).Messages; len(messages) != 3 || messages[1] != llms.UserMessage("two") {
		t.Fatalf("unexpected second turn conversation %+v", messages)
	}
}

func TestAbandonCancelsTurnInProgress(t *testing.T) {
	stt := newSpeechToTextStub(true)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))

	coordinator.Signal(events.NewTurnStart())
	started, _ := log.waitFor(t, events.KindTurnStarted)
	stt.fragment(t, "pending")
	coordinator.Abandon()

	cancelled, _ := log.waitFor(t, events.KindTurnCancelled)
	if cancelled.(events.TurnCancelled).TurnID != started.(events.TurnStarted).TurnID {
		t.Fatalf("expected the started turn to be cancelled")
	}
	eventually(t, func() bool { return coordinator.State() == TurnStateIdle })
	if messages := coordinator.Messages(); messages != nil {
		t.Fatalf("expected pending content to be dropped, got %+v", messages)
	}
}

func TestPromptSectionsApplyOnNextTurn(t *testing.T) {
	coordinator, log := startCoordinator(t)

	coordinator.Signal(events.NewTurnStart())
	log.waitFor(t, events.KindTurnStarted)

	override := prompts.SectionConfig{MainOverride: "Only fix punctuation."}
	coordinator.SetPromptSections(override)

	eventually(t, func() bool { return coordinator.State() == TurnStateRecording })
	if messages := coordinator.Messages(); messages[0] != llms.SystemMessage(prompts.Compose(prompts.DefaultSectionConfig())) {
		t.Fatalf("expected the running turn to keep its instruction, got %+v", messages[0])
	}

	coordinator.Signal(events.NewTurnStopNatural())
	log.waitFor(t, events.KindTurnDiscarded)

	coordinator.Signal(events.NewTurnStart())
	log.waitFor(t, events.KindTurnStarted)
	eventually(t, func() bool { return coordinator.State() == TurnStateRecording })
	if messages := coordinator.Messages(); messages[0] != llms.SystemMessage("Only fix punctuation.") {
		t.Fatalf("expected the new instruction, got %+v", messages[0])
	}
}

func TestAudioIsForwardedOnlyDuringTurn(t *testing.T) {
	stt := newSpeechToTextStub(true)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))
	stt.waitReady(t)

	if err := coordinator.SendAudio([]byte{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stt.audioFrames(); got != 0 {
		t.Fatalf("expected audio outside a turn to be dropped, got %d frames", got)
	}

	coordinator.Signal(events.NewTurnStart())
	log.waitFor(t, events.KindTurnStarted)
	eventually(t, func() bool { return coordinator.State() == TurnStateRecording })

	if err := coordinator.SendAudio([]byte{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stt.audioFrames(); got != 1 {
		t.Fatalf("expected audio during a turn to be forwarded, got %d frames", got)
	}
}

func TestAudioAfterStopIsDropped(t *testing.T) {
	stt := newSpeechToTextStub(false)
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt))
	stt.waitReady(t)

	coordinator.Signal(events.NewTurnStart())
	log.waitFor(t, events.KindTurnStarted)
	coordinator.Signal(events.NewTurnStopForced())
	eventually(t, func() bool { return len(stt.finalizeModes()) == 1 })
	eventually(t, func() bool { return coordinator.State() == TurnStateFinalizing })

	if err := coordinator.SendAudio([]byte{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stt.audioFrames(); got != 0 {
		t.Fatalf("expected audio after the stop to be dropped, got %d frames", got)
	}
}

func TestWithoutSpeechToTextStopCommitsImmediately(t *testing.T) {
	coordinator, log := startCoordinator(t)

	coordinator.Signal(events.NewTurnStart())
	coordinator.Signal(events.NewTurnStopForced())

	log.waitFor(t, events.KindTurnDiscarded)
	eventually(t, func() bool { return coordinator.State() == TurnStateIdle })
}

func TestCloseAbandonsTurnAndStopsAcceptingSignals(t *testing.T) {
	stt := newSpeechToTextStub(true)
	log := newEventLog()
	coordinator := NewTurnCoordinator(WithSpeechToTextClient(stt), WithEventHandler(log.handle))

	go coordinator.Run(context.Background())
	coordinator.Signal(events.NewTurnStart())
	log.waitFor(t, events.KindTurnStarted)

	coordinator.Close()
	log.waitFor(t, events.KindTurnCancelled)

	if coordinator.Signal(events.NewTurnStart()) {
		t.Fatalf("expected signals to be refused after close")
	}
	stt.mu.Lock()
	closed := stt.closed
	stt.mu.Unlock()
	if !closed {
		t.Fatalf("expected the transcription client to be closed")
	}
}

func TestCancelledRunRefusesInput(t *testing.T) {
	coordinator := NewTurnCoordinator()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coordinator.Run(ctx) }()
	eventually(t, func() bool { return coordinator.runtime.started.Load() })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	refused := make(chan bool, 1)
	go func() {
		for i := 0; i < coordinatorQueueCapacity+1; i++ {
			if coordinator.Signal(events.NewTurnStart()) {
				refused <- false
				return
			}
		}
		refused <- coordinator.Abandon() == false
	}()
	select {
	case ok := <-refused:
		if !ok {
			t.Fatalf("expected input to be refused after Run returned")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Signal blocked after Run returned")
	}
	coordinator.Close()
}

type failingSpeechToText struct{}

func (failingSpeechToText) Transcribe(context.Context, ...speechtotext.TranscriptionOption) error {
	return errors.New("dial refused")
}

func (failingSpeechToText) SendAudio([]byte) error { return nil }

type audioInputStub struct {
	mu     sync.Mutex
	closed bool
}

func (a *audioInputStub) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (a *audioInputStub) Stream(context.Context, func([]byte)) error { return nil }

func (a *audioInputStub) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func TestAudioInputClosedWhenTranscriptionFailsToStart(t *testing.T) {
	input := &audioInputStub{}
	coordinator := NewTurnCoordinator(WithSpeechToTextClient(failingSpeechToText{}), WithAudioInput(input))

	if err := coordinator.Run(context.Background()); err == nil {
		t.Fatalf("expected Run to report the transcription failure")
	}
	input.mu.Lock()
	closed := input.closed
	input.mu.Unlock()
	if !closed {
		t.Fatalf("expected the audio input to be closed")
	}
	if coordinator.Signal(events.NewTurnStart()) {
		t.Fatalf("expected signals to be refused after Run failed")
	}
}

func TestRunTwiceFails(t *testing.T) {
	coordinator, _ := startCoordinator(t)
	eventually(t, func() bool { return coordinator.runtime.started.Load() })

	if err := coordinator.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestTurnSpanRecordsOutcome(t *testing.T) {
	stt := newSpeechToTextStub(true)
	llm := &streamingLLMStub{chunks: []string{"ok"}}
	coordinator, log := startCoordinator(t, WithSpeechToTextClient(stt), WithStreamingLLM(llm))

	coordinator.Signal(events.NewTurnStart())
	stt.fragment(t, "trace me")
	coordinator.Signal(events.NewTurnStopNatural())

	event, _ := log.waitFor(t, events.KindTurnCompleted)
	turnID := event.(events.TurnCompleted).TurnID

	var turnSpan sdktrace.ReadOnlySpan
	generationFound := false
	for _, span := range spanRecorder.Ended() {
		if !hasAttribute(span.Attributes(), attribute.String("turn.id", turnID)) {
			continue
		}
		switch span.Name() {
		case "dictation turn":
			turnSpan = span
		case "generate reply":
			generationFound = true
		}
	}

	if turnSpan == nil {
		t.Fatalf("expected an ended turn span for %s", turnID)
	}
	if !hasAttribute(turnSpan.Attributes(), attribute.String("turn.outcome", "completed")) {
		t.Fatalf("expected completed outcome, got %v", turnSpan.Attributes())
	}
	if !generationFound {
		t.Fatalf("expected a generation span for %s", turnID)
	}
}

func hasAttribute(attributes []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, attr := range attributes {
		if attr.Key == want.Key && attr.Value.Emit() == want.Value.Emit() {
			return true
		}
	}
	return false
}
