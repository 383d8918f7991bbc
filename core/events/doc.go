// Package events defines the typed dictation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - turn_signal.*
//   - user_input.*
//   - assistant_response.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Signal: an external instruction that drives the turn lifecycle.
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text/state for the current turn phase.
//
// Every event that belongs to a turn carries the turn ID assigned when the
// turn started. Late events can therefore be told apart from the current
// turn.
//
// turn_signal events
//
//   - TurnStart (turn_signal.start): begin a new recording turn, replacing any
//     turn still recording.
//   - TurnStopNatural (turn_signal.stop_natural): the speaker finished; the
//     transcription service may flush at its own pace.
//   - TurnStopForced (turn_signal.stop_forced): recording was cut; pending
//     audio is padded and flushed immediately.
//
// user_input events
//
//   - UserSpeechStarted (user_input.speech_started): speech activity began.
//   - UserSpeechEnded (user_input.speech_ended): speech activity ended.
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     mutable interim transcript snapshot.
//   - UserTranscriptSegment (user_input.transcript_segment): finalized,
//     append-only transcript segment accepted into the turn.
//   - UserTranscriptionFinalized (user_input.transcription_finalized): the
//     transcription service delivered everything for the turn.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed response
//     text segment.
//   - AssistantResponseFinal (assistant_response.final): full response text.
//   - AssistantResponseFailed (assistant_response.failed): the language model
//     stream failed.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a recording turn started.
//   - TurnContextReady (turn_state.context_ready): the user message was
//     committed and the conversation is ready for the language model.
//   - TurnCompleted (turn_state.completed): the reply was written back.
//   - TurnDiscarded (turn_state.discarded): the turn ended without any
//     transcript; no model call was made.
//   - TurnFailed (turn_state.failed): the turn failed.
//   - TurnCancelled (turn_state.cancelled): the turn was abandoned.
//   - TurnSignalIgnored (turn_state.signal_ignored): a signal arrived in a
//     state that does not accept it.
//   - FragmentRejected (turn_state.fragment_rejected): a text fragment could
//     not be added to the context.
package events
