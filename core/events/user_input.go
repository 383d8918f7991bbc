package events

const (
	// KindUserSpeechStarted identifies start of user speech activity.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies end of user speech activity.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserTranscriptInterimUpdated identifies mutable interim transcript updates.
	KindUserTranscriptInterimUpdated Kind = "user_input.transcript_interim_updated"
	// KindUserTranscriptSegment identifies finalized append-only transcript segments.
	KindUserTranscriptSegment Kind = "user_input.transcript_segment"
	// KindUserTranscriptionFinalized identifies the end of transcription for a turn.
	KindUserTranscriptionFinalized Kind = "user_input.transcription_finalized"
)

// UserSpeechStarted marks when user speech activity starts.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks when user speech activity ends.
type UserSpeechEnded struct{ Base }

// NewUserSpeechEnded creates a user speech ended event.
func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// UserTranscriptInterimUpdated carries the mutable interim transcript snapshot.
type UserTranscriptInterimUpdated struct {
	Base
	Transcript string
}

// NewUserTranscriptInterimUpdated creates an interim transcript snapshot update event.
func NewUserTranscriptInterimUpdated(transcript string) UserTranscriptInterimUpdated {
	return UserTranscriptInterimUpdated{Base: NewBase(KindUserTranscriptInterimUpdated), Transcript: transcript}
}

// UserTranscriptSegment carries a finalized transcript segment accepted into
// the turn.
type UserTranscriptSegment struct {
	Base
	TurnID  string
	Segment string
}

// NewUserTranscriptSegment creates a finalized transcript segment event.
func NewUserTranscriptSegment(turnID, segment string) UserTranscriptSegment {
	return UserTranscriptSegment{Base: NewBase(KindUserTranscriptSegment), TurnID: turnID, Segment: segment}
}

// UserTranscriptionFinalized carries the committed user message of a turn.
// Mode is the finalize mode that was requested, "soft" or "hard".
type UserTranscriptionFinalized struct {
	Base
	TurnID     string
	Mode       string
	Transcript string
}

// NewUserTranscriptionFinalized creates a transcription finalized event.
func NewUserTranscriptionFinalized(turnID, mode, transcript string) UserTranscriptionFinalized {
	return UserTranscriptionFinalized{
		Base:       NewBase(KindUserTranscriptionFinalized),
		TurnID:     turnID,
		Mode:       mode,
		Transcript: transcript,
	}
}
