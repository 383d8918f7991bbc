package speechtotext

// FinalizeMode selects how a transcription service flushes the utterance in
// progress when a recording turn stops.
type FinalizeMode int

const (
	// FinalizeSoft is the ordinary flush used after natural end of speech.
	// The detector already kept a lookback margin so no audio is added.
	FinalizeSoft FinalizeMode = iota
	// FinalizeHard is used after a manual stop. A short padding window is
	// submitted before the flush so the last word is not cut off.
	FinalizeHard
)

func (m FinalizeMode) String() string {
	switch m {
	case FinalizeSoft:
		return "soft"
	case FinalizeHard:
		return "hard"
	}
	return "unknown"
}
