package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: encodingFormat(DefaultFormat)}
}

// EncodingInfo describes mono audio as it is sent to the transcription
// service.
type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

// BytesPerSecond returns the byte rate of the stream, or 0 when the format is
// unknown.
func (e EncodingInfo) BytesPerSecond() int {
	if byteSize := e.Format.ByteSize(); byteSize > 0 {
		return e.SampleRate * byteSize
	}
	return 0
}

// Silence returns d worth of silent audio in this encoding. The result is
// always aligned to whole samples.
func (e EncodingInfo) Silence(d time.Duration) []byte {
	byteSize := e.Format.ByteSize()
	if byteSize <= 0 || d <= 0 {
		return nil
	}

	samples := int(int64(e.SampleRate) * d.Milliseconds() / 1000)
	chunk := make([]byte, samples*byteSize)
	if silence := e.SilenceValue(); silence != 0 {
		for i := range chunk {
			chunk[i] = silence
		}
	}
	return chunk
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
