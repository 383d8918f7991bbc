package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/ema-dictation/core/audio"
	"github.com/koscakluka/ema-dictation/core/speechtotext"
	"github.com/koscakluka/ema-dictation/internal/utils"
)

var ErrNotConnected = errors.New("deepgram: transcription stream is not open")

const (
	messageTypeFinalize  = "Finalize"
	messageTypeKeepAlive = "KeepAlive"
)

func (s *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	cb, wsConfig := newCallbackConfig(*options)
	conn, err := s.connectWebsocket(ctx, connectionOptions{
		sampleRate:      encoding.SampleRate,
		encoding:        encoding.Format.Name(),
		websocketConfig: wsConfig,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.encoding = options.EncodingInfo
	s.callbacks = cb
	s.lastMsgTs = time.Now()
	s.audioSinceFinalize = false
	s.connMu.Unlock()

	go s.readAndProcessMessages(ctx, conn, cb)

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string

	websocketConfig
}

func (s *TranscriptionClient) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	apiKey := s.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("DEEPGRAM_API_KEY"); !ok {
			return nil, fmt.Errorf("deepgram api key not found")
		}
	}

	listenUrl, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url %q: %w", s.url, err)
	}
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", s.model)
	queryParams.Set("language", s.language)
	queryParams.Set("smart_format", "true")
	if options.shouldEnhanceSpeechEndingDetection {
		queryParams.Set("utterance_end_ms", "1000")
		queryParams.Set("interim_results", "true")
	} else if options.shouldRequestInterimResults {
		queryParams.Set("interim_results", "true")
	}
	queryParams.Set("endpointing", "300")
	if options.shouldDetectSpeechStart || options.shouldEnhanceSpeechEndingDetection {
		queryParams.Set("vad_events", "true")
	}

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// writeControl must be called with connMu held.
func (s *TranscriptionClient) writeControl(messageType string) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	msg, err := sonic.Marshal(struct {
		Type string `json:"type"`
	}{Type: messageType})
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", messageType, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("failed to write %s to deepgram client: %w", messageType, err)
	}
	return nil
}

func (s *TranscriptionClient) sendKeepAlive() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.writeControl(messageTypeKeepAlive); err != nil {
		logger.Warn("failed to send keep alive", "error", err)
	}
}

func (s *TranscriptionClient) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	s.lastMsgTs = time.Now()
	if len(audio) > 0 {
		s.audioSinceFinalize = true
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *TranscriptionClient) sendSilence(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// Finalize asks Deepgram to flush every transcript for the audio sent so far.
// The configured FinalizedCallback fires once the flushed results have been
// delivered. A hard finalize first pads the stream with silence so a trailing
// word that is still being spoken gets an endpoint.
//
// When no audio was sent since the previous finalize there is nothing to
// flush and the acknowledgement is delivered right away.
func (s *TranscriptionClient) Finalize(ctx context.Context, mode speechtotext.FinalizeMode) error {
	_, span := tracer.Start(ctx, "finalize transcription",
		trace.WithAttributes(attribute.String("finalize.mode", mode.String())))
	defer span.End()

	s.connMu.Lock()
	if s.conn == nil {
		s.connMu.Unlock()
		span.SetStatus(codes.Error, ErrNotConnected.Error())
		return ErrNotConnected
	}

	if mode == speechtotext.FinalizeHard && s.audioSinceFinalize {
		if padding := s.encoding.Silence(s.hardFinalizePadding); len(padding) > 0 {
			if err := s.conn.WriteMessage(websocket.BinaryMessage, padding); err != nil {
				s.connMu.Unlock()
				err = fmt.Errorf("failed to write finalize padding: %w", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			span.SetAttributes(attribute.Int("finalize.padding_bytes", len(padding)))
		}
	}

	if !s.audioSinceFinalize {
		finalized := s.callbacks.finalizedCallback
		s.connMu.Unlock()
		span.AddEvent("nothing to flush")
		if finalized != nil {
			finalized()
		}
		return nil
	}

	s.audioSinceFinalize = false
	err := s.writeControl(messageTypeFinalize)
	s.connMu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close asks Deepgram to close the stream and drops the connection without
// waiting for outstanding results.
func (s *TranscriptionClient) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return nil
	}
	closeErr := s.writeControl(string(api.TypeCloseStreamResponse))
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close deepgram stream: %w", closeErr)
	}
	err := errors.Join(closeErr, s.conn.Close())
	s.conn = nil
	return err
}

func (s *TranscriptionClient) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, cb callbacks) {
	silenceCtx, silenceCancel := context.WithCancel(ctx)
	defer silenceCancel()

	go s.generateSilence(silenceCtx, s.encoding)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && ctx.Err() == nil {
				logger.WarnContext(ctx, "failed to read deepgram websocket message", "error", err)
			}

			s.connMu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.connMu.Unlock()
			conn.Close()
			return
		}
		// Results have to be handled in arrival order, the finalize
		// acknowledgement is only meaningful after the segments before it.
		if msgType != websocket.BinaryMessage {
			s.processMessage(ctx, msg, cb)
		}
	}
}

type messageHeader struct {
	Type         string `json:"type"`
	FromFinalize bool   `json:"from_finalize"`
}

func (s *TranscriptionClient) processMessage(ctx context.Context, msg []byte, cb callbacks) {
	var header messageHeader
	if err := sonic.Unmarshal(msg, &header); err != nil {
		logger.WarnContext(ctx, "failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(header.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := sonic.Unmarshal(msg, &msgResp); err != nil {
			logger.WarnContext(ctx, "failed to unmarshal deepgram results", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}

		if msgResp.IsFinal {
			if len(transcript) > 0 {
				cb.partialTranscriptionCallback(transcript)
			}
			if msgResp.SpeechFinal {
				s.onSpeechEnded(cb)
			}
		} else if len(transcript) > 0 {
			cb.interimTranscriptionCallback(transcript)
		}

		if header.FromFinalize {
			if s.unendedSegment {
				s.onSpeechEnded(cb)
			}
			logger.DebugContext(ctx, "finalize acknowledged")
			cb.finalizedCallback()
		}

	case api.TypeUtteranceEndResponse:
		if s.unendedSegment {
			s.onSpeechEnded(cb)
		}

	case api.TypeSpeechStartedResponse:
		s.unendedSegment = true
		cb.startSpeechCallback()

	case api.TypeCloseStreamResponse:
		logger.DebugContext(ctx, "deepgram closed the stream")
	}
}

func (s *TranscriptionClient) onSpeechEnded(cb callbacks) {
	s.unendedSegment = false
	cb.endSpeechCallback()
}

func (s *TranscriptionClient) sinceLastMessage() time.Duration {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return time.Since(s.lastMsgTs)
}

func (s *TranscriptionClient) generateSilence(ctx context.Context, encoding audio.EncodingInfo) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	const chunkDuration = 50 * time.Millisecond
	ticker := time.NewTicker(chunkDuration)
	defer ticker.Stop()

	chunk := encoding.Silence(chunkDuration)

	var state = silenceGeneratorStateWaiting
	var firstSilenceTime *time.Time
	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idle := s.sinceLastMessage()
			switch state {
			case silenceGeneratorStateWaiting:
				if idle > chunkDuration {
					state = silenceGeneratorStateSilence
					firstSilenceTime = utils.Ptr(time.Now())
					continue
				}

			case silenceGeneratorStateSilence:
				if idle < chunkDuration {
					state = silenceGeneratorStateWaiting
					firstSilenceTime = nil
					continue
				}
				if time.Since(*firstSilenceTime) >= time.Second {
					state = silenceGeneratorStateKeepAlive
					lastKeepAliveTime = utils.Ptr(time.Now())
					firstSilenceTime = nil
					continue
				}

				if err := s.sendSilence(chunk); err != nil && !errors.Is(err, ErrNotConnected) {
					logger.WarnContext(ctx, "failed to send silence", "error", err)
				}

			case silenceGeneratorStateKeepAlive:
				if idle < chunkDuration {
					state = silenceGeneratorStateWaiting
					continue
				}

				if time.Since(*lastKeepAliveTime) >= 5*time.Second {
					lastKeepAliveTime = utils.Ptr(time.Now())
					s.sendKeepAlive()
				}
			}
		}
	}
}
