package agent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/archive"
	"github.com/SaynaAI/examples/internal/history"
	"github.com/SaynaAI/examples/internal/metrics"
)

// Channel is the slice of the platform connection a session needs:
// publish chat payloads and speak sentences.
type Channel interface {
	PublishData(payload []byte, reliable bool) error
	Say(text string) error
	Close() error
}

// chatPayload is the wire format published to the room's data channel.
// The browser and terminal clients decode this shape.
type chatPayload struct {
	Message   string `json:"message"`
	Topic     string `json:"topic"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
	IsFinal   bool   `json:"isFinal"`
}

// Session drives one room's conversation: finalized transcripts in,
// spoken sentences out. Generations for the same room are serialized by
// the session's own lock; different rooms never contend.
type Session struct {
	room    string
	channel Channel
	gen     *Generator
	history history.Store
	archive archive.Store
	logger  zerolog.Logger

	genMu sync.Mutex

	mu      sync.Mutex
	stopped bool
}

// NewSession creates a session for room. archive may be nil.
func NewSession(room string, ch Channel, gen *Generator, store history.Store, arch archive.Store, logger zerolog.Logger) *Session {
	metrics.SessionsStarted.Inc()
	return &Session{
		room:    room,
		channel: ch,
		gen:     gen,
		history: store,
		archive: arch,
		logger:  logger.With().Str("room", room).Logger(),
	}
}

// HandleTranscript feeds a speech-to-text result into the session.
// Interim results are ignored; a finalized transcript triggers one
// generation pass. Overlapping finals for the same room queue on the
// session lock, so history appends never interleave.
func (s *Session) HandleTranscript(ctx context.Context, text string, final bool) {
	if !final {
		return
	}
	metrics.TranscriptsReceived.Inc()

	go func() {
		s.genMu.Lock()
		defer s.genMu.Unlock()
		if s.isStopped() {
			return
		}
		s.respond(ctx, text)
	}()
}

// respond runs one generation pass, publishing and speaking each
// sentence as it is detected. The callback completes for one sentence
// before the next is processed, preserving spoken order.
func (s *Session) respond(ctx context.Context, transcript string) {
	reply := s.gen.GenerateStream(ctx, transcript, s.room, func(sentence string) {
		s.publishSentence(sentence)
		if err := s.channel.Say(sentence); err != nil {
			s.logger.Warn().Err(err).Msg("speak failed")
		}
	})

	if s.archive != nil {
		if err := s.archive.SaveTurn(ctx, s.room, transcript, reply); err != nil {
			s.logger.Warn().Err(err).Msg("failed to archive turn")
		}
	}
}

func (s *Session) publishSentence(sentence string) {
	payload, err := json.Marshal(chatPayload{
		Message:   sentence,
		Topic:     "chat",
		Role:      "ai",
		Timestamp: time.Now().UnixMilli(),
		IsFinal:   true,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode chat payload")
		return
	}
	if err := s.channel.PublishData(payload, true); err != nil {
		s.logger.Warn().Err(err).Msg("publish failed")
	}
}

// PublishStatus sends a status notice to the room.
func (s *Session) PublishStatus(message string) {
	payload, err := json.Marshal(chatPayload{
		Message:   message,
		Topic:     "status",
		Role:      "ai",
		Timestamp: time.Now().UnixMilli(),
		IsFinal:   true,
	})
	if err != nil {
		return
	}
	if err := s.channel.PublishData(payload, true); err != nil {
		s.logger.Warn().Err(err).Msg("status publish failed")
	}
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Stop closes the channel and destroys the room's conversation history.
// Sentences from a generation still in flight go nowhere afterwards;
// the channel is no longer published to.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if err := s.channel.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("channel close")
	}
	if s.history != nil {
		if err := s.history.Clear(ctx, s.room); err != nil {
			s.logger.Warn().Err(err).Msg("history clear failed")
		}
	}
	s.logger.Info().Msg("session stopped")
}
