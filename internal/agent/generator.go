package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/history"
	"github.com/SaynaAI/examples/internal/llm"
	"github.com/SaynaAI/examples/internal/metrics"
)

// DefaultSystemPrompt frames the assistant for spoken conversation.
const DefaultSystemPrompt = "You are a friendly voice assistant. Keep replies short, " +
	"conversational and easy to speak aloud. Use complete sentences."

// DefaultFallbacks are spoken when generation is skipped or exhausted.
var DefaultFallbacks = []string{
	"Sorry, I didn't catch that. Could you say it again?",
	"I'm having trouble answering right now. Let's try once more.",
	"Hmm, I lost my train of thought. What were you saying?",
}

// GeneratorConfig tunes retry and prompt behavior.
type GeneratorConfig struct {
	SystemPrompt string
	MaxAttempts  int           // total generation attempts per transcript
	BaseDelay    time.Duration // backoff is BaseDelay multiplied by the attempt index
	Fallbacks    []string
}

// DefaultGeneratorConfig returns the settings used by the example agent.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SystemPrompt: DefaultSystemPrompt,
		MaxAttempts:  3,
		BaseDelay:    time.Second,
		Fallbacks:    DefaultFallbacks,
	}
}

// Generator turns one finalized user transcript into an assistant reply,
// streamed sentence by sentence. The retrying entry points never return
// an error: every failure path ends in a fallback line, so the caller
// always has something to speak.
type Generator struct {
	llm     llm.Client
	history history.Store
	logger  zerolog.Logger
	cfg     GeneratorConfig
}

// NewGenerator creates a Generator. history may be nil when no room
// context is kept.
func NewGenerator(client llm.Client, store history.Store, logger zerolog.Logger, cfg GeneratorConfig) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if len(cfg.Fallbacks) == 0 {
		cfg.Fallbacks = DefaultFallbacks
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Generator{llm: client, history: store, logger: logger, cfg: cfg}
}

// fallbackFor picks a fallback line deterministically from the transcript.
func (g *Generator) fallbackFor(transcript string) string {
	return g.cfg.Fallbacks[len(transcript)%len(g.cfg.Fallbacks)]
}

// buildMessages assembles system prompt, room history and the current turn.
func (g *Generator) buildMessages(ctx context.Context, transcript, room string) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: g.cfg.SystemPrompt}}

	if room != "" && g.history != nil {
		past, err := g.history.Get(ctx, room)
		if err != nil {
			g.logger.Warn().Err(err).Str("room", room).Msg("history unavailable, continuing without it")
		}
		for _, msg := range past {
			messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
		}
	}

	return append(messages, llm.Message{Role: "user", Content: transcript})
}

// recordTurn appends the finished exchange to the room's history.
func (g *Generator) recordTurn(ctx context.Context, room, transcript, reply string) {
	if room == "" || g.history == nil {
		return
	}
	if err := g.history.Append(ctx, room, history.RoleUser, transcript); err != nil {
		g.logger.Warn().Err(err).Str("room", room).Msg("failed to record user turn")
	}
	if err := g.history.Append(ctx, room, history.RoleAssistant, reply); err != nil {
		g.logger.Warn().Err(err).Str("room", room).Msg("failed to record assistant turn")
	}
}

// streamOnce runs a single generation attempt, invoking onSentence for
// each completed sentence in arrival order.
func (g *Generator) streamOnce(ctx context.Context, transcript, room string, onSentence func(string)) (string, error) {
	chunks, err := g.llm.Stream(ctx, g.buildMessages(ctx, transcript, room))
	if err != nil {
		return "", err
	}

	var full strings.Builder
	var splitter SentenceSplitter
	emit := func(sentence string) {
		metrics.SentencesEmitted.Inc()
		onSentence(sentence)
	}

	for chunk := range chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		full.WriteString(chunk.Text)
		splitter.Push(chunk.Text, emit)
	}
	splitter.Flush(emit)

	return full.String(), nil
}

// GenerateStream produces a reply for transcript, calling onSentence once
// per sentence before returning. Transient failures are retried with
// backoff; rate-limit errors abort immediately. If no attempt succeeds,
// exactly one fallback sentence is emitted and returned. The returned
// string is always non-empty.
func (g *Generator) GenerateStream(ctx context.Context, transcript, room string, onSentence func(string)) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		fallback := g.fallbackFor(transcript)
		metrics.GenerationFallbacks.Inc()
		onSentence(fallback)
		return fallback
	}

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := g.cfg.BaseDelay * time.Duration(attempt)
			g.logger.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("retrying generation")
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(delay):
			}
			if ctx.Err() != nil {
				break
			}
		}

		metrics.GenerationAttempts.Inc()
		reply, err := g.streamOnce(ctx, transcript, room, onSentence)
		if err == nil {
			g.recordTurn(ctx, room, transcript, reply)
			return reply
		}

		lastErr = err
		if llm.IsRateLimit(err) {
			metrics.GenerationFailures.WithLabelValues("rate_limit").Inc()
			g.logger.Warn().Err(err).Msg("generation rate limited, not retrying")
			break
		}
		metrics.GenerationFailures.WithLabelValues("error").Inc()
		g.logger.Warn().Err(err).Int("attempt", attempt).Msg("generation attempt failed")
	}

	g.logger.Error().Err(lastErr).Str("room", room).Msg("generation exhausted, using fallback")
	fallback := g.fallbackFor(transcript)
	metrics.GenerationFallbacks.Inc()
	onSentence(fallback)
	return fallback
}

// Generate is the non-streaming variant: same retry and fallback
// contract, but the whole reply is returned atomically.
func (g *Generator) Generate(ctx context.Context, transcript, room string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		metrics.GenerationFallbacks.Inc()
		return g.fallbackFor(transcript)
	}

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(g.cfg.BaseDelay * time.Duration(attempt)):
			}
			if ctx.Err() != nil {
				break
			}
		}

		metrics.GenerationAttempts.Inc()
		reply, err := g.llm.Complete(ctx, g.buildMessages(ctx, transcript, room))
		if err == nil {
			g.recordTurn(ctx, room, transcript, reply)
			return reply
		}

		lastErr = err
		if llm.IsRateLimit(err) {
			metrics.GenerationFailures.WithLabelValues("rate_limit").Inc()
			break
		}
		metrics.GenerationFailures.WithLabelValues("error").Inc()
	}

	g.logger.Error().Err(lastErr).Str("room", room).Msg("generation exhausted, using fallback")
	metrics.GenerationFallbacks.Inc()
	return g.fallbackFor(transcript)
}
