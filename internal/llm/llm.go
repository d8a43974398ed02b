// Package llm talks to an OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message is one chat message sent to the model.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Chunk is one streamed delta from the model.
type Chunk struct {
	Text string // delta text, may be empty on control frames
	Err  error  // terminal; no further chunks follow a non-nil Err
}

// Client generates chat completions.
type Client interface {
	// Complete returns the full response text in one call.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream returns a channel of incremental deltas. The channel is
	// closed when the stream ends; a failure is delivered as a final
	// chunk with Err set.
	Stream(ctx context.Context, messages []Message) (<-chan Chunk, error)
}

// APIError is a non-2xx response from the model API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit reports whether err indicates the model API rate-limited us.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == 429 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}
