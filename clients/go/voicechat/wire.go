// Package voicechat is a client for Sayna voice-chat rooms: it fetches
// room tokens, publishes typed messages over the room's data channel and
// reconciles inbound speech fragments into a readable transcript.
package voicechat

import (
	"encoding/json"
	"time"
	"unicode/utf8"
)

// WireMessage is the JSON payload exchanged on the chat data channel,
// in both directions. Producers disagree on the names of the two
// boolean flags, so each has several accepted spellings.
type WireMessage struct {
	Message   string `json:"message"`
	Topic     string `json:"topic,omitempty"`
	Role      string `json:"role,omitempty"` // "user" or "ai"
	Timestamp int64  `json:"timestamp,omitempty"`
	Identity  string `json:"identity,omitempty"`

	IsFinal      *bool `json:"isFinal,omitempty"`
	IsFinalSnake *bool `json:"is_final,omitempty"`
	Final        *bool `json:"final,omitempty"`

	Interim *bool `json:"interim,omitempty"`
	Partial *bool `json:"partial,omitempty"`
}

// finalFlag resolves the final flag: first named variant present wins.
func (m *WireMessage) finalFlag() *bool {
	for _, f := range []*bool{m.IsFinal, m.IsFinalSnake, m.Final} {
		if f != nil {
			return f
		}
	}
	return nil
}

// interimFlag resolves the interim flag: first named variant present wins.
func (m *WireMessage) interimFlag() *bool {
	for _, f := range []*bool{m.Interim, m.Partial} {
		if f != nil {
			return f
		}
	}
	return nil
}

// ExplicitInterim reports whether the producer marked this message as a
// provisional fragment.
func (m *WireMessage) ExplicitInterim() bool {
	if f := m.interimFlag(); f != nil && *f {
		return true
	}
	if f := m.finalFlag(); f != nil && !*f {
		return true
	}
	return false
}

// ExplicitFinal reports whether the producer marked this message as
// settled.
func (m *WireMessage) ExplicitFinal() bool {
	if f := m.interimFlag(); f != nil && !*f {
		return true
	}
	if f := m.finalFlag(); f != nil && *f {
		return true
	}
	return false
}

// HasExplicitFlag reports whether either flag was present at all.
func (m *WireMessage) HasExplicitFlag() bool {
	return m.ExplicitInterim() || m.ExplicitFinal()
}

// DecodeWireMessage parses a raw data-channel payload.
//
// Rules: payloads that are not valid UTF-8 are dropped; valid text that
// fails to parse as JSON is wrapped as a plain "chat" message from the
// AI; parsed payloads without a message field are dropped; a missing
// topic defaults to "chat". The second return value is false when the
// payload should be discarded.
func DecodeWireMessage(data []byte) (WireMessage, bool) {
	if !utf8.Valid(data) {
		return WireMessage{}, false
	}

	var msg WireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return WireMessage{
			Message: string(data),
			Topic:   "chat",
			Role:    "ai",
		}, true
	}

	if msg.Message == "" {
		return WireMessage{}, false
	}
	if msg.Topic == "" {
		msg.Topic = "chat"
	}
	return msg, true
}

// NewChatMessage builds the outbound payload for user-typed text.
func NewChatMessage(text string) WireMessage {
	return WireMessage{
		Message:   text,
		Topic:     "chat",
		Role:      "user",
		Timestamp: time.Now().UnixMilli(),
	}
}
