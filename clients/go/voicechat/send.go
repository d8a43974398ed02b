package voicechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotConnected is surfaced when a send is attempted without a live
// channel; the entry is marked failed and can be retried after
// reconnecting.
var ErrNotConnected = errors.New("voicechat: channel not connected")

// ErrNotRetryable is returned when retrying an entry that has not failed.
var ErrNotRetryable = errors.New("voicechat: only failed entries can be retried")

// DataChannel publishes payloads to the room. Implemented by WSChannel
// and by fakes in tests.
type DataChannel interface {
	Connected() bool
	Publish(ctx context.Context, payload []byte, reliable bool) error
}

// Sender is the outbound pipeline: it creates an optimistic local entry
// for each message, publishes it with reliable delivery and folds the
// publish outcome back into the entry's status. The caller never blocks
// on acknowledgment.
type Sender struct {
	transcript *Transcript
	channel    DataChannel
	identity   string
	onError    func(entryID string, err error)
}

// NewSender creates a Sender. onError may be nil; it is invoked with the
// affected entry id whenever a send fails.
func NewSender(transcript *Transcript, channel DataChannel, identity string, onError func(string, error)) *Sender {
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Sender{
		transcript: transcript,
		channel:    channel,
		identity:   identity,
		onError:    onError,
	}
}

// Send creates a new entry for text and publishes it. It returns the
// entry id immediately; the status transitions to sent or failed as the
// publish settles.
func (s *Sender) Send(ctx context.Context, text string) string {
	entry := Entry{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		SenderID:  s.identity,
		Topic:     "chat",
		Status:    StatusSending,
		Delivery:  DeliveryReliable,
	}
	s.transcript.appendLocal(entry)

	s.publish(ctx, entry.ID, text)
	return entry.ID
}

// Retry replays a failed entry through the same path, reusing its id
// and text. Entries in any other state are not retryable.
func (s *Sender) Retry(ctx context.Context, entryID string) error {
	entry, ok := s.transcript.get(entryID)
	if !ok {
		return fmt.Errorf("voicechat: no entry %s", entryID)
	}
	if entry.Status != StatusFailed {
		return ErrNotRetryable
	}

	s.transcript.setStatus(entryID, StatusSending)
	s.publish(ctx, entryID, entry.Text)
	return nil
}

// publish runs the connectivity check synchronously and the channel
// publish asynchronously, so callers stay responsive.
func (s *Sender) publish(ctx context.Context, entryID, text string) {
	if !s.channel.Connected() {
		s.transcript.setStatus(entryID, StatusFailed)
		s.onError(entryID, ErrNotConnected)
		return
	}

	payload, err := json.Marshal(NewChatMessage(text))
	if err != nil {
		s.transcript.setStatus(entryID, StatusFailed)
		s.onError(entryID, err)
		return
	}

	go func() {
		if err := s.channel.Publish(ctx, payload, true); err != nil {
			s.transcript.setStatus(entryID, StatusFailed)
			s.onError(entryID, err)
			return
		}
		s.transcript.setStatus(entryID, StatusSent)
		s.transcript.setAwaitingReply(true)
	}()
}
