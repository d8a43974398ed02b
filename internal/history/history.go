// Package history stores per-room conversation logs used to build model
// context. Each room's log is bounded: when it grows past the configured
// cap, the oldest half is pruned and only the most recent half is kept.
package history

import (
	"context"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a room's conversation log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a per-room bounded conversation log.
// Room entries are created lazily on first append and removed by Clear
// when the owning voice session ends.
type Store interface {
	Append(ctx context.Context, room string, role Role, content string) error
	Get(ctx context.Context, room string) ([]Message, error)
	Clear(ctx context.Context, room string) error
}
