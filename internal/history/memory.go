package history

import (
	"context"
	"sync"
	"time"
)

// roomLog holds one room's messages plus its last-modified time.
type roomLog struct {
	messages  []Message
	updatedAt time.Time
}

// MemoryStore is an in-memory Store. It is safe for concurrent use;
// rooms are independent and never contend beyond the map lock.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*roomLog
	max   int
}

// NewMemoryStore creates an in-memory store capped at max messages per room.
func NewMemoryStore(max int) *MemoryStore {
	if max < 2 {
		max = 2
	}
	return &MemoryStore{
		rooms: make(map[string]*roomLog),
		max:   max,
	}
}

// Append adds a message to a room's log, creating the room if needed.
// When the log exceeds the cap, only the most recent half is retained.
func (s *MemoryStore) Append(ctx context.Context, room string, role Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.rooms[room]
	if !ok {
		log = &roomLog{}
		s.rooms[room] = log
	}

	log.messages = append(log.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	log.updatedAt = time.Now()

	if len(log.messages) > s.max {
		keep := s.max / 2
		kept := make([]Message, keep)
		copy(kept, log.messages[len(log.messages)-keep:])
		log.messages = kept
	}

	return nil
}

// Get returns a copy of a room's messages in append order.
func (s *MemoryStore) Get(ctx context.Context, room string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.rooms[room]
	if !ok {
		return nil, nil
	}

	out := make([]Message, len(log.messages))
	copy(out, log.messages)
	return out, nil
}

// Clear removes a room's log entirely.
func (s *MemoryStore) Clear(ctx context.Context, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
	return nil
}

// LastModified returns when a room's log was last appended to.
// The zero time means the room has no log.
func (s *MemoryStore) LastModified(room string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok := s.rooms[room]; ok {
		return log.updatedAt
	}
	return time.Time{}
}
