package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const historyTTL = 24 * time.Hour

// RedisStore is a Redis-backed Store for deployments where several
// voice-agent instances share conversation state.
type RedisStore struct {
	client *redis.Client
	max    int64
}

// NewRedisStore connects to Redis and returns a store capped at max
// messages per room.
func NewRedisStore(ctx context.Context, redisURL string, max int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	if max < 2 {
		max = 2
	}
	return &RedisStore{client: client, max: int64(max)}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// roomHistoryKey returns the key for a room's conversation list.
func roomHistoryKey(room string) string {
	return fmt.Sprintf("history:%s:messages", room)
}

// Append pushes a message onto a room's list. When the list exceeds the
// cap it is trimmed to the most recent half, matching the in-memory store.
func (s *RedisStore) Append(ctx context.Context, room string, role Role, content string) error {
	data, err := json.Marshal(Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	key := roomHistoryKey(room)

	length, err := s.client.RPush(ctx, key, string(data)).Result()
	if err != nil {
		return err
	}

	if length > s.max {
		keep := s.max / 2
		if err := s.client.LTrim(ctx, key, length-keep, -1).Err(); err != nil {
			return err
		}
	}

	return s.client.Expire(ctx, key, historyTTL).Err()
}

// Get returns a room's messages in append order.
func (s *RedisStore) Get(ctx context.Context, room string) ([]Message, error) {
	results, err := s.client.LRange(ctx, roomHistoryKey(room), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(results))
	for _, data := range results {
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Clear deletes a room's conversation list.
func (s *RedisStore) Clear(ctx context.Context, room string) error {
	return s.client.Del(ctx, roomHistoryKey(room)).Err()
}
