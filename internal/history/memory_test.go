package history

import (
	"context"
	"fmt"
	"testing"
)

func TestAppendAndGet(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if err := s.Append(ctx, "room-a", RoleUser, "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, "room-a", RoleAssistant, "hi there"); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.Get(ctx, "room-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "hi there" {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestGetUnknownRoom(t *testing.T) {
	s := NewMemoryStore(10)

	msgs, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestCapDiscardsOldestHalf(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		if err := s.Append(ctx, "room-a", RoleUser, fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.Get(ctx, "room-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) > 10 {
		t.Fatalf("expected count <= cap, got %d", len(msgs))
	}
	// Overflow at message 11 keeps only the most recent 5
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages after prune, got %d", len(msgs))
	}
	if msgs[0].Content != "msg-6" {
		t.Fatalf("expected oldest surviving message msg-6, got %q", msgs[0].Content)
	}
	if msgs[len(msgs)-1].Content != "msg-10" {
		t.Fatalf("expected newest message msg-10, got %q", msgs[len(msgs)-1].Content)
	}
}

func TestClear(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if err := s.Append(ctx, "room-a", RoleUser, "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx, "room-a"); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.Get(ctx, "room-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty room after clear, got %d messages", len(msgs))
	}
	if !s.LastModified("room-a").IsZero() {
		t.Fatal("expected zero last-modified after clear")
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if err := s.Append(ctx, "room-a", RoleUser, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, "room-b", RoleUser, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx, "room-a"); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.Get(ctx, "room-b")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "b" {
		t.Fatalf("room-b affected by room-a clear: %+v", msgs)
	}
}
