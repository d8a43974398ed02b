package agent

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/history"
)

// fakeChannel records published payloads and spoken sentences.
type fakeChannel struct {
	mu        sync.Mutex
	published []chatPayload
	spoken    []string
	closed    bool
}

func (f *fakeChannel) PublishData(payload []byte, reliable bool) error {
	var p chatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, p)
	return nil
}

func (f *fakeChannel) Say(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) snapshot() ([]chatPayload, []string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	published := append([]chatPayload(nil), f.published...)
	spoken := append([]string(nil), f.spoken...)
	return published, spoken, f.closed
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTestSession(t *testing.T, ch Channel, client *fakeLLM, store history.Store) *Session {
	t.Helper()
	gen := newTestGenerator(t, client, store)
	return NewSession("room-1", ch, gen, store, nil, zerolog.Nop())
}

func TestInterimTranscriptIgnored(t *testing.T) {
	ch := &fakeChannel{}
	fake := &fakeLLM{}
	s := newTestSession(t, ch, fake, nil)

	s.HandleTranscript(context.Background(), "partial tex", false)

	time.Sleep(50 * time.Millisecond)
	published, spoken, _ := ch.snapshot()
	if len(published) != 0 || len(spoken) != 0 {
		t.Fatalf("interim transcript produced output: %v %v", published, spoken)
	}
	if fake.calls != 0 {
		t.Fatalf("interim transcript invoked the model %d times", fake.calls)
	}
}

func TestFinalTranscriptSpeaksSentences(t *testing.T) {
	ch := &fakeChannel{}
	fake := &fakeLLM{scripts: []script{
		{chunks: []string{"First thing. Second thing."}},
	}}
	s := newTestSession(t, ch, fake, nil)

	s.HandleTranscript(context.Background(), "tell me two things", true)

	waitFor(t, func() bool {
		published, _, _ := ch.snapshot()
		return len(published) == 2
	})

	published, spoken, _ := ch.snapshot()
	if published[0].Message != "First thing." || published[1].Message != "Second thing." {
		t.Fatalf("unexpected publish order: %+v", published)
	}
	for _, p := range published {
		if p.Topic != "chat" || p.Role != "ai" || !p.IsFinal {
			t.Fatalf("unexpected payload shape: %+v", p)
		}
	}
	if len(spoken) != 2 || spoken[0] != "First thing." || spoken[1] != "Second thing." {
		t.Fatalf("unexpected spoken order: %v", spoken)
	}
}

func TestStatusPayloadShape(t *testing.T) {
	ch := &fakeChannel{}
	s := newTestSession(t, ch, &fakeLLM{}, nil)

	s.PublishStatus("agent busy")

	published, _, _ := ch.snapshot()
	if len(published) != 1 {
		t.Fatalf("expected 1 status payload, got %d", len(published))
	}
	if published[0].Topic != "status" || published[0].Message != "agent busy" {
		t.Fatalf("unexpected status payload: %+v", published[0])
	}
}

func TestStopClosesChannelAndClearsHistory(t *testing.T) {
	ch := &fakeChannel{}
	store := history.NewMemoryStore(10)
	fake := &fakeLLM{scripts: []script{
		{chunks: []string{"Done."}},
	}}
	s := newTestSession(t, ch, fake, store)

	s.HandleTranscript(context.Background(), "hello", true)
	waitFor(t, func() bool {
		published, _, _ := ch.snapshot()
		return len(published) == 1
	})

	s.Stop(context.Background())

	_, _, closed := ch.snapshot()
	if !closed {
		t.Fatal("channel not closed on stop")
	}
	msgs, err := store.Get(context.Background(), "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("history not cleared on stop: %d messages", len(msgs))
	}
}

func TestStoppedSessionIgnoresTranscripts(t *testing.T) {
	ch := &fakeChannel{}
	fake := &fakeLLM{scripts: []script{
		{chunks: []string{"Should not appear."}},
	}}
	s := newTestSession(t, ch, fake, nil)

	s.Stop(context.Background())
	s.HandleTranscript(context.Background(), "hello", true)

	time.Sleep(50 * time.Millisecond)
	published, _, _ := ch.snapshot()
	if len(published) != 0 {
		t.Fatalf("stopped session published: %+v", published)
	}
}
