package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/token"
)

type fakeLauncher struct {
	mu    sync.Mutex
	rooms []string
}

func (f *fakeLauncher) Launch(room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, room)
}

func newTestHandler(t *testing.T) (*Handler, *fakeLauncher) {
	t.Helper()
	launcher := &fakeLauncher{}
	minter := token.NewMinter("key", "secret", time.Hour)
	h := NewHandler(zerolog.Nop(), minter, launcher, nil, "https://sayna.example.com")
	return h, launcher
}

func postStart(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/start", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Start(w, req)
	return w
}

func TestStartMintsTokenAndLaunches(t *testing.T) {
	h, launcher := newTestHandler(t)

	w := postStart(h, `{"room_name":"room-1","participant_name":"Ada","participant_identity":"user-42"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp StartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.LivekitURL != "https://sayna.example.com" {
		t.Fatalf("unexpected livekit_url %q", resp.LivekitURL)
	}

	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	if len(launcher.rooms) != 1 || launcher.rooms[0] != "room-1" {
		t.Fatalf("expected pipeline launched for room-1, got %v", launcher.rooms)
	}
}

func TestStartValidatesRequiredFields(t *testing.T) {
	h, launcher := newTestHandler(t)

	cases := []string{
		`{"participant_name":"Ada","participant_identity":"u"}`,
		`{"room_name":"r","participant_identity":"u"}`,
		`{"room_name":"r","participant_name":"Ada"}`,
		`{"room_name":"  ","participant_name":"Ada","participant_identity":"u"}`,
		`not json`,
	}
	for _, body := range cases {
		if w := postStart(h, body); w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}

	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	if len(launcher.rooms) != 0 {
		t.Fatalf("invalid requests launched pipelines: %v", launcher.rooms)
	}
}

func TestHealthOK(t *testing.T) {
	h, _ := newTestHandler(t)
	h.saynaCheck = func(ctx context.Context) bool { return true }

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || !resp.Sayna {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestHealthDegradedWhenSaynaUnreachable(t *testing.T) {
	h, _ := newTestHandler(t)
	h.saynaCheck = func(ctx context.Context) bool { return false }

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "degraded" || resp.Sayna {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestRoomTranscriptWithoutArchive(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/rooms/room-1/transcript", nil)
	w := httptest.NewRecorder()
	h.RoomTranscript(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without archive, got %d", w.Code)
	}
}
