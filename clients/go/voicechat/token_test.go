package voicechat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchTokenLiveURLVariants(t *testing.T) {
	for _, key := range []string{"liveUrl", "livekit_url"} {
		t.Run(key, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req tokenRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("bad request body: %v", err)
				}
				if req.RoomName != "demo" || req.ParticipantName != "Alice" || req.ParticipantIdentity != "alice-1" {
					t.Fatalf("unexpected request: %+v", req)
				}
				json.NewEncoder(w).Encode(map[string]string{
					"token": "tok-123",
					key:     "wss://live.example.com",
				})
			}))
			defer srv.Close()

			info, err := FetchToken(context.Background(), nil, srv.URL, "demo", "Alice", "alice-1")
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if info.Token != "tok-123" || info.LiveURL != "wss://live.example.com" {
				t.Fatalf("unexpected info: %+v", info)
			}
		})
	}
}

func TestFetchTokenServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "room_name is required"})
	}))
	defer srv.Close()

	_, err := FetchToken(context.Background(), nil, srv.URL, "", "Alice", "alice-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusBadRequest || fetchErr.Message != "room_name is required" {
		t.Fatalf("unexpected error: %+v", fetchErr)
	}
}

func TestFetchTokenMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer srv.Close()

	_, err := FetchToken(context.Background(), nil, srv.URL, "demo", "Alice", "alice-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestFetchTokenUnreachable(t *testing.T) {
	_, err := FetchToken(context.Background(), nil, "http://127.0.0.1:1/start", "demo", "Alice", "alice-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != 0 {
		t.Fatalf("expected zero status for transport error, got %d", fetchErr.Status)
	}
}
