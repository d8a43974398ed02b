package voicechat

import (
	"context"
	"errors"
	"testing"
)

func TestConnectGuardRejectsOverlap(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	if err := s.Connect(context.Background()); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}
	if err := s.Disconnect(); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}
}

func TestGuardIsPerSession(t *testing.T) {
	busy := NewSession(SessionConfig{})
	busy.mu.Lock()
	busy.busy = true
	busy.mu.Unlock()

	idle := NewSession(SessionConfig{})
	if err := idle.Disconnect(); err != nil {
		t.Fatalf("independent session blocked by another's guard: %v", err)
	}
}

func TestDisconnectWithoutConnectionIsNoop(t *testing.T) {
	s := NewSession(SessionConfig{})
	if err := s.Disconnect(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestSendRequiresConnection(t *testing.T) {
	s := NewSession(SessionConfig{})

	if _, err := s.Send(context.Background(), "hi"); !errors.Is(err, ErrNotConnectedSession) {
		t.Fatalf("expected ErrNotConnectedSession, got %v", err)
	}
	if err := s.Retry(context.Background(), "some-id"); !errors.Is(err, ErrNotConnectedSession) {
		t.Fatalf("expected ErrNotConnectedSession, got %v", err)
	}
	if err := s.EnableMicrophone(); !errors.Is(err, ErrNotConnectedSession) {
		t.Fatalf("expected ErrNotConnectedSession, got %v", err)
	}
}

func TestMicErrorDistinctFromConnectionErrors(t *testing.T) {
	underlying := errors.New("no media track")
	err := &MicError{Err: underlying}

	if !errors.Is(err, underlying) {
		t.Fatal("MicError should unwrap to the underlying error")
	}
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrNotConnectedSession) {
		t.Fatal("MicError must not read as a connection error")
	}
}
