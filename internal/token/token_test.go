package token

import (
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	m := NewMinter("api-key", "api-secret", time.Hour)

	tok, err := m.Mint("room-1", "user-42", "Ada")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("expected subject user-42, got %q", claims.Subject)
	}
	if claims.Name != "Ada" {
		t.Fatalf("expected name Ada, got %q", claims.Name)
	}
	if claims.Video.Room != "room-1" || !claims.Video.RoomJoin {
		t.Fatalf("unexpected grant: %+v", claims.Video)
	}
	if claims.Issuer != "api-key" {
		t.Fatalf("expected issuer api-key, got %q", claims.Issuer)
	}
}

func TestMintRequiresRoomAndIdentity(t *testing.T) {
	m := NewMinter("api-key", "api-secret", time.Hour)

	if _, err := m.Mint("", "user", ""); err == nil {
		t.Fatal("expected error for missing room")
	}
	if _, err := m.Mint("room", "", ""); err == nil {
		t.Fatal("expected error for missing identity")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewMinter("api-key", "api-secret", time.Hour)
	other := NewMinter("api-key", "different-secret", time.Hour)

	tok, err := m.Mint("room-1", "user-42", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Verify(tok); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}
