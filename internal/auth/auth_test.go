package auth

import (
	"errors"
	"testing"
	"time"

	"fintechapi/internal/core"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(4) // minimum cost keeps the test fast

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := h.Verify(hash, "s3cret"); err != nil {
		t.Fatalf("Verify with correct password: %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("Verify with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestHasher_BlankPassword(t *testing.T) {
	h := NewHasher(4)

	for _, password := range []string{"", "   ", "\t"} {
		if _, err := h.Hash(password); !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("Hash(%q) = %v, want ErrInvalidInput", password, err)
		}
	}
}

func TestHasher_CostFallback(t *testing.T) {
	if h := NewHasher(99); h.cost == 99 {
		t.Fatal("out-of-range cost should fall back to the default")
	}
}

func TestSessionStore_CreateResolveRevoke(t *testing.T) {
	store := NewSessionStore(10, time.Minute)
	defer store.Close()

	session := store.Create(7, "maria@example.com", core.AccountIndividual)
	if session.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	resolved, err := store.Resolve(session.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.UserID != 7 || resolved.Email != "maria@example.com" {
		t.Fatalf("resolved session mismatch: %+v", resolved)
	}

	store.Revoke(session.Token)
	if _, err := store.Resolve(session.Token); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("revoked token should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(10, 10*time.Millisecond)
	defer store.Close()

	session := store.Create(1, "x@example.com", core.AccountOrganization)
	time.Sleep(20 * time.Millisecond)

	if _, err := store.Resolve(session.Token); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expired token should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionStore_UniqueTokens(t *testing.T) {
	store := NewSessionStore(10, time.Minute)
	defer store.Close()

	a := store.Create(1, "a@example.com", core.AccountIndividual)
	b := store.Create(1, "a@example.com", core.AccountIndividual)
	if a.Token == b.Token {
		t.Fatal("two sessions for the same user must not share a token")
	}
}
