package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pit-lane")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := h.Compare(hash, "pit-lane"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := h.Compare(hash, "paddock"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if err := h.Compare("not-a-hash", "pit-lane"); err == nil || errors.Is(err, ErrMismatch) {
		t.Fatalf("expected malformed hash error, got %v", err)
	}
}

func TestBcryptHasherRejectsEmpty(t *testing.T) {
	if _, err := NewBcryptHasher(bcrypt.MinCost).Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestWeak(t *testing.T) {
	low, err := NewBcryptHasher(bcrypt.MinCost).Hash("pit-lane")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !NewBcryptHasher(bcrypt.MinCost + 1).Weak(low) {
		t.Fatalf("expected low-cost hash to be weak")
	}
	if NewBcryptHasher(bcrypt.MinCost).Weak(low) {
		t.Fatalf("expected same-cost hash not to be weak")
	}
	if !NewBcryptHasher(bcrypt.MinCost).Weak("garbage") {
		t.Fatalf("expected malformed hash to be weak")
	}
}
