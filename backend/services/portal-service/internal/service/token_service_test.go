package service

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)

	token, err := tokens.GenerateToken("driver", "engineer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "driver" || claims.Role != "engineer" || claims.Subject != "driver" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)

	if _, err := tokens.GenerateToken("", "viewer"); err == nil {
		t.Fatalf("expected error for empty username")
	}

	token, err := NewTokenService("other", time.Minute).GenerateToken("driver", "viewer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tokens.ValidateToken(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}

	expired := &TokenService{secret: []byte("secret"), expiresIn: -time.Minute}
	token, err = expired.GenerateToken("driver", "viewer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tokens.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
