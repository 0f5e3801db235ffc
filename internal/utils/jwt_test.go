package utils

import (
	"errors"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "jane", "manager", 30)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.JTI == "" {
		t.Fatal("token issued without jti")
	}

	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "jane" || claims.Role != "manager" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.JTI != tok.JTI {
		t.Fatalf("jti mismatch: %s vs %s", claims.JTI, tok.JTI)
	}
	if time.Until(claims.Exp) > 31*time.Minute {
		t.Fatalf("expiry too far out: %v", claims.Exp)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 1, "jane", "user", 5)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseAccessToken("secret-b", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseAccessToken("secret", "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
