package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "unitsphere")

	token, err := tm.GenerateToken("alice@example.com", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "unitsphere")
	other := NewTokenManager("other-secret", "unitsphere")

	token, err := tm.GenerateToken("alice@example.com", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("token signed with a different secret must be rejected")
	}
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "unitsphere")

	token, err := tm.GenerateToken("alice@example.com", "Alice", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken(""); err == nil {
		t.Errorf("empty header must be rejected")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Errorf("non-bearer header must be rejected")
	}
	tok, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || tok != "abc.def.ghi" {
		t.Errorf("bearer extraction failed: %q %v", tok, err)
	}
}
