package util

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("test-secret", 7, "session-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("SessionID = %q, want session-1", claims.SessionID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, "s", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

func TestGenerateToken_ZeroTTLGetsDefault(t *testing.T) {
	token, err := GenerateToken("test-secret", 1, "s", 0)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if remaining := time.Until(claims.ExpiresAt.Time); remaining < 23*time.Hour {
		t.Errorf("remaining ttl = %v, want about a day", remaining)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("test-secret", "not.a.jwt"); err == nil {
		t.Error("ParseToken of garbage error = nil, want error")
	}
}
