package auth

import (
	"strings"
	"testing"
	"time"

	"mogges/internal/domain/accesscontrol"
)

func TestTokenRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("test-secret", "mogges", 24*time.Hour)

	token, err := a.IssueToken(42, "a@b.com", accesscontrol.RoleEmployee)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	claims, ok := a.VerifyToken(token)
	if !ok {
		t.Fatal("fresh token did not verify")
	}
	if claims.UserID != 42 || claims.Email != "a@b.com" || claims.Role != accesscontrol.RoleEmployee {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenExpiry(t *testing.T) {
	a := NewJWTAuthenticator("test-secret", "mogges", time.Hour)
	token, err := a.IssueToken(1, "x@y.se", accesscontrol.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := a.VerifyToken(token); ok {
		t.Fatal("expired token verified")
	}
}

func TestTokenRejectsTamperingAndGarbage(t *testing.T) {
	a := NewJWTAuthenticator("test-secret", "mogges", time.Hour)
	other := NewJWTAuthenticator("another-secret", "mogges", time.Hour)

	forged, err := other.IssueToken(1, "x@y.se", accesscontrol.RoleMaster)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, tok := range []string{"", "abc", "a.b", "a.b.c", forged, forged + "x"} {
		if c, ok := a.VerifyToken(tok); ok || c != nil {
			t.Fatalf("VerifyToken(%q) = %+v, %v", tok, c, ok)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	digest, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword("pw123", digest) {
		t.Fatal("password did not verify against its own digest")
	}
	if VerifyPassword("pw124", digest) {
		t.Fatal("wrong password verified")
	}
	if IsLegacyDigest(digest) {
		t.Fatal("bcrypt digest reported as legacy")
	}
}

func TestLegacyDigest(t *testing.T) {
	legacy := LegacyDigest("pw123")
	if legacy != LegacyDigest("pw123") {
		t.Fatal("legacy digest is not deterministic")
	}
	if !IsLegacyDigest(legacy) {
		t.Fatal("legacy digest not detected")
	}
	if !VerifyPassword("pw123", legacy) {
		t.Fatal("legacy digest did not verify")
	}
	if VerifyPassword("other", legacy) {
		t.Fatal("wrong password verified against legacy digest")
	}
}
