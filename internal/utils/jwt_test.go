package utils

import (
	"strings"
	"testing"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	raw, err := NewAccessToken(testSecret, 42, "admin", true, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	id, err := ParseToken(testSecret, raw, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id.UserID != 42 || id.Role != "admin" || !id.IsStaff {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	// A negative TTL produces a token that is already past its expiry.
	raw, err := NewAccessToken(testSecret, 42, "user", false, -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseToken(testSecret, raw, TokenTypeAccess); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestTokenTypeConfusion(t *testing.T) {
	refresh, err := NewRefreshToken(testSecret, 42, 7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if _, err := ParseToken(testSecret, refresh, TokenTypeAccess); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
	if _, err := ParseToken(testSecret, refresh, TokenTypeRefresh); err != nil {
		t.Fatalf("refresh token rejected as refresh token: %v", err)
	}

	access, err := NewAccessToken(testSecret, 42, "user", false, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseToken(testSecret, access, TokenTypeRefresh); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestTokenFailsClosed(t *testing.T) {
	raw, err := NewAccessToken(testSecret, 42, "user", false, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	cases := map[string]string{
		"wrong secret": raw,
		"garbage":      "definitely.not.ajwt",
		"empty":        "",
		"tampered":     tamper(raw),
	}
	for name, tok := range cases {
		secret := testSecret
		if name == "wrong secret" {
			secret = "other-secret"
		}
		if _, err := ParseToken(secret, tok, TokenTypeAccess); err == nil {
			t.Errorf("%s: token validated", name)
		}
	}
}

// tamper flips a character in the payload segment.
func tamper(raw string) string {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || len(parts[1]) == 0 {
		return raw + "x"
	}
	b := []byte(parts[1])
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	parts[1] = string(b)
	return strings.Join(parts, ".")
}
