package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("longenough1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "longenough1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "longenough1") {
		t.Fatal("correct password did not verify")
	}
	if VerifyPassword(hash, "longenough2") {
		t.Fatal("wrong password verified")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("samepassword", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("samepassword", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (salt)")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-digest", "whatever") {
		t.Fatal("malformed digest must verify false")
	}
	if VerifyPassword("", "whatever") {
		t.Fatal("empty digest must verify false")
	}
}
