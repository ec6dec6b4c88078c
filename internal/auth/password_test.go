package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not a hash",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		if _, err := VerifyPassword("password", encoded); err == nil {
			t.Errorf("expected error for %q", encoded)
		}
	}
}
