package utils

import "testing"

// Cost 4 is bcrypt's minimum; plenty for round-trip tests.
const testCost = 4

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", testCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Error("VerifyPassword() rejected the original password")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("VerifyPassword() accepted a wrong password")
	}
	if VerifyPassword(hash, "") {
		t.Error("VerifyPassword() accepted an empty password")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-input", testCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("same-input", testCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("VerifyPassword() accepted a malformed hash")
	}
}
