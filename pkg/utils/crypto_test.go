package utils

import (
	"strings"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundtrip(t *testing.T) {
	plaintext := "EAAGlongLivedPageToken"

	sealed, err := Encrypt([]byte(plaintext), testKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if strings.Contains(sealed, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Decrypt(sealed, testKey)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != plaintext {
		t.Fatalf("roundtrip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), testKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	if _, err := Decrypt(sealed, otherKey); err == nil {
		t.Fatal("expected error decrypting with the wrong key")
	}
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	if _, err := Decrypt("c2hvcnQ=", testKey); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestEncryptNonceUniqueness(t *testing.T) {
	a, err := Encrypt([]byte("same input"), testKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same input"), testKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Fatal("two encryptions of the same input produced identical ciphertext")
	}
}
