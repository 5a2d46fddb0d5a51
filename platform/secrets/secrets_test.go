package secrets

import (
	"bytes"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey()

	ciphertext, err := Encrypt("rc-refresh-token-abc123", key)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if ciphertext == "rc-refresh-token-abc123" {
		t.Fatal("ciphertext equals plaintext")
	}

	plaintext, err := Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if plaintext != "rc-refresh-token-abc123" {
		t.Fatalf("Decrypt() = %q, want original plaintext", plaintext)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	key := testKey()

	first, err := Encrypt("same input", key)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	second, err := Encrypt("same input", key)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if first == second {
		t.Fatal("expected random nonce to produce distinct ciphertexts")
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	ciphertext, err := Encrypt("secret", testKey())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	otherKey := bytes.Repeat([]byte{0x24}, 32)
	if _, err := Decrypt(ciphertext, otherKey); err == nil {
		t.Fatal("expected error decrypting with wrong key")
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	key := testKey()
	ciphertext, err := Encrypt("secret", key)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	tampered := []byte(ciphertext)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	if _, err := Decrypt(string(tampered), key); err == nil {
		t.Fatal("expected error decrypting tampered ciphertext")
	}
}

func TestEncryptRejectsShortKey(t *testing.T) {
	if _, err := Encrypt("secret", []byte("too-short")); err == nil {
		t.Fatal("expected error for key shorter than 32 bytes")
	}
}
