package cipher

import (
	"errors"
	"testing"
)

func TestNewAESCipher(t *testing.T) {
	if _, err := NewAESCipher(""); err == nil {
		t.Fatal("empty secret must be rejected")
	}
	if _, err := NewAESCipher("any secret works"); err != nil {
		t.Fatalf("NewAESCipher: %v", err)
	}
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewAESCipher("test-secret")
	if err != nil {
		t.Fatalf("NewAESCipher: %v", err)
	}

	for _, plaintext := range []string{"gateway-user", "p@ss w0rd", ""} {
		enc, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		got, err := c.Decrypt(enc)
		if err != nil {
			t.Fatalf("Decrypt(%q): %v", plaintext, err)
		}
		if got != plaintext {
			t.Errorf("round trip of %q gave %q", plaintext, got)
		}
	}
}

func TestCipherNonDeterministic(t *testing.T) {
	c, _ := NewAESCipher("test-secret")

	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if a == b {
		t.Error("encryption must use a fresh nonce per call")
	}
}

func TestCipherDecryptRejectsGarbage(t *testing.T) {
	c, _ := NewAESCipher("test-secret")

	for _, ciphertext := range []string{
		"not base64 at all!!",
		"c2hvcnQ=", // valid base64, shorter than a nonce
	} {
		if _, err := c.Decrypt(ciphertext); !errors.Is(err, ErrInvalidCiphertext) {
			t.Errorf("Decrypt(%q) = %v, want ErrInvalidCiphertext", ciphertext, err)
		}
	}
}

func TestCipherDecryptRejectsTamper(t *testing.T) {
	c, _ := NewAESCipher("test-secret")

	enc, err := c.Encrypt("gateway-pass")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	other, _ := NewAESCipher("different-secret")
	if _, err := other.Decrypt(enc); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("wrong key must fail authentication, got %v", err)
	}
}
