package tokens

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateHex(t *testing.T) {
	s, err := GenerateHex(32)
	if err != nil {
		t.Fatalf("GenerateHex: %v", err)
	}
	if len(s) != 64 {
		t.Fatalf("length: got %d want 64", len(s))
	}
	if strings.ToLower(s) != s {
		t.Fatal("expected lowercase hex")
	}

	other, _ := GenerateHex(32)
	if s == other {
		t.Fatal("two generated values are identical")
	}
}

func TestGenerateNonce(t *testing.T) {
	s, err := GenerateNonce(24)
	if err != nil {
		t.Fatalf("GenerateNonce: %v", err)
	}
	if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
		t.Fatalf("nonce is not base64url: %v", err)
	}
	if strings.ContainsAny(s, "+/=") {
		t.Fatalf("nonce %q contains non-url chars", s)
	}
}

func TestS256Challenge(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := sha256.Sum256([]byte(verifier))

	got := S256Challenge(verifier)
	raw, err := base64.RawURLEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("challenge is not base64url: %v", err)
	}
	if string(raw) != string(want[:]) {
		t.Fatal("challenge is not sha256(verifier)")
	}
	if strings.HasSuffix(got, "=") {
		t.Fatal("challenge must not carry padding")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual([]byte("abc"), []byte("abc")) {
		t.Fatal("equal buffers reported different")
	}
	if ConstantTimeEqual([]byte("abc"), []byte("abd")) {
		t.Fatal("different buffers reported equal")
	}
	if ConstantTimeEqual([]byte("abc"), []byte("ab")) {
		t.Fatal("different lengths reported equal")
	}
	if !ConstantTimeEqual(nil, nil) {
		t.Fatal("nil vs nil should be equal")
	}
}
