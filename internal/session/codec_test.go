package session

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := New(testSecret, ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func samplePayload() Payload {
	return Payload{
		Provider:       "x",
		ProviderUserID: "12345",
		Username:       "ada",
		DisplayName:    "Ada Lovelace",
		AvatarURL:      "https://cdn.example/a.png",
		Email:          "ada@example.com",
	}
}

func TestCreateVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	tok, err := c.Create(samplePayload())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p := c.Verify(tok)
	if p == nil {
		t.Fatal("Verify returned nil for a fresh token")
	}
	if p.Provider != "x" || p.ProviderUserID != "12345" || p.Username != "ada" {
		t.Fatalf("payload mismatch: %+v", p)
	}
	if p.IssuedAt == 0 || p.ExpiresAt == 0 {
		t.Fatal("iat/exp not filled")
	}
	if p.ExpiresAt-p.IssuedAt != int64(time.Hour.Seconds()) {
		t.Fatalf("exp-iat: got %d want %d", p.ExpiresAt-p.IssuedAt, int64(time.Hour.Seconds()))
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	tok, _ := c.Create(samplePayload())

	seg, sig, _ := strings.Cut(tok, ".")
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		t.Fatal(err)
	}
	// Cambiar el provider_user_id dentro del JSON firmado.
	mutated := strings.Replace(string(raw), `"12345"`, `"99999"`, 1)
	if mutated == string(raw) {
		t.Fatal("mutation did not apply")
	}
	forged := base64.RawURLEncoding.EncodeToString([]byte(mutated)) + "." + sig

	if p := c.Verify(forged); p != nil {
		t.Fatalf("tampered payload accepted: %+v", p)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	tok, _ := c.Create(samplePayload())

	seg, sig, _ := strings.Cut(tok, ".")
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		t.Fatal(err)
	}
	raw[0] ^= 0x01
	forged := seg + "." + base64.RawURLEncoding.EncodeToString(raw)

	if p := c.Verify(forged); p != nil {
		t.Fatal("tampered signature accepted")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a := newTestCodec(t, time.Hour)
	b, err := New([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tok, _ := a.Create(samplePayload())
	if p := b.Verify(tok); p != nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestVerify_Expired(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	c.now = func() time.Time { return past }
	tok, err := c.Create(samplePayload())
	if err != nil {
		t.Fatal(err)
	}

	c.now = time.Now
	if p := c.Verify(tok); p != nil {
		t.Fatal("expired token accepted")
	}
}

func TestVerify_Garbage(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	for _, tok := range []string{
		"",
		"sin-punto",
		".",
		"a.",
		".b",
		"no-base64!.no-base64!",
		base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".abc",
	} {
		if p := c.Verify(tok); p != nil {
			t.Fatalf("garbage token %q accepted", tok)
		}
	}
}

func TestNew_WeakSecret(t *testing.T) {
	if _, err := New([]byte("short"), time.Hour); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	c := newTestCodec(t, 0)
	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL: got %v want %v", c.TTL(), DefaultTTL)
	}
}

func TestNew_CopiesSecret(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	c, err := New(secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := c.Create(samplePayload())

	// Mutar el buffer original no debe afectar la verificación.
	secret[0] ^= 0xff
	if p := c.Verify(tok); p == nil {
		t.Fatal("codec shares the caller's secret buffer")
	}
}
