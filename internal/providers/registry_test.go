package providers

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func fullConfig() RegistryConfig {
	creds := func(id string) Credentials {
		return Credentials{
			ClientID:     id + "-client",
			ClientSecret: id + "-secret",
			RedirectURL:  "https://app.example/auth/callback/" + id,
		}
	}
	return RegistryConfig{
		X:         creds("x"),
		Instagram: creds("instagram"),
		Facebook:  creds("facebook"),
		TikTok:    creds("tiktok"),
	}
}

func TestRegistry_ClosedSet(t *testing.T) {
	r := NewRegistry(fullConfig())

	for _, id := range []string{"x", "instagram", "facebook", "tiktok"} {
		p, err := r.Get(id)
		if err != nil {
			t.Fatalf("Get(%q): %v", id, err)
		}
		if p.ID() != id {
			t.Fatalf("Get(%q) returned provider %q", id, p.ID())
		}
	}

	if _, err := r.Get("google"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRegistry_DisabledProvider(t *testing.T) {
	cfg := fullConfig()
	cfg.Instagram = Credentials{} // sin credenciales => registrado pero disabled

	r := NewRegistry(cfg)

	if _, err := r.Get("instagram"); !errors.Is(err, ErrProviderDisabled) {
		t.Fatalf("expected ErrProviderDisabled, got %v", err)
	}

	// Lookup ignora la habilitación: el refresh del vault lo necesita.
	if _, ok := r.Lookup("instagram"); !ok {
		t.Fatal("Lookup should return disabled providers")
	}

	var st *Status
	for _, s := range r.Statuses() {
		if s.ID == "instagram" {
			st = &s
			break
		}
	}
	if st == nil {
		t.Fatal("instagram missing from Statuses")
	}
	if st.Enabled {
		t.Fatal("instagram should be disabled")
	}
	if st.Reason == "" {
		t.Fatal("disabled status should carry a reason")
	}
	if strings.Contains(st.Reason, "secret-value") {
		t.Fatal("reason must not echo configured values")
	}
}

func TestRegistry_StatusOrder(t *testing.T) {
	r := NewRegistry(fullConfig())

	got := make([]string, 0, 4)
	for _, s := range r.Statuses() {
		got = append(got, s.ID)
	}
	want := []string{"x", "instagram", "facebook", "tiktok"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status order: got %v want %v", got, want)
		}
	}
}

func TestBuildAuthorizationURL_PKCEProviders(t *testing.T) {
	r := NewRegistry(fullConfig())

	for _, id := range []string{"x", "tiktok"} {
		raw, err := r.BuildAuthorizationURL(id, "state123", "challenge456")
		if err != nil {
			t.Fatalf("BuildAuthorizationURL(%q): %v", id, err)
		}
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		q := u.Query()
		if q.Get("state") != "state123" {
			t.Fatalf("%s: state missing", id)
		}
		if q.Get("code_challenge") != "challenge456" {
			t.Fatalf("%s: code_challenge missing", id)
		}
		if q.Get("code_challenge_method") != "S256" {
			t.Fatalf("%s: code_challenge_method: got %q", id, q.Get("code_challenge_method"))
		}
		if q.Get("response_type") != "code" {
			t.Fatalf("%s: response_type: got %q", id, q.Get("response_type"))
		}
	}
}

func TestBuildAuthorizationURL_NonPKCEProviders(t *testing.T) {
	r := NewRegistry(fullConfig())

	for _, id := range []string{"instagram", "facebook"} {
		raw, err := r.BuildAuthorizationURL(id, "state123", "")
		if err != nil {
			t.Fatalf("BuildAuthorizationURL(%q): %v", id, err)
		}
		u, _ := url.Parse(raw)
		q := u.Query()
		if q.Get("state") != "state123" {
			t.Fatalf("%s: state missing", id)
		}
		if q.Has("code_challenge") {
			t.Fatalf("%s: non-PKCE provider must not send code_challenge", id)
		}
	}
}

func TestBuildAuthorizationURL_TikTokClientKey(t *testing.T) {
	r := NewRegistry(fullConfig())

	raw, err := r.BuildAuthorizationURL("tiktok", "s", "c")
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("client_key") != "tiktok-client" {
		t.Fatalf("client_key: got %q", q.Get("client_key"))
	}
	if q.Has("client_id") {
		t.Fatal("tiktok must not send client_id")
	}
}

func TestCredentials_Configured(t *testing.T) {
	if (Credentials{}).Configured() {
		t.Fatal("empty credentials reported configured")
	}
	if (Credentials{ClientID: "a"}).Configured() {
		t.Fatal("missing secret reported configured")
	}
	if !(Credentials{ClientID: "a", ClientSecret: "b"}).Configured() {
		t.Fatal("full credentials reported unconfigured")
	}
}
