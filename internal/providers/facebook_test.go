package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFacebook_ExchangeCode_GETWithQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method: %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("client_id") != "facebook-client" || q.Get("client_secret") != "facebook-secret" {
			t.Fatalf("credentials missing from query: %v", q)
		}
		if q.Get("code") != "fb-code" {
			t.Fatalf("code: %q", q.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-fb","token_type":"bearer","expires_in":5183944}`))
	}))
	defer srv.Close()

	fb := NewFacebook(testCreds("facebook"))
	fb.TokenEndpoint = srv.URL

	ts, err := fb.ExchangeCode(context.Background(), "fb-code", "")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if ts.AccessToken != "at-fb" || ts.ExpiresIn != 5183944 {
		t.Fatalf("token set mismatch: %+v", ts)
	}
	if ts.RefreshToken != "" {
		t.Fatal("facebook never issues a refresh token")
	}
}

func TestFacebook_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-7","name":"Face Book","email":"fb@example.com","picture":{"data":{"url":"https://cdn.example/fb.png"}}}`))
	}))
	defer srv.Close()

	fb := NewFacebook(testCreds("facebook"))
	fb.ProfileEndpoint = srv.URL

	p, err := fb.FetchProfile(context.Background(), "at")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.ProviderUserID != "fb-7" || p.DisplayName != "Face Book" {
		t.Fatalf("profile mismatch: %+v", p)
	}
	if p.Email != "fb@example.com" {
		t.Fatalf("email: %q", p.Email)
	}
	if p.AvatarURL != "https://cdn.example/fb.png" {
		t.Fatalf("avatar: %q", p.AvatarURL)
	}
}
