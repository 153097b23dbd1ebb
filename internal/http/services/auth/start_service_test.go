package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/providers"
)

func startFixture() StartService {
	creds := providers.Credentials{ClientID: "id", ClientSecret: "secret", RedirectURL: "https://app.example/cb"}
	reg := providers.NewRegistry(providers.RegistryConfig{
		X:        creds,
		Facebook: creds,
	})
	return NewStartService(StartDeps{Registry: reg})
}

func TestStart_PKCEProvider(t *testing.T) {
	s := startFixture()

	res, err := s.Start(context.Background(), StartRequest{Provider: "x"})
	require.NoError(t, err)
	require.True(t, res.UsesPKCE)
	require.Len(t, res.State, 64) // 32 bytes hex
	require.Len(t, res.Verifier, 64)

	u, err := url.Parse(res.AuthURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, res.State, q.Get("state"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))

	// El challenge publicado es exactamente S256(verifier).
	sum := sha256.Sum256([]byte(res.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), q.Get("code_challenge"))
}

func TestStart_NonPKCEProvider(t *testing.T) {
	s := startFixture()

	res, err := s.Start(context.Background(), StartRequest{Provider: "facebook"})
	require.NoError(t, err)
	require.False(t, res.UsesPKCE)
	require.Empty(t, res.Verifier)

	u, _ := url.Parse(res.AuthURL)
	require.False(t, u.Query().Has("code_challenge"))
}

func TestStart_FreshStatePerCall(t *testing.T) {
	s := startFixture()

	a, err := s.Start(context.Background(), StartRequest{Provider: "x"})
	require.NoError(t, err)
	b, err := s.Start(context.Background(), StartRequest{Provider: "x"})
	require.NoError(t, err)

	require.NotEqual(t, a.State, b.State)
	require.NotEqual(t, a.Verifier, b.Verifier)
}

func TestStart_Errors(t *testing.T) {
	s := startFixture()

	_, err := s.Start(context.Background(), StartRequest{})
	require.ErrorIs(t, err, ErrStartProviderMissing)

	_, err = s.Start(context.Background(), StartRequest{Provider: "google"})
	require.ErrorIs(t, err, ErrStartProviderUnknown)

	_, err = s.Start(context.Background(), StartRequest{Provider: "instagram"})
	require.ErrorIs(t, err, ErrStartProviderDisabled)
}
