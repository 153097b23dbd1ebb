package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/session"
	"github.com/dropDatabas3/socialgate/internal/store"
	"github.com/dropDatabas3/socialgate/internal/vault"
)

type callbackFixture struct {
	services Services
	store    *store.Memory
	sessions *session.Codec
	registry *providers.Registry
	box      *secretbox.Box
}

// newCallbackFixture arma el stack completo del callback con un provider
// X apuntado a stubs httptest de token y perfil.
func newCallbackFixture(t *testing.T, tokenHandler, profileHandler http.HandlerFunc) *callbackFixture {
	t.Helper()

	key := make([]byte, secretbox.KeyLength)
	for i := range key {
		key[i] = byte(i + 100)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)

	sessions, err := session.New([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	creds := providers.Credentials{ClientID: "id", ClientSecret: "secret", RedirectURL: "https://app.example/auth/callback/x"}
	reg := providers.NewRegistry(providers.RegistryConfig{X: creds})

	if tokenHandler != nil {
		srv := httptest.NewServer(tokenHandler)
		t.Cleanup(srv.Close)
		p, _ := reg.Lookup("x")
		p.(*providers.X).TokenEndpoint = srv.URL
	}
	if profileHandler != nil {
		srv := httptest.NewServer(profileHandler)
		t.Cleanup(srv.Close)
		p, _ := reg.Lookup("x")
		p.(*providers.X).ProfileEndpoint = srv.URL
	}

	mem := store.NewMemory()
	v := vault.New(box, mem, reg, nil)

	return &callbackFixture{
		services: New(Deps{Registry: reg, Vault: v, Store: mem, Sessions: sessions}),
		store:    mem,
		sessions: sessions,
		registry: reg,
		box:      box,
	}
}

func okTokenHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":7200}`))
	}
}

func okProfileHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"42","name":"Ada Lovelace","username":"ada","profile_image_url":"https://pbs.example/ada.png"}}`))
	}
}

func okRequest() CallbackRequest {
	return CallbackRequest{
		Provider:         "x",
		State:            "state-abc",
		Code:             "code-1",
		ExpectedState:    "state-abc",
		ExpectedProvider: "x",
		Verifier:         "verif-1",
	}
}

func TestCallback_HappyPath(t *testing.T) {
	f := newCallbackFixture(t, okTokenHandler(t), okProfileHandler(t))

	res, err := f.services.Callback.Callback(context.Background(), okRequest())
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.Equal(t, "x", res.User.Provider)
	require.Equal(t, "42", res.User.ProviderUserID)
	require.Equal(t, "ada", res.User.Username)

	// Sesión firmada y verificable.
	p := f.sessions.Verify(res.SessionToken)
	require.NotNil(t, p)
	require.Equal(t, "42", p.ProviderUserID)

	// Tokens persistidos cifrados, nunca en claro.
	rec, err := f.store.LatestToken(context.Background(), res.User.ID)
	require.NoError(t, err)
	require.NotEqual(t, "at-1", rec.AccessTokenEnc)
	at, err := f.box.Decrypt(rec.AccessTokenEnc)
	require.NoError(t, err)
	require.Equal(t, "at-1", at)
}

func TestCallback_SecondLoginSameIdentity(t *testing.T) {
	f := newCallbackFixture(t, okTokenHandler(t), okProfileHandler(t))

	first, err := f.services.Callback.Callback(context.Background(), okRequest())
	require.NoError(t, err)
	second, err := f.services.Callback.Callback(context.Background(), okRequest())
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, 1, f.store.UserCount())
	require.Equal(t, 2, f.store.TokenCount(first.User.ID))
}

func TestCallback_ProviderReportedError(t *testing.T) {
	f := newCallbackFixture(t, nil, nil)

	req := okRequest()
	req.ProviderError = "access_denied"
	req.Code = ""

	_, err := f.services.Callback.Callback(context.Background(), req)
	require.ErrorIs(t, err, ErrCallbackProviderReported)
}

func TestCallback_MissingParameters(t *testing.T) {
	f := newCallbackFixture(t, nil, nil)

	for _, mutate := range []func(*CallbackRequest){
		func(r *CallbackRequest) { r.Code = "" },
		func(r *CallbackRequest) { r.State = "" },
		func(r *CallbackRequest) { r.ExpectedState = "" }, // cookie expirada o replay
	} {
		req := okRequest()
		mutate(&req)
		_, err := f.services.Callback.Callback(context.Background(), req)
		require.ErrorIs(t, err, ErrCallbackMissingParameter)
	}
}

func TestCallback_StateMismatch(t *testing.T) {
	f := newCallbackFixture(t, nil, nil)

	req := okRequest()
	req.State = "otro-state"

	_, err := f.services.Callback.Callback(context.Background(), req)
	require.ErrorIs(t, err, ErrCallbackInvalidState)
}

func TestCallback_ProviderMismatch(t *testing.T) {
	f := newCallbackFixture(t, nil, nil)

	req := okRequest()
	req.ExpectedProvider = "facebook"

	_, err := f.services.Callback.Callback(context.Background(), req)
	require.ErrorIs(t, err, ErrCallbackProviderMismatch)
}

func TestCallback_UnknownProvider(t *testing.T) {
	f := newCallbackFixture(t, nil, nil)

	req := okRequest()
	req.Provider = "google"
	req.ExpectedProvider = "google"

	_, err := f.services.Callback.Callback(context.Background(), req)
	require.ErrorIs(t, err, ErrCallbackProviderUnknown)
}

func TestCallback_ExchangeFailure(t *testing.T) {
	f := newCallbackFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}, nil)

	_, err := f.services.Callback.Callback(context.Background(), okRequest())
	require.ErrorIs(t, err, ErrCallbackExchangeFailed)

	// Nada persistido en un canje fallido.
	require.Equal(t, 0, f.store.UserCount())
}

func TestCallback_ProfileFailure(t *testing.T) {
	f := newCallbackFixture(t, okTokenHandler(t), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := f.services.Callback.Callback(context.Background(), okRequest())
	require.ErrorIs(t, err, ErrCallbackProfileFailed)
	require.Equal(t, 0, f.store.UserCount())
}
