// Package providers contains the OAuth2 clients for the supported social
// identity providers and the read-only registry built from configuration.
//
// The provider set is closed: x, instagram, facebook, tiktok. Each client
// owns its endpoints and quirks (TikTok's client_key parameter, X's Basic
// auth on the token endpoint, Instagram's form-encoded exchange).
package providers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// TokenSet is the transient result of a code exchange. It lives in memory
// during the callback only; persistence always goes through encryption.
type TokenSet struct {
	AccessToken  string
	RefreshToken string // empty when the provider does not issue one
	ExpiresIn    int64  // seconds; 0 means the provider reported nothing
}

// Profile is the provider-reported identity. ProviderUserID is the only
// field trusted as a stable join key; display fields are last-write-wins.
type Profile struct {
	ProviderUserID string
	Username       string
	DisplayName    string
	AvatarURL      string
	Email          string
}

// Credentials holds the per-provider OAuth client configuration.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Configured reports whether both client id and secret are present.
func (c Credentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Provider is one social identity provider. Implementations are immutable
// after construction and safe for concurrent use.
type Provider interface {
	ID() string
	Label() string
	UsesPKCE() bool

	// AuthorizationURL composes the provider's authorize URL. challenge is
	// the S256 code challenge and is ignored by non-PKCE providers.
	AuthorizationURL(state, challenge string) (string, error)

	// ExchangeCode trades the authorization code for tokens. verifier is
	// the PKCE code verifier, empty for non-PKCE providers.
	ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error)

	// FetchProfile retrieves the identity behind the access token.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)

	// Refresh trades a refresh token for a new token set, or returns
	// ErrRefreshUnsupported.
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// Errores compartidos por los clientes de proveedores.
var (
	ErrRefreshUnsupported = errors.New("provider does not support token refresh")
	ErrNoProviderUserID   = errors.New("provider profile missing stable user id")
)

// outboundTimeout bounds every provider network call.
const outboundTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: outboundTimeout}
}
