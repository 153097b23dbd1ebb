package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// X implements OAuth 2.0 with PKCE against the X (Twitter) v2 API.
// The token endpoint authenticates with HTTP Basic (confidential client)
// and still requires the PKCE verifier.
type X struct {
	creds Credentials

	// Endpoints are fields so tests can point them at stubs.
	AuthEndpoint    string
	TokenEndpoint   string
	ProfileEndpoint string

	http *http.Client
}

// NewX creates the X provider client.
func NewX(creds Credentials) *X {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"tweet.read", "users.read", "offline.access"}
	}
	return &X{
		creds:           creds,
		AuthEndpoint:    "https://twitter.com/i/oauth2/authorize",
		TokenEndpoint:   "https://api.twitter.com/2/oauth2/token",
		ProfileEndpoint: "https://api.twitter.com/2/users/me",
		http:            newHTTPClient(),
	}
}

func (x *X) ID() string     { return "x" }
func (x *X) Label() string  { return "X" }
func (x *X) UsesPKCE() bool { return true }

// AuthorizationURL builds the authorize URL with S256 challenge.
func (x *X) AuthorizationURL(state, challenge string) (string, error) {
	u, err := url.Parse(x.AuthEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", x.creds.ClientID)
	q.Set("redirect_uri", x.creds.RedirectURL)
	q.Set("scope", strings.Join(x.creds.Scopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type xTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// ExchangeCode trades the authorization code for tokens.
func (x *X) ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", x.creds.RedirectURL)
	form.Set("client_id", x.creds.ClientID)
	form.Set("code_verifier", verifier)
	return x.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a fresh token set.
func (x *X) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", x.creds.ClientID)
	return x.tokenRequest(ctx, form)
}

func (x *X) tokenRequest(ctx context.Context, form url.Values) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(url.QueryEscape(x.creds.ClientID), url.QueryEscape(x.creds.ClientSecret))

	resp, err := x.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr xTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("x oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("x token endpoint: status %d", resp.StatusCode)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}
	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

type xUserResponse struct {
	Data struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

// FetchProfile fetches the authenticated user via /2/users/me.
// X does not expose email through this endpoint.
func (x *X) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	u := x.ProfileEndpoint + "?user.fields=profile_image_url"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := x.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("x api error: status %d", resp.StatusCode)
	}

	var ur xUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if ur.Data.ID == "" {
		return nil, ErrNoProviderUserID
	}

	display := ur.Data.Name
	if display == "" {
		display = ur.Data.Username
	}
	return &Profile{
		ProviderUserID: ur.Data.ID,
		Username:       ur.Data.Username,
		DisplayName:    display,
		AvatarURL:      ur.Data.ProfileImageURL,
	}, nil
}

var _ Provider = (*X)(nil)
