package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Instagram implements the Instagram Basic Display OAuth flow.
// The exchange returns a short-lived token (about an hour) and no
// refresh token through this grant.
type Instagram struct {
	creds Credentials

	AuthEndpoint    string
	TokenEndpoint   string
	ProfileEndpoint string

	http *http.Client
}

// instagramDefaultExpiry: el endpoint de exchange no reporta expires_in
// para el token corto; Instagram documenta ~1 hora.
const instagramDefaultExpiry = 3600

// NewInstagram creates the Instagram provider client.
func NewInstagram(creds Credentials) *Instagram {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"user_profile"}
	}
	return &Instagram{
		creds:           creds,
		AuthEndpoint:    "https://api.instagram.com/oauth/authorize",
		TokenEndpoint:   "https://api.instagram.com/oauth/access_token",
		ProfileEndpoint: "https://graph.instagram.com/me",
		http:            newHTTPClient(),
	}
}

func (ig *Instagram) ID() string     { return "instagram" }
func (ig *Instagram) Label() string  { return "Instagram" }
func (ig *Instagram) UsesPKCE() bool { return false }

// AuthorizationURL builds the authorize URL. challenge is ignored.
func (ig *Instagram) AuthorizationURL(state, challenge string) (string, error) {
	u, err := url.Parse(ig.AuthEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", ig.creds.ClientID)
	q.Set("redirect_uri", ig.creds.RedirectURL)
	q.Set("scope", strings.Join(ig.creds.Scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type igTokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      any    `json:"user_id"` // numeric in practice, tolerate string
	ErrorType   string `json:"error_type,omitempty"`
	ErrorMsg    string `json:"error_message,omitempty"`
}

// ExchangeCode trades the authorization code for a short-lived token.
func (ig *Instagram) ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("client_id", ig.creds.ClientID)
	form.Set("client_secret", ig.creds.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", ig.creds.RedirectURL)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := ig.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr igTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.ErrorType != "" {
		return nil, fmt.Errorf("instagram oauth error: %s - %s", tr.ErrorType, tr.ErrorMsg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram token endpoint: status %d", resp.StatusCode)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}
	return &TokenSet{AccessToken: tr.AccessToken, ExpiresIn: instagramDefaultExpiry}, nil
}

// Refresh is not supported through the Basic Display code grant.
func (ig *Instagram) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	return nil, ErrRefreshUnsupported
}

type igProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FetchProfile fetches /me. Instagram exposes neither display name nor
// email through Basic Display; username doubles as the display name.
func (ig *Instagram) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	u := ig.ProfileEndpoint + "?fields=id,username&access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ig.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram api error: status %d", resp.StatusCode)
	}

	var pr igProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	if pr.ID == "" {
		return nil, ErrNoProviderUserID
	}
	return &Profile{
		ProviderUserID: pr.ID,
		Username:       pr.Username,
		DisplayName:    pr.Username,
	}, nil
}

var _ Provider = (*Instagram)(nil)
