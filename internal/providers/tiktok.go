package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TikTok implements OAuth 2.0 with PKCE against the TikTok open API.
// TikTok names its client identifier parameter client_key, not client_id,
// on both the authorize and token endpoints.
type TikTok struct {
	creds Credentials

	AuthEndpoint    string
	TokenEndpoint   string
	ProfileEndpoint string

	http *http.Client
}

// NewTikTok creates the TikTok provider client.
func NewTikTok(creds Credentials) *TikTok {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"user.info.basic"}
	}
	return &TikTok{
		creds:           creds,
		AuthEndpoint:    "https://www.tiktok.com/v2/auth/authorize/",
		TokenEndpoint:   "https://open.tiktokapis.com/v2/oauth/token/",
		ProfileEndpoint: "https://open.tiktokapis.com/v2/user/info/",
		http:            newHTTPClient(),
	}
}

func (t *TikTok) ID() string     { return "tiktok" }
func (t *TikTok) Label() string  { return "TikTok" }
func (t *TikTok) UsesPKCE() bool { return true }

// AuthorizationURL builds the authorize URL with S256 challenge.
func (t *TikTok) AuthorizationURL(state, challenge string) (string, error) {
	u, err := url.Parse(t.AuthEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_key", t.creds.ClientID)
	q.Set("redirect_uri", t.creds.RedirectURL)
	q.Set("scope", strings.Join(t.creds.Scopes, ","))
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type tiktokTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// ExchangeCode trades the authorization code for tokens.
func (t *TikTok) ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("client_key", t.creds.ClientID)
	form.Set("client_secret", t.creds.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", t.creds.RedirectURL)
	form.Set("code_verifier", verifier)
	return t.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a fresh token set.
func (t *TikTok) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("client_key", t.creds.ClientID)
	form.Set("client_secret", t.creds.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return t.tokenRequest(ctx, form)
}

func (t *TikTok) tokenRequest(ctx context.Context, form url.Values) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("tiktok oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiktok token endpoint: status %d", resp.StatusCode)
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

type tiktokUserResponse struct {
	Data struct {
		User struct {
			OpenID      string `json:"open_id"`
			DisplayName string `json:"display_name"`
			AvatarURL   string `json:"avatar_url"`
		} `json:"user"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchProfile fetches user info. TikTok has no username distinct from
// the display name at this scope, and never returns email.
func (t *TikTok) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	u := t.ProfileEndpoint + "?fields=" + url.QueryEscape("open_id,display_name,avatar_url")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiktok api error: status %d", resp.StatusCode)
	}

	var ur tiktokUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if ur.Error.Code != "" && ur.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok api error: %s - %s", ur.Error.Code, ur.Error.Message)
	}
	if ur.Data.User.OpenID == "" {
		return nil, ErrNoProviderUserID
	}
	return &Profile{
		ProviderUserID: ur.Data.User.OpenID,
		Username:       ur.Data.User.DisplayName,
		DisplayName:    ur.Data.User.DisplayName,
		AvatarURL:      ur.Data.User.AvatarURL,
	}, nil
}

var _ Provider = (*TikTok)(nil)
