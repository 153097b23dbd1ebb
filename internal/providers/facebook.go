package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Facebook implements OAuth 2.0 against the Facebook Graph API.
// The token endpoint is a GET with query parameters and there is no
// refresh token grant; expired tokens require a new login.
type Facebook struct {
	creds Credentials

	AuthEndpoint    string
	TokenEndpoint   string
	ProfileEndpoint string

	http *http.Client
}

// NewFacebook creates the Facebook provider client.
func NewFacebook(creds Credentials) *Facebook {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"public_profile", "email"}
	}
	return &Facebook{
		creds:           creds,
		AuthEndpoint:    "https://www.facebook.com/v19.0/dialog/oauth",
		TokenEndpoint:   "https://graph.facebook.com/v19.0/oauth/access_token",
		ProfileEndpoint: "https://graph.facebook.com/v19.0/me",
		http:            newHTTPClient(),
	}
}

func (f *Facebook) ID() string     { return "facebook" }
func (f *Facebook) Label() string  { return "Facebook" }
func (f *Facebook) UsesPKCE() bool { return false }

// AuthorizationURL builds the dialog/oauth URL. challenge is ignored.
func (f *Facebook) AuthorizationURL(state, challenge string) (string, error) {
	u, err := url.Parse(f.AuthEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", f.creds.ClientID)
	q.Set("redirect_uri", f.creds.RedirectURL)
	q.Set("scope", strings.Join(f.creds.Scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type fbTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// ExchangeCode trades the authorization code for an access token.
func (f *Facebook) ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error) {
	u, err := url.Parse(f.TokenEndpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("client_id", f.creds.ClientID)
	q.Set("client_secret", f.creds.ClientSecret)
	q.Set("redirect_uri", f.creds.RedirectURL)
	q.Set("code", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr fbTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != nil {
		return nil, fmt.Errorf("facebook oauth error: %s (%d)", tr.Error.Message, tr.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook token endpoint: status %d", resp.StatusCode)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}
	return &TokenSet{AccessToken: tr.AccessToken, ExpiresIn: tr.ExpiresIn}, nil
}

// Refresh is not supported by the Graph API code flow.
func (f *Facebook) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	return nil, ErrRefreshUnsupported
}

type fbProfileResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// FetchProfile fetches /me with the display fields this service stores.
func (f *Facebook) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	u := f.ProfileEndpoint + "?fields=" + url.QueryEscape("id,name,email,picture.width(256)")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook api error: status %d", resp.StatusCode)
	}

	var pr fbProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	if pr.ID == "" {
		return nil, ErrNoProviderUserID
	}
	return &Profile{
		ProviderUserID: pr.ID,
		Username:       pr.Name,
		DisplayName:    pr.Name,
		AvatarURL:      pr.Picture.Data.URL,
		Email:          pr.Email,
	}, nil
}

var _ Provider = (*Facebook)(nil)
