package auth

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/session"
)

// SessionController handles session introspection and logout.
type SessionController struct {
	sessions   *session.Codec
	cookieName string
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessions *session.Codec, cookieName string) *SessionController {
	return &SessionController{sessions: sessions, cookieName: cookieName}
}

type sessionUser struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Email          string `json:"email,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user"`
}

// Session handles GET /auth/session
//
// A missing, tampered or expired cookie is not an error: the response
// is simply authenticated=false with a null user.
func (c *SessionController) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	resp := sessionResponse{}
	if token := helpers.SessionToken(r, c.cookieName); token != "" {
		if p := c.sessions.Verify(token); p != nil {
			resp.Authenticated = true
			resp.User = &sessionUser{
				Provider:       p.Provider,
				ProviderUserID: p.ProviderUserID,
				Username:       p.Username,
				DisplayName:    p.DisplayName,
				AvatarURL:      p.AvatarURL,
				Email:          p.Email,
			}
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// Logout handles POST /auth/logout
//
// Stateless sessions cannot be revoked server side; logout clears the
// cookie and the token simply ages out.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Logout"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	helpers.ClearSessionCookie(w, r, c.cookieName)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))

	log.Debug("session cookie cleared")
}
