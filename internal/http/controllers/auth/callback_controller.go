package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/auth"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// CallbackController handles the social login callback endpoint.
type CallbackController struct {
	service           svc.CallbackService
	sessionCookieName string
	sessionTTL        time.Duration
	landingPath       string
}

// NewCallbackController creates a new CallbackController.
func NewCallbackController(service svc.CallbackService, cookieName string, sessionTTL time.Duration, landingPath string) *CallbackController {
	if landingPath == "" {
		landingPath = "/"
	}
	return &CallbackController{
		service:           service,
		sessionCookieName: cookieName,
		sessionTTL:        sessionTTL,
		landingPath:       landingPath,
	}
}

// Callback handles GET /auth/callback/{provider}
//
// The handshake cookies are cleared unconditionally before anything
// else runs. A replayed callback therefore arrives with empty expected
// values and fails validation instead of reusing the handshake.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	provider := chi.URLParam(r, "provider")
	if provider == "" {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/auth/callback/"), "/")
		if len(parts) >= 1 {
			provider = parts[0]
		}
	}

	handshake := helpers.ReadHandshakeCookies(r)
	helpers.ClearHandshakeCookies(w, r)

	q := r.URL.Query()
	result, err := c.service.Callback(ctx, svc.CallbackRequest{
		Provider:          provider,
		State:             strings.TrimSpace(q.Get("state")),
		Code:              strings.TrimSpace(q.Get("code")),
		ProviderError:     strings.TrimSpace(q.Get("error")),
		ProviderErrorDesc: strings.TrimSpace(q.Get("error_description")),
		ExpectedState:     handshake.State,
		ExpectedProvider:  handshake.Provider,
		Verifier:          handshake.Verifier,
	})
	if err != nil {
		log.Warn("callback failed", logger.Provider(provider), logger.Err(err))
		c.redirectError(w, r, err)
		return
	}

	helpers.SetSessionCookie(w, r, c.sessionCookieName, result.SessionToken, c.sessionTTL)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, c.landingPath+"?auth=success", http.StatusFound)

	log.Debug("login completed", logger.Provider(provider), logger.UserID(result.User.ID.String()))
}

// redirectError sends the browser back to the landing page with a short
// human-readable auth_error message. No internals leak into the URL.
func (c *CallbackController) redirectError(w http.ResponseWriter, r *http.Request, err error) {
	var msg string
	switch {
	case errors.Is(err, svc.ErrCallbackProviderReported):
		msg = "the provider rejected the login"
	case errors.Is(err, svc.ErrCallbackMissingParameter):
		msg = "login expired, please try again"
	case errors.Is(err, svc.ErrCallbackInvalidState):
		msg = "login could not be verified, please try again"
	case errors.Is(err, svc.ErrCallbackProviderMismatch):
		msg = "login could not be verified, please try again"
	case errors.Is(err, svc.ErrCallbackProviderUnknown):
		msg = "unknown provider"
	case errors.Is(err, svc.ErrCallbackProviderDisabled):
		msg = "provider not available"
	case errors.Is(err, svc.ErrCallbackExchangeFailed),
		errors.Is(err, svc.ErrCallbackProfileFailed):
		msg = "could not sign in with the provider"
	default:
		msg = "login failed, please try again"
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, c.landingPath+"?auth_error="+url.QueryEscape(msg), http.StatusFound)
}
