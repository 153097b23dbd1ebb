package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/auth"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// StartController handles the social login start endpoint.
type StartController struct {
	service      svc.StartService
	handshakeTTL time.Duration
}

// NewStartController creates a new StartController.
func NewStartController(service svc.StartService, handshakeTTL time.Duration) *StartController {
	return &StartController{service: service, handshakeTTL: handshakeTTL}
}

// Start handles GET /auth/start?provider={provider}
//
// On success it sets the handshake cookies and redirects the browser to
// the provider's authorization page. On error it responds with JSON and
// sets no cookies, so a failed start leaves nothing behind.
func (c *StartController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("StartController.Start"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	provider := strings.TrimSpace(r.URL.Query().Get("provider"))
	if provider == "" {
		log.Warn("missing provider in query")
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("provider required"))
		return
	}

	result, err := c.service.Start(ctx, svc.StartRequest{Provider: provider})
	if err != nil {
		log.Warn("start failed", logger.Provider(provider), logger.Err(err))

		switch {
		case errors.Is(err, svc.ErrStartProviderMissing):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("provider required"))
		case errors.Is(err, svc.ErrStartProviderUnknown):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown provider"))
		case errors.Is(err, svc.ErrStartProviderDisabled):
			httperrors.WriteError(w, httperrors.ErrConfiguration.WithDetail("provider not configured"))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	helpers.SetHandshakeCookies(w, r, result.State, provider, result.Verifier, c.handshakeTTL)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, result.AuthURL, http.StatusFound)

	log.Debug("redirect to provider", logger.Provider(provider), logger.Bool("pkce", result.UsesPKCE))
}
