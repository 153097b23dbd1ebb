package auth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/socialgate/internal/store"
)

// CallbackService procesa el retorno del provider: valida el handshake,
// canjea el code, trae el perfil, persiste y emite la sesión.
type CallbackService interface {
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// CallbackRequest junta lo que llegó por query string y lo que estaba en
// las cookies del handshake (que el controller ya limpió).
type CallbackRequest struct {
	// Provider es el que nombra la ruta del callback.
	Provider string

	// Query params del provider.
	State             string
	Code              string
	ProviderError     string
	ProviderErrorDesc string

	// Valores de las cookies del handshake; vacíos si expiraron o ya
	// fueron consumidos.
	ExpectedState    string
	ExpectedProvider string
	Verifier         string
}

// CallbackResult es un login exitoso: usuario persistido + token de
// sesión listo para la cookie.
type CallbackResult struct {
	User         *store.User
	SessionToken string
}

// Errores del callback service, en orden del pipeline.
var (
	ErrCallbackProviderReported = errors.New("provider reported an error")
	ErrCallbackMissingParameter = errors.New("missing code or state")
	ErrCallbackInvalidState     = errors.New("state mismatch")
	ErrCallbackProviderMismatch = errors.New("provider mismatch")
	ErrCallbackProviderUnknown  = errors.New("unknown provider")
	ErrCallbackProviderDisabled = errors.New("provider not configured")
	ErrCallbackExchangeFailed   = errors.New("code exchange failed")
	ErrCallbackProfileFailed    = errors.New("profile fetch failed")
	ErrCallbackPersistFailed    = errors.New("persisting login failed")
	ErrCallbackSessionFailed    = errors.New("session issuance failed")
)
