package auth

import (
	"context"
	"errors"
)

// StartService inicia un login social: emite el material del handshake
// (state CSRF + verifier PKCE) y compone la URL de autorización.
type StartService interface {
	Start(ctx context.Context, req StartRequest) (*StartResult, error)
}

// StartRequest contiene los parámetros para iniciar el login.
type StartRequest struct {
	Provider string
}

// StartResult contiene el material del handshake. El controller lo
// persiste en cookies HTTP-only; nada queda del lado servidor.
type StartResult struct {
	AuthURL  string
	State    string
	Verifier string // vacío para providers sin PKCE
	UsesPKCE bool
}

// Errores del start service.
var (
	ErrStartProviderMissing  = errors.New("missing provider")
	ErrStartProviderUnknown  = errors.New("unknown provider")
	ErrStartProviderDisabled = errors.New("provider not configured")
	ErrStartAuthURLFailed    = errors.New("failed to generate auth URL")
)
