// Package auth agrupa los controllers HTTP del flujo de login social.
package auth

import (
	"time"

	svc "github.com/dropDatabas3/socialgate/internal/http/services/auth"
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/session"
)

// Deps son las dependencias de los controllers del dominio.
type Deps struct {
	Services     svc.Services
	Registry     *providers.Registry
	Sessions     *session.Codec
	CookieName   string
	SessionTTL   time.Duration
	HandshakeTTL time.Duration
	LandingPath  string
}

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Start     *StartController
	Callback  *CallbackController
	Session   *SessionController
	Providers *ProvidersController
}

// NewControllers crea todos los controllers del dominio.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Start:     NewStartController(d.Services.Start, d.HandshakeTTL),
		Callback:  NewCallbackController(d.Services.Callback, d.CookieName, d.SessionTTL, d.LandingPath),
		Session:   NewSessionController(d.Sessions, d.CookieName),
		Providers: NewProvidersController(d.Registry),
	}
}
