// Package auth contiene los services del flujo de login social:
// start (handshake hacia el provider) y callback (retorno, canje,
// persistencia y sesión).
package auth

import (
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/session"
	"github.com/dropDatabas3/socialgate/internal/store"
	"github.com/dropDatabas3/socialgate/internal/vault"
)

// Deps son las dependencias externas de los services del dominio.
type Deps struct {
	Registry *providers.Registry
	Vault    *vault.Vault
	Store    store.Store
	Sessions *session.Codec
}

// Services agrupa los services del dominio auth.
type Services struct {
	Start    StartService
	Callback CallbackService
}

// New crea todos los services del dominio con sus dependencias.
func New(d Deps) Services {
	return Services{
		Start: NewStartService(StartDeps{Registry: d.Registry}),
		Callback: NewCallbackService(CallbackDeps{
			Registry: d.Registry,
			Vault:    d.Vault,
			Store:    d.Store,
			Sessions: d.Sessions,
		}),
	}
}
