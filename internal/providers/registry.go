package providers

import (
	"errors"
	"fmt"
)

// Errors surfaced by the registry. Both map to a ConfigurationError at the
// HTTP layer: the login never leaves the service when they fire.
var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrProviderDisabled = errors.New("provider not configured")
)

// Status describes one provider for the /auth/providers listing.
// Reason never carries secret values, only which settings are absent.
type Status struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

type entry struct {
	provider Provider
	enabled  bool
	reason   string
}

// Registry holds the closed provider set. Built once at startup from
// configuration, read-only afterwards.
type Registry struct {
	order   []string
	entries map[string]entry
}

// RegistryConfig carries the credentials for every supported provider.
// Zero-value credentials leave that provider registered but disabled.
type RegistryConfig struct {
	X         Credentials
	Instagram Credentials
	Facebook  Credentials
	TikTok    Credentials
}

// NewRegistry builds the registry. The provider set is fixed; enablement
// depends solely on client id and secret being configured.
func NewRegistry(cfg RegistryConfig) *Registry {
	r := &Registry{entries: make(map[string]entry)}
	r.add(NewX(cfg.X), cfg.X)
	r.add(NewInstagram(cfg.Instagram), cfg.Instagram)
	r.add(NewFacebook(cfg.Facebook), cfg.Facebook)
	r.add(NewTikTok(cfg.TikTok), cfg.TikTok)
	return r
}

func (r *Registry) add(p Provider, creds Credentials) {
	e := entry{provider: p, enabled: creds.Configured()}
	if !e.enabled {
		switch {
		case creds.ClientID == "" && creds.ClientSecret == "":
			e.reason = "client id and secret not configured"
		case creds.ClientID == "":
			e.reason = "client id not configured"
		default:
			e.reason = "client secret not configured"
		}
	}
	r.order = append(r.order, p.ID())
	r.entries[p.ID()] = e
}

// Get returns an enabled provider by id. Unknown ids and disabled
// providers are distinct errors so the HTTP layer can phrase them apart.
func (r *Registry) Get(id string) (Provider, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	if !e.enabled {
		return nil, fmt.Errorf("%w: %s (%s)", ErrProviderDisabled, id, e.reason)
	}
	return e.provider, nil
}

// Lookup returns the provider whether or not it is enabled. Used by the
// vault's refresh path, which must not depend on current enablement.
func (r *Registry) Lookup(id string) (Provider, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// Statuses lists every provider in registration order, for the public
// provider listing; the frontend hides disabled entries.
func (r *Registry) Statuses() []Status {
	out := make([]Status, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		out = append(out, Status{
			ID:      id,
			Label:   e.provider.Label(),
			Enabled: e.enabled,
			Reason:  e.reason,
		})
	}
	return out
}

// BuildAuthorizationURL validates the provider and composes its authorize
// URL with the supplied state and, for PKCE providers, the S256 challenge.
func (r *Registry) BuildAuthorizationURL(id, state, challenge string) (string, error) {
	p, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return p.AuthorizationURL(state, challenge)
}
