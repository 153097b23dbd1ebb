package auth

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/providers"
)

// ProvidersController exposes the provider catalog.
type ProvidersController struct {
	registry *providers.Registry
}

// NewProvidersController creates a new ProvidersController.
func NewProvidersController(registry *providers.Registry) *ProvidersController {
	return &ProvidersController{registry: registry}
}

type providerStatus struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

// Providers handles GET /auth/providers
//
// Lists every known provider with its enablement, so a frontend can
// render only the buttons that will actually work.
func (c *ProvidersController) Providers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	statuses := c.registry.Statuses()
	out := make([]providerStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, providerStatus{
			ID:      s.ID,
			Label:   s.Label,
			Enabled: s.Enabled,
			Reason:  s.Reason,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"providers": out})
}
