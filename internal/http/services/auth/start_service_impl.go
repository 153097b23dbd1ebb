package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/security/tokens"
)

// StartDeps contiene las dependencias del start service.
type StartDeps struct {
	Registry *providers.Registry
}

type startService struct {
	registry *providers.Registry
}

// NewStartService crea un StartService.
func NewStartService(d StartDeps) StartService {
	return &startService{registry: d.Registry}
}

// entropyBytes por valor generado: 32 bytes => 256 bits, muy por encima
// del mínimo de 128 bits para state y code_verifier.
const entropyBytes = 32

func (s *startService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.start"))

	if req.Provider == "" {
		return nil, ErrStartProviderMissing
	}

	p, err := s.registry.Get(req.Provider)
	if err != nil {
		if errors.Is(err, providers.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %q", ErrStartProviderUnknown, req.Provider)
		}
		log.Warn("provider not configured", logger.Provider(req.Provider))
		return nil, fmt.Errorf("%w: %v", ErrStartProviderDisabled, err)
	}

	state, err := tokens.GenerateHex(entropyBytes)
	if err != nil {
		log.Error("failed to generate state", logger.Err(err))
		return nil, ErrStartAuthURLFailed
	}

	var verifier, challenge string
	if p.UsesPKCE() {
		verifier, err = tokens.GenerateHex(entropyBytes)
		if err != nil {
			log.Error("failed to generate code verifier", logger.Err(err))
			return nil, ErrStartAuthURLFailed
		}
		challenge = tokens.S256Challenge(verifier)
	}

	authURL, err := p.AuthorizationURL(state, challenge)
	if err != nil {
		log.Error("failed to build auth URL", logger.Provider(req.Provider), logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrStartAuthURLFailed, err)
	}

	metrics.HandshakesStarted.WithLabelValues(p.ID()).Inc()
	log.Info("social login started", logger.Provider(p.ID()), logger.Bool("pkce", p.UsesPKCE()))

	return &StartResult{
		AuthURL:  authURL,
		State:    state,
		Verifier: verifier,
		UsesPKCE: p.UsesPKCE(),
	}, nil
}
