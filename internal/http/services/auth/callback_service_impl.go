package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/security/tokens"
	"github.com/dropDatabas3/socialgate/internal/session"
	"github.com/dropDatabas3/socialgate/internal/store"
	"github.com/dropDatabas3/socialgate/internal/vault"
)

// CallbackDeps contiene las dependencias del callback service.
type CallbackDeps struct {
	Registry *providers.Registry
	Vault    *vault.Vault
	Store    store.Store
	Sessions *session.Codec
}

type callbackService struct {
	registry *providers.Registry
	vault    *vault.Vault
	store    store.Store
	sessions *session.Codec
}

// NewCallbackService crea un CallbackService.
func NewCallbackService(d CallbackDeps) CallbackService {
	return &callbackService{
		registry: d.Registry,
		vault:    d.Vault,
		store:    d.Store,
		sessions: d.Sessions,
	}
}

// Callback corre el pipeline lineal del retorno OAuth. Cada etapa corta
// el flujo con su sentinel; no hay reintentos ni estados intermedios.
func (s *callbackService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Provider(req.Provider),
	)

	started := time.Now()
	result := "success"
	defer func() {
		metrics.Logins.WithLabelValues(req.Provider, result).Inc()
		metrics.CallbackDuration.WithLabelValues(req.Provider).Observe(time.Since(started).Seconds())
	}()

	if req.ProviderError != "" {
		result = "provider_error"
		log.Warn("provider returned an error",
			logger.String("error", req.ProviderError),
			logger.String("description", req.ProviderErrorDesc),
		)
		return nil, fmt.Errorf("%w: %s", ErrCallbackProviderReported, req.ProviderError)
	}

	// El state esperado vacío significa cookie expirada o ya consumida;
	// cae en missing junto con code/state ausentes del query.
	if req.Code == "" || req.State == "" || req.ExpectedState == "" {
		result = "missing_parameter"
		return nil, ErrCallbackMissingParameter
	}

	if !tokens.ConstantTimeEqual([]byte(req.State), []byte(req.ExpectedState)) {
		result = "invalid_state"
		log.Warn("state mismatch on callback")
		return nil, ErrCallbackInvalidState
	}

	if req.ExpectedProvider != req.Provider {
		result = "provider_mismatch"
		log.Warn("callback provider does not match handshake",
			logger.String("expected", req.ExpectedProvider),
		)
		return nil, ErrCallbackProviderMismatch
	}

	p, err := s.registry.Get(req.Provider)
	if err != nil {
		result = "provider_mismatch"
		if errors.Is(err, providers.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %q", ErrCallbackProviderUnknown, req.Provider)
		}
		return nil, fmt.Errorf("%w: %v", ErrCallbackProviderDisabled, err)
	}

	ts, err := p.ExchangeCode(ctx, req.Code, req.Verifier)
	if err != nil {
		result = "exchange_failed"
		log.Error("code exchange failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackExchangeFailed, err)
	}

	profile, err := p.FetchProfile(ctx, ts.AccessToken)
	if err != nil {
		result = "profile_failed"
		log.Error("profile fetch failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackProfileFailed, err)
	}

	record, err := s.vault.EncryptTokenSet(p.ID(), ts)
	if err != nil {
		result = "persist_failed"
		log.Error("token encryption failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackPersistFailed, err)
	}

	user, err := s.store.SaveLogin(ctx, store.User{
		Provider:       p.ID(),
		ProviderUserID: profile.ProviderUserID,
		Username:       profile.Username,
		DisplayName:    profile.DisplayName,
		AvatarURL:      profile.AvatarURL,
		Email:          profile.Email,
	}, record)
	if err != nil {
		result = "persist_failed"
		log.Error("persisting login failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackPersistFailed, err)
	}

	token, err := s.sessions.Create(session.Payload{
		Provider:       user.Provider,
		ProviderUserID: user.ProviderUserID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		AvatarURL:      user.AvatarURL,
		Email:          user.Email,
	})
	if err != nil {
		result = "persist_failed"
		log.Error("session issuance failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackSessionFailed, err)
	}

	log.Info("social login completed",
		logger.UserID(user.ID.String()),
		logger.ProviderUserID(user.ProviderUserID),
	)

	return &CallbackResult{User: user, SessionToken: token}, nil
}
