// Package vault envuelve secretbox alrededor del store externo: cifra
// tokens de proveedores antes de persistirlos y entrega access tokens
// frescos, refrescando contra el provider cuando expiran.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/store"
)

// ErrReauthenticationRequired: el access token expiró y no hay refresh
// token utilizable. El caller debe mandar al usuario a reloguearse.
var ErrReauthenticationRequired = errors.New("vault: reauthentication required")

// defaultExpiry se usa cuando el provider no reporta expires_in.
const defaultExpiry = time.Hour

// expirySkew adelanta la expiración efectiva para no entregar tokens
// al borde de vencer.
const expirySkew = 30 * time.Second

// Vault es el adaptador de tokens cifrados.
type Vault struct {
	box      *secretbox.Box
	store    store.Store
	registry *providers.Registry
	cache    cache.Client
}

// New crea el vault. cache puede ser nil (sin cache de access tokens).
func New(box *secretbox.Box, st store.Store, reg *providers.Registry, c cache.Client) *Vault {
	return &Vault{box: box, store: st, registry: reg, cache: c}
}

// EncryptTokenSet cifra access y refresh token de forma independiente y
// arma la fila a persistir. No escribe: el callback la pasa a SaveLogin
// para que upsert + insert sean una sola unidad.
func (v *Vault) EncryptTokenSet(provider string, ts *providers.TokenSet) (store.TokenRecord, error) {
	accessEnc, err := v.box.Encrypt(ts.AccessToken)
	if err != nil {
		return store.TokenRecord{}, fmt.Errorf("vault: encrypt access token: %w", err)
	}
	rec := store.TokenRecord{
		Provider:       provider,
		AccessTokenEnc: accessEnc,
		ExpiresAt:      expiresAt(ts.ExpiresIn),
	}
	if ts.RefreshToken != "" {
		refreshEnc, err := v.box.Encrypt(ts.RefreshToken)
		if err != nil {
			return store.TokenRecord{}, fmt.Errorf("vault: encrypt refresh token: %w", err)
		}
		rec.RefreshTokenEnc = refreshEnc
	}
	return rec, nil
}

// StoreTokens cifra y agrega una fila de tokens para un usuario existente.
// Usado por el camino de refresh; el login inicial va por SaveLogin.
func (v *Vault) StoreTokens(ctx context.Context, userID uuid.UUID, provider string, ts *providers.TokenSet) error {
	rec, err := v.EncryptTokenSet(provider, ts)
	if err != nil {
		return err
	}
	rec.UserID = userID
	return v.store.InsertToken(ctx, rec)
}

// FreshAccessToken retorna un access token vigente para el usuario.
// Orden: cache -> fila más reciente -> refresh contra el provider.
// Expirado sin refresh token (o provider sin soporte) =>
// ErrReauthenticationRequired. Blob corrupto => secretbox.ErrDecrypt,
// sin borrar nada.
func (v *Vault) FreshAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	log := logger.From(ctx).With(logger.Layer("vault"), logger.UserID(userID.String()))

	if v.cache != nil {
		if tok, err := v.cache.Get(ctx, cacheKey(userID)); err == nil && tok != "" {
			return tok, nil
		}
	}

	rec, err := v.store.LatestToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return "", ErrReauthenticationRequired
		}
		return "", err
	}

	now := time.Now().UTC()
	if now.Before(rec.ExpiresAt.Add(-expirySkew)) {
		tok, err := v.box.Decrypt(rec.AccessTokenEnc)
		if err != nil {
			return "", err
		}
		v.cacheToken(ctx, userID, tok, rec.ExpiresAt)
		return tok, nil
	}

	// Expirado: intentar refresh
	if rec.RefreshTokenEnc == "" {
		return "", ErrReauthenticationRequired
	}
	provider, ok := v.registry.Lookup(rec.Provider)
	if !ok {
		return "", ErrReauthenticationRequired
	}
	refreshToken, err := v.box.Decrypt(rec.RefreshTokenEnc)
	if err != nil {
		return "", err
	}

	ts, err := provider.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, providers.ErrRefreshUnsupported) {
			return "", ErrReauthenticationRequired
		}
		metrics.TokenRefreshes.WithLabelValues(rec.Provider, "error").Inc()
		log.Warn("token refresh failed", logger.Provider(rec.Provider), logger.Err(err))
		return "", fmt.Errorf("vault: refresh: %w", err)
	}
	metrics.TokenRefreshes.WithLabelValues(rec.Provider, "success").Inc()

	// El refresh token puede rotar; si el provider no devolvió uno nuevo,
	// conservamos el anterior.
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	if err := v.StoreTokens(ctx, userID, rec.Provider, ts); err != nil {
		return "", err
	}

	v.cacheToken(ctx, userID, ts.AccessToken, expiresAt(ts.ExpiresIn))
	log.Info("access token refreshed", logger.Provider(rec.Provider))
	return ts.AccessToken, nil
}

func (v *Vault) cacheToken(ctx context.Context, userID uuid.UUID, token string, exp time.Time) {
	if v.cache == nil {
		return
	}
	ttl := time.Until(exp.Add(-expirySkew))
	if ttl <= 0 {
		return
	}
	_ = v.cache.Set(ctx, cacheKey(userID), token, ttl)
}

func cacheKey(userID uuid.UUID) string {
	return "at:" + userID.String()
}

func expiresAt(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Now().UTC().Add(defaultExpiry)
	}
	return time.Now().UTC().Add(time.Duration(expiresIn) * time.Second)
}
