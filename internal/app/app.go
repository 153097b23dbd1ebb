// Package app es el composition root: arma todas las dependencias a
// partir de la config y expone el http.Handler listo para servir.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/config"
	authctrl "github.com/dropDatabas3/socialgate/internal/http/controllers/auth"
	"github.com/dropDatabas3/socialgate/internal/http/router"
	authsvc "github.com/dropDatabas3/socialgate/internal/http/services/auth"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/providers"
	"github.com/dropDatabas3/socialgate/internal/rate"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/session"
	"github.com/dropDatabas3/socialgate/internal/store"
	"github.com/dropDatabas3/socialgate/internal/store/pg"
	"github.com/dropDatabas3/socialgate/internal/vault"
)

// App agrupa lo construido: el handler y los recursos que hay que
// cerrar al apagar.
type App struct {
	Handler http.Handler
	Store   store.Store
	Cache   cache.Client
}

// Build construye la aplicación completa desde la config.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.L().With(logger.Component("app"))

	key, err := secretbox.ParseKey(cfg.Security.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token encryption key: %w", err)
	}
	box, err := secretbox.New(key)
	if err != nil {
		return nil, fmt.Errorf("token encryption key: %w", err)
	}

	sessions, err := session.New([]byte(cfg.Session.SigningSecret), cfg.SessionTTL())
	if err != nil {
		return nil, fmt.Errorf("session signing secret: %w", err)
	}

	registry := providers.NewRegistry(providers.RegistryConfig{
		X:         credentials(cfg.Providers.X),
		Instagram: credentials(cfg.Providers.Instagram),
		Facebook:  credentials(cfg.Providers.Facebook),
		TikTok:    credentials(cfg.Providers.TikTok),
	})
	for _, s := range registry.Statuses() {
		if s.Enabled {
			log.Info("provider enabled", logger.Provider(s.ID))
		} else {
			log.Warn("provider disabled", logger.Provider(s.ID), logger.String("reason", s.Reason))
		}
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}

	v := vault.New(box, st, registry, c)

	services := authsvc.New(authsvc.Deps{
		Registry: registry,
		Vault:    v,
		Store:    st,
		Sessions: sessions,
	})

	controllers := authctrl.NewControllers(authctrl.Deps{
		Services:     services,
		Registry:     registry,
		Sessions:     sessions,
		CookieName:   cfg.Session.CookieName,
		SessionTTL:   cfg.SessionTTL(),
		HandshakeTTL: cfg.HandshakeTTL(),
		LandingPath:  cfg.Server.LandingPath,
	})

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = rate.NewFixedWindow(c, "rl", cfg.Rate.Limit, cfg.RateWindow())
	}

	handler := router.New(router.Deps{
		Auth:        controllers,
		Store:       st,
		Cache:       c,
		RateLimiter: limiter,
	})

	return &App{Handler: handler, Store: st, Cache: c}, nil
}

// Close libera store y cache. Seguro de llamar más de una vez.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}

// openStore abre postgres cuando hay DSN; sin DSN cae al store en
// memoria, pensado para desarrollo local sin base.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Storage.DSN == "" {
		logger.L().Warn("no storage DSN configured, using in-memory store")
		return store.NewMemory(), nil
	}

	lifetime := 30 * time.Minute
	if cfg.Storage.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.Storage.ConnMaxLifetime); err == nil {
			lifetime = d
		}
	}

	st, err := pg.Open(ctx, cfg.Storage.DSN, cfg.Storage.MaxConns, lifetime)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return st, nil
}

func credentials(p config.ProviderConfig) providers.Credentials {
	return providers.Credentials{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       p.Scopes,
	}
}
