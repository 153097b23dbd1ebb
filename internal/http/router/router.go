// Package router arma el http.Handler del servicio: rutas del flujo de
// login social, health y métricas, con la cadena de middlewares.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/socialgate/internal/cache"
	authctrl "github.com/dropDatabas3/socialgate/internal/http/controllers/auth"
	"github.com/dropDatabas3/socialgate/internal/http/middlewares"
	"github.com/dropDatabas3/socialgate/internal/rate"
	"github.com/dropDatabas3/socialgate/internal/store"
)

// Deps son las dependencias del router.
type Deps struct {
	Auth  *authctrl.Controllers
	Store store.Store
	Cache cache.Client

	// RateLimiter es opcional; nil desactiva el rate limiting.
	RateLimiter rate.Limiter
}

// New construye el handler raíz con todas las rutas registradas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithSecurityHeaders())
	r.Use(middlewares.WithLogging())

	r.Route("/auth", func(r chi.Router) {
		r.Use(middlewares.WithNoStore())
		if d.RateLimiter != nil {
			r.Use(middlewares.WithRateLimit(d.RateLimiter))
		}

		r.Get("/start", d.Auth.Start.Start)
		r.Get("/callback/{provider}", d.Auth.Callback.Callback)
		r.Get("/session", d.Auth.Session.Session)
		r.Post("/logout", d.Auth.Session.Logout)
		r.Get("/providers", d.Auth.Providers.Providers)
	})

	r.Get("/healthz", healthHandler(d.Store, d.Cache))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// healthTimeout acota los pings a las dependencias.
const healthTimeout = 2 * time.Second

func healthHandler(st store.Store, c cache.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if err := st.Ping(ctx); err != nil {
			checks["store"] = err.Error()
			healthy = false
		} else {
			checks["store"] = "ok"
		}

		if c != nil {
			if err := c.Ping(ctx); err != nil {
				checks["cache"] = err.Error()
				healthy = false
			} else {
				checks["cache"] = "ok"
			}
		}

		status := "ok"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
