// Package metrics expone contadores prometheus del flujo de login social.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HandshakesStarted cuenta inicios de login por provider.
	HandshakesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialgate_handshakes_started_total",
		Help: "Social login handshakes started, by provider.",
	}, []string{"provider"})

	// Logins cuenta callbacks terminados por provider y resultado.
	// result: success | provider_error | missing_parameter | invalid_state |
	// provider_mismatch | exchange_failed | profile_failed | persist_failed.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialgate_logins_total",
		Help: "Social login callbacks completed, by provider and result.",
	}, []string{"provider", "result"})

	// CallbackDuration mide la duración del pipeline de callback.
	CallbackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialgate_callback_duration_seconds",
		Help:    "Callback pipeline duration, by provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// TokenRefreshes cuenta refrescos de access tokens desde el vault.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialgate_token_refreshes_total",
		Help: "Provider token refreshes performed by the vault, by provider and result.",
	}, []string{"provider", "result"})
)
