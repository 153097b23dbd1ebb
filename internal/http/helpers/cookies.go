// Package helpers contiene utilidades HTTP compartidas por los
// controllers: manejo de cookies del handshake OAuth y de sesión.
package helpers

import (
	"net/http"
	"strings"
	"time"
)

// Nombres de las cookies del handshake. Son de un solo uso: el callback
// las limpia incondicionalmente al entrar.
const (
	CookieState    = "sg_oauth_state"
	CookieProvider = "sg_oauth_provider"
	CookieVerifier = "sg_oauth_verifier"
)

// HandshakeValues son los valores leídos de las cookies del handshake.
// Campos vacíos significan cookie ausente (expirada o ya consumida).
type HandshakeValues struct {
	State    string
	Provider string
	Verifier string
}

// RequestIsSecure detecta si el request llegó por TLS, directo o detrás
// de un proxy que setea X-Forwarded-Proto.
func RequestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SetHandshakeCookies escribe las cookies del handshake. verifier puede
// ser vacío (provider sin PKCE) y en ese caso no se escribe esa cookie.
func SetHandshakeCookies(w http.ResponseWriter, r *http.Request, state, provider, verifier string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	secure := RequestIsSecure(r)

	setCookie(w, CookieState, state, maxAge, secure)
	setCookie(w, CookieProvider, provider, maxAge, secure)
	if verifier != "" {
		setCookie(w, CookieVerifier, verifier, maxAge, secure)
	}
}

// ReadHandshakeCookies lee los valores del handshake del request.
func ReadHandshakeCookies(r *http.Request) HandshakeValues {
	return HandshakeValues{
		State:    cookieValue(r, CookieState),
		Provider: cookieValue(r, CookieProvider),
		Verifier: cookieValue(r, CookieVerifier),
	}
}

// ClearHandshakeCookies invalida las tres cookies del handshake.
// Se llama siempre en el callback, incluso en caminos de error, para
// que ningún valor del handshake sea reutilizable.
func ClearHandshakeCookies(w http.ResponseWriter, r *http.Request) {
	secure := RequestIsSecure(r)
	clearCookie(w, CookieState, secure)
	clearCookie(w, CookieProvider, secure)
	clearCookie(w, CookieVerifier, secure)
}

// SetSessionCookie escribe la cookie de sesión firmada.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, name, token string, ttl time.Duration) {
	setCookie(w, name, token, int(ttl.Seconds()), RequestIsSecure(r))
}

// ClearSessionCookie invalida la cookie de sesión (logout).
func ClearSessionCookie(w http.ResponseWriter, r *http.Request, name string) {
	clearCookie(w, name, RequestIsSecure(r))
}

// SessionToken lee el token de sesión del request, o "".
func SessionToken(r *http.Request, name string) string {
	return cookieValue(r, name)
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
