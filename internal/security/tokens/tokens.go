// Package tokens genera material aleatorio para el handshake OAuth
// (state CSRF, code_verifier PKCE) y helpers de comparación.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// GenerateHex genera nBytes aleatorios hex-encoded (2*nBytes chars).
// Con nBytes=32 alcanza holgado los 128 bits de entropía mínimos
// para state y code_verifier.
func GenerateHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateNonce genera un token opaco aleatorio (base64url sin padding).
func GenerateNonce(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// S256Challenge devuelve base64url(sha256(verifier)) sin padding,
// el code_challenge PKCE para code_challenge_method=S256.
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ConstantTimeEqual compara dos buffers en tiempo constante.
// Longitudes distintas se rechazan de entrada: la longitud no es
// información secreta.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
