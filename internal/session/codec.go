// Package session implementa el token de sesión stateless.
//
// Formato: base64url(json(payload)) + "." + base64url(hmac_sha256(secret, payloadB64)).
// La firma cubre exactamente el segmento de payload serializado; la
// verificación rechaza cualquier token cuya firma no coincida bit a bit.
// No hay tabla de sesiones del lado servidor: expirar es la única
// invalidación posible (rotar el secreto invalida todas las sesiones).
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/socialgate/internal/security/tokens"
)

// DefaultTTL es la vida útil de una sesión si no se configura otra.
const DefaultTTL = 7 * 24 * time.Hour

// MinSecretLength es el mínimo aceptado para el secreto de firma.
const MinSecretLength = 32

// ErrWeakSecret se retorna cuando el secreto de firma es demasiado corto.
var ErrWeakSecret = errors.New("session: signing secret must be at least 32 bytes")

// Payload es el contenido firmado de la sesión. Se emite una vez por
// login exitoso y viaja solo en la cookie.
type Payload struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Email          string `json:"email,omitempty"`
	IssuedAt       int64  `json:"iat"`
	ExpiresAt      int64  `json:"exp"`
}

// Codec firma y verifica tokens de sesión.
type Codec struct {
	secret []byte
	ttl    time.Duration

	// now es inyectable para tests de expiración.
	now func() time.Time
}

// New crea un Codec. TTL <= 0 usa DefaultTTL.
func New(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL retorna la vida útil configurada.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Create completa iat/exp y retorna el token firmado.
func (c *Codec) Create(p Payload) (string, error) {
	now := c.now().UTC()
	p.IssuedAt = now.Unix()
	p.ExpiresAt = now.Add(c.ttl).Unix()

	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	seg := base64.RawURLEncoding.EncodeToString(raw)
	return seg + "." + c.sign(seg), nil
}

// Verify valida el token y retorna el payload, o nil si el token es
// inválido, manipulado o expirado. Nunca retorna error: una sesión
// ausente o vencida es estado normal, no excepcional.
func (c *Codec) Verify(token string) *Payload {
	seg, sig, ok := strings.Cut(token, ".")
	if !ok || seg == "" || sig == "" {
		return nil
	}

	expected := c.sign(seg)
	if !tokens.ConstantTimeEqual([]byte(sig), []byte(expected)) {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	if p.ExpiresAt == 0 || time.Unix(p.ExpiresAt, 0).Before(c.now()) {
		return nil
	}
	return &p
}

func (c *Codec) sign(payloadSegment string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payloadSegment))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
