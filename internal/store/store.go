// Package store define el contrato contra el directorio externo de
// usuarios: una fila por identidad (provider, provider_user_id) y un
// historial append-only de tokens cifrados por usuario.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User es la fila del directorio, keyed por (provider, provider_user_id).
// Los campos de display son last-write-wins en cada login.
type User struct {
	ID             uuid.UUID
	Provider       string
	ProviderUserID string
	Username       string
	DisplayName    string
	AvatarURL      string
	Email          string
	CreatedAt      time.Time
	LastLoginAt    time.Time
}

// TokenRecord es una fila de tokens cifrados. Los blobs son strings
// opacos producidos por secretbox; este paquete nunca ve texto plano.
type TokenRecord struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Provider        string
	AccessTokenEnc  string
	RefreshTokenEnc string // vacío si el provider no emitió refresh token
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

var (
	ErrUserNotFound  = errors.New("store: user not found")
	ErrTokenNotFound = errors.New("store: no token rows for user")
)

// Store es el contrato completo del colaborador externo.
type Store interface {
	// FindByProviderIdentity busca por la clave natural.
	FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*User, error)

	// SaveLogin ejecuta upsert de usuario + insert de tokens como una
	// unidad lógica: si el insert de tokens falla, el login entero falla
	// y no queda fila de token parcial.
	SaveLogin(ctx context.Context, u User, t TokenRecord) (*User, error)

	// LatestToken retorna la fila de tokens más reciente del usuario.
	LatestToken(ctx context.Context, userID uuid.UUID) (*TokenRecord, error)

	// InsertToken agrega una fila de tokens (refresh desde el vault).
	InsertToken(ctx context.Context, t TokenRecord) error

	Ping(ctx context.Context) error
	Close()
}
