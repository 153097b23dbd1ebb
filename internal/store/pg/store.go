// Package pg implementa store.Store sobre postgres con pgx.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialgate/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open crea el pool y verifica la conexión.
func Open(ctx context.Context, dsn string, maxConns int, connMaxLifetime time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	if connMaxLifetime > 0 {
		cfg.MaxConnLifetime = connMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

const userColumns = `id, provider, provider_user_id, username, display_name, avatar_url, email, created_at, last_login_at`

func scanUser(row pgx.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Provider, &u.ProviderUserID, &u.Username,
		&u.DisplayName, &u.AvatarURL, &u.Email, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*store.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		  FROM social_user
		 WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID)
	return scanUser(row)
}

// SaveLogin corre upsert + insert de tokens en una transacción.
// El upsert es idempotente y last-write-wins: dos logins concurrentes de
// la misma identidad no dependen de orden.
func (s *Store) SaveLogin(ctx context.Context, u store.User, t store.TokenRecord) (*store.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO social_user (id, provider, provider_user_id, username, display_name, avatar_url, email, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (provider, provider_user_id) DO UPDATE SET
		    username      = EXCLUDED.username,
		    display_name  = EXCLUDED.display_name,
		    avatar_url    = EXCLUDED.avatar_url,
		    email         = EXCLUDED.email,
		    last_login_at = now()
		RETURNING `+userColumns,
		uuid.New(), u.Provider, u.ProviderUserID, u.Username, u.DisplayName, u.AvatarURL, u.Email)

	saved, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO social_user_token (id, user_id, provider, access_token_enc, refresh_token_enc, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, now())`,
		uuid.New(), saved.ID, t.Provider, t.AccessTokenEnc, t.RefreshTokenEnc, t.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) LatestToken(ctx context.Context, userID uuid.UUID) (*store.TokenRecord, error) {
	var t store.TokenRecord
	var refresh *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, provider, access_token_enc, refresh_token_enc, expires_at, created_at
		  FROM social_user_token
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, userID).
		Scan(&t.ID, &t.UserID, &t.Provider, &t.AccessTokenEnc, &refresh, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		return nil, err
	}
	if refresh != nil {
		t.RefreshTokenEnc = *refresh
	}
	return &t, nil
}

func (s *Store) InsertToken(ctx context.Context, t store.TokenRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO social_user_token (id, user_id, provider, access_token_enc, refresh_token_enc, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, now())`,
		uuid.New(), t.UserID, t.Provider, t.AccessTokenEnc, t.RefreshTokenEnc, t.ExpiresAt)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

var _ store.Store = (*Store)(nil)
