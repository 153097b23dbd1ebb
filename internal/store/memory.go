package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory es una implementación in-process de Store, para desarrollo sin
// postgres y para tests. Mismas semánticas: upsert last-write-wins,
// historial de tokens append-only.
type Memory struct {
	mu     sync.Mutex
	users  map[string]*User // key: provider + "\x00" + providerUserID
	tokens map[uuid.UUID][]TokenRecord
}

// NewMemory crea un store en memoria vacío.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]*User),
		tokens: make(map[uuid.UUID][]TokenRecord),
	}
}

func identityKey(provider, providerUserID string) string {
	return provider + "\x00" + providerUserID
}

func (m *Memory) FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[identityKey(provider, providerUserID)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) SaveLogin(ctx context.Context, u User, t TokenRecord) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	key := identityKey(u.Provider, u.ProviderUserID)
	existing, ok := m.users[key]
	if !ok {
		u.ID = uuid.New()
		u.CreatedAt = now
		u.LastLoginAt = now
		cp := u
		m.users[key] = &cp
		existing = &cp
	} else {
		existing.Username = u.Username
		existing.DisplayName = u.DisplayName
		existing.AvatarURL = u.AvatarURL
		existing.Email = u.Email
		existing.LastLoginAt = now
	}

	t.ID = uuid.New()
	t.UserID = existing.ID
	t.CreatedAt = now
	m.tokens[existing.ID] = append(m.tokens[existing.ID], t)

	cp := *existing
	return &cp, nil
}

func (m *Memory) LatestToken(ctx context.Context, userID uuid.UUID) (*TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tokens[userID]
	if len(rows) == 0 {
		return nil, ErrTokenNotFound
	}
	// Con timestamps empatados gana la fila insertada después.
	best := 0
	for i := 1; i < len(rows); i++ {
		if !rows[i].CreatedAt.Before(rows[best].CreatedAt) {
			best = i
		}
	}
	cp := rows[best]
	return &cp, nil
}

func (m *Memory) InsertToken(ctx context.Context, t TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.tokens[t.UserID] = append(m.tokens[t.UserID], t)
	return nil
}

// UserCount retorna la cantidad de filas de usuario. Solo para tests.
func (m *Memory) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// TokenCount retorna la cantidad de filas de tokens de un usuario. Solo para tests.
func (m *Memory) TokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens[userID])
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}

var _ Store = (*Memory)(nil)
