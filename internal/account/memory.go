package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository with the same semantics as
// the postgres one, including the canonical-key uniqueness rule. Used by
// tests and local development.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*Account // id -> account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*Account)}
}

func (m *MemoryRepository) FindByCanonicalKey(_ context.Context, key string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.CanonicalKey == key && a.DeletedAt == nil {
			return copyOf(a), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return copyOf(a), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindByRefreshToken(_ context.Context, tok string) (*Account, error) {
	if tok == "" {
		return nil, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.CurrentRefreshToken == tok && a.DeletedAt == nil {
			return copyOf(a), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) Create(_ context.Context, a *Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.CanonicalKey == a.CanonicalKey {
			return nil, ErrDuplicateIdentity
		}
	}
	created := *a
	created.ID = uuid.NewString()
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.accounts[created.ID] = &created
	return copyOf(&created), nil
}

func (m *MemoryRepository) UpdateProfile(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[a.ID]
	if !ok || stored.DeletedAt != nil {
		return nil
	}
	stored.Email = a.Email
	stored.DisplayName = a.DisplayName
	stored.AvatarURL = a.AvatarURL
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) SetRefreshToken(_ context.Context, id string, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.accounts[id]; ok && stored.DeletedAt == nil {
		stored.CurrentRefreshToken = tok
		stored.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MemoryRepository) RotateRefreshToken(_ context.Context, id string, old, new string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[id]
	if !ok || stored.DeletedAt != nil || stored.CurrentRefreshToken != old {
		return ErrNotFound
	}
	stored.CurrentRefreshToken = new
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) ClearRefreshToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.accounts[id]; ok {
		stored.CurrentRefreshToken = ""
		stored.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MemoryRepository) Withdraw(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.accounts[id]; ok && stored.DeletedAt == nil {
		now := time.Now()
		stored.DeletedAt = &now
		stored.CurrentRefreshToken = ""
		stored.UpdatedAt = now
	}
	return nil
}

func copyOf(a *Account) *Account {
	c := *a
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
