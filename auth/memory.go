package auth

import (
	"context"
	"sync"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps accounts in process memory. It backs the server when no MongoDB
// URL is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts []models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) find(match func(models.Account) bool) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if match(acc) {
			found := acc
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return m.find(func(a models.Account) bool { return a.Email == email })
}

func (m *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	return m.find(func(a models.Account) bool { return a.Username == username })
}

func (m *MemoryRepository) Create(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == acc.Email {
			return ErrDuplicateEmail
		}
		if existing.Username == acc.Username {
			return ErrDuplicateUsername
		}
	}
	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now
	m.accounts = append(m.accounts, *acc)
	return nil
}

func (m *MemoryRepository) UpdateUsername(_ context.Context, email, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, acc := range m.accounts {
		if acc.Email == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUserNotFound
	}
	for i, acc := range m.accounts {
		if i != idx && acc.Username == username {
			return nil, ErrDuplicateUsername
		}
	}
	m.accounts[idx].Username = username
	m.accounts[idx].UpdatedAt = time.Now().UTC()
	updated := m.accounts[idx]
	return &updated, nil
}
