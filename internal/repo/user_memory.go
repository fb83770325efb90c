package repo

import (
	"sync"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: map[string]models.User{}, nextID: 1}
}

func (r *InMemoryUserRepository) GetByUsername(username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepository) CreateUser(username, passwordHash, role string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return models.User{}, ErrDuplicatedValueUnique
	}
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[username] = u
	r.nextID++
	return u, nil
}

func (r *InMemoryUserRepository) Clear() {
	r.mu.Lock()
	r.users = map[string]models.User{}
	r.nextID = 1
	r.mu.Unlock()
}
