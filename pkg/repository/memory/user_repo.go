package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/traqcheck/candidateverify/pkg/auth"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]auth.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]auth.User)}
}

func (r *UserRepository) Create(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return auth.ErrUserAlreadyExists
	}
	r.users[key] = user
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.users[strings.ToLower(email)]; ok {
		return user, nil
	}
	return auth.User{}, auth.ErrNotFound
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
