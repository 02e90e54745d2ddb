package memory

import (
	"context"
	"sync"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/pkg/uid"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]domain.User)}
}

// CreateUser stores u and returns the assigned id. Usernames are unique.
func (r *UserRepo) CreateUser(_ context.Context, u domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return "", domain.ErrConflict
		}
	}
	u.ID = uid.New()
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *UserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}
