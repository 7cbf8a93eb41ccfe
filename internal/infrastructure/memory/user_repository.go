package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
)

// UserRepository keeps users in a map for the lifetime of the process.
// Users are immutable, so stored pointers are shared with callers.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	needle := entity.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email().String() == needle {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindAll(_ context.Context, f repository.ListFilter) ([]*entity.User, error) {
	r.mu.RLock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if f.Status != nil && u.Status() != *f.Status {
			continue
		}
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() > b.ID()
	})

	if f.Offset >= len(out) {
		return []*entity.User{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// Save upserts by id. A different user already holding the email is rejected,
// mirroring the unique index of the relational store.
func (r *UserRepository) Save(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, other := range r.users {
		if id != u.ID() && other.Email().Equals(u.Email()) {
			return nil, repository.ErrDuplicateEmail
		}
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) Count(_ context.Context, f repository.CountFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f.Status == nil {
		return len(r.users), nil
	}
	n := 0
	for _, u := range r.users {
		if u.Status() == *f.Status {
			n++
		}
	}
	return n, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
