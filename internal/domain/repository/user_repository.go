package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups and Delete when no user has the given key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Save when the store rejects a second user with the same email.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// ListFilter selects a page of users. A nil Status matches every status.
type ListFilter struct {
	Limit  int
	Offset int
	Status *entity.Status
}

type CountFilter struct {
	Status *entity.Status
}

// UserRepository defines the persistence contract for the user aggregate.
// FindAll returns newest-created first; ties are broken by id descending.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, f ListFilter) ([]*entity.User, error)
	// Save inserts the user or replaces the stored one with the same id.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f CountFilter) (int, error)
}

// SourceReader is implemented by caching decorators. FindByIDFromSource skips
// the cache, so a read-modify-write starts from the stored row.
type SourceReader interface {
	FindByIDFromSource(ctx context.Context, id string) (*entity.User, error)
}
