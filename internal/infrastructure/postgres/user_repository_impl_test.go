package postgres

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
)

// testPool connects to TEST_DATABASE_URL, migrates it and empties the users table.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := NewPool(ctx, PoolConfig{DSN: dsn, MaxConns: 4})
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	t.Cleanup(pool.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, Migrate(dsn, "../../../db/migrations", logger))

	_, err = pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)
	return pool
}

func insertUser(t *testing.T, repo *UserRepository, i int, status entity.Status) *entity.User {
	t.Helper()
	at := time.Date(2024, 3, 1, 12, i, 0, 0, time.UTC)
	u, err := entity.Reconstitute(entity.Snapshot{
		ID:        uuid.NewString(),
		Email:     fmt.Sprintf("pg%d@example.com", i),
		Name:      fmt.Sprintf("User %d", i),
		Status:    status,
		CreatedAt: at,
		UpdatedAt: at,
	})
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), u)
	require.NoError(t, err)
	return u
}

func TestUserRepository_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool(t))

	u, err := entity.NewUser("Ada@Example.com", "Ada")
	require.NoError(t, err)
	saved, err := repo.Save(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.Snapshot(), saved.Snapshot())

	got, err := repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, u.Snapshot(), got.Snapshot())

	got, err = repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())

	active, err := got.Activate()
	require.NoError(t, err)
	_, err = repo.Save(ctx, active)
	require.NoError(t, err)
	got, err = repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, got.Status())
	assert.Equal(t, u.CreatedAt(), got.CreatedAt())

	require.NoError(t, repo.Delete(ctx, u.ID()))
	_, err = repo.FindByID(ctx, u.ID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, u.ID()), repository.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool(t))

	a, err := entity.NewUser("dup@example.com", "A")
	require.NoError(t, err)
	_, err = repo.Save(ctx, a)
	require.NoError(t, err)

	b, err := entity.NewUser("dup@example.com", "B")
	require.NoError(t, err)
	_, err = repo.Save(ctx, b)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool(t))

	var ids []string
	for i := 0; i < 5; i++ {
		status := entity.StatusPending
		if i%2 == 0 {
			status = entity.StatusActive
		}
		ids = append(ids, insertUser(t, repo, i, status).ID())
	}

	page, err := repo.FindAll(ctx, repository.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID())
	assert.Equal(t, ids[2], page[1].ID())

	active := entity.StatusActive
	filtered, err := repo.FindAll(ctx, repository.ListFilter{Limit: 10, Status: &active})
	require.NoError(t, err)
	assert.Len(t, filtered, 3)

	n, err := repo.Count(ctx, repository.CountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	n, err = repo.Count(ctx, repository.CountFilter{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
