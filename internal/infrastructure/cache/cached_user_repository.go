package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

func userKey(id string) string {
	return "user:" + id
}

// CachedUserRepository is a read-through cache in front of another repository.
// Only FindByID is served from Redis; writes go to the inner store first and
// then drop the cached entry. Redis errors are logged and never returned.
type CachedUserRepository struct {
	inner  repository.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedUserRepository(inner repository.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var snap entity.Snapshot
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, userKey(id), &snap)
	if err != nil {
		r.warn(err, id, "cache read failed")
	}
	if hit {
		if u, err := entity.Reconstitute(snap); err == nil {
			return u, nil
		}
		r.evict(ctx, id)
	}

	u, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, userKey(id), u.Snapshot(), r.ttl); err != nil {
		r.warn(err, id, "cache write failed")
	}
	return u, nil
}

// FindByIDFromSource reads the inner store and leaves the cache untouched.
// A FindByID racing a Save can still put an old snapshot back until the TTL
// expires, so writers must not start from cached reads.
func (r *CachedUserRepository) FindByIDFromSource(ctx context.Context, id string) (*entity.User, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *CachedUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.inner.FindByEmail(ctx, email)
}

func (r *CachedUserRepository) FindAll(ctx context.Context, f repository.ListFilter) ([]*entity.User, error) {
	return r.inner.FindAll(ctx, f)
}

func (r *CachedUserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := r.inner.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, saved.ID())
	return saved, nil
}

func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedUserRepository) Count(ctx context.Context, f repository.CountFilter) (int, error) {
	return r.inner.Count(ctx, f)
}

func (r *CachedUserRepository) evict(ctx context.Context, id string) {
	if err := helpers.RedisDel(ctx, r.rdb, userKey(id)); err != nil {
		r.warn(err, id, "cache evict failed")
	}
}

func (r *CachedUserRepository) warn(err error, id, msg string) {
	if r.logger != nil {
		r.logger.WithError(err).WithField("user_id", id).Warn(msg)
	}
}

var (
	_ repository.UserRepository = (*CachedUserRepository)(nil)
	_ repository.SourceReader   = (*CachedUserRepository)(nil)
)
