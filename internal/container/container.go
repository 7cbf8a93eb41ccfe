package container

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-ddd-user-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

// Infra holds the external clients. Any of them may be nil.
type Infra struct {
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	Rabbit *helpers.RabbitPublisher
	ES     *elasticsearch.Client
}

// Container is built once at startup and handed to the router and commands.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Infra

	Users       repository.UserRepository
	UserService *application.Service
}

// Open connects the infrastructure selected by cfg and wires the use cases.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	var infra Infra
	fail := func(err error) (*Container, error) {
		infra.close()
		return nil, err
	}

	if cfg.StorageDriver == config.StoragePostgres {
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		infra.PGPool = pool
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
	}

	// Redis is used lazily; the cache and rate limiter tolerate it being down.
	infra.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return fail(fmt.Errorf("connect rabbitmq: %w", err))
		}
		infra.Rabbit = pub
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return fail(fmt.Errorf("init elasticsearch: %w", err))
		}
		infra.ES = es
	}

	c, err := New(cfg, logger, infra)
	if err != nil {
		return fail(err)
	}
	return c, nil
}

// New wires repositories and services on top of already opened infrastructure.
func New(cfg *config.Config, logger *logrus.Logger, infra Infra) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Infra: infra}

	switch cfg.StorageDriver {
	case config.StorageMemory:
		c.Users = memory.NewUserRepository()
	case config.StoragePostgres:
		if infra.PGPool == nil {
			return nil, fmt.Errorf("storage driver %q needs a postgres pool", cfg.StorageDriver)
		}
		c.Users = pginfra.NewUserRepository(infra.PGPool)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.CacheEnabled && infra.Redis != nil {
		c.Users = cache.NewCachedUserRepository(c.Users, infra.Redis, cfg.CacheTTL, logger)
	}

	// Interfaces stay nil unless the backing client exists.
	var (
		publisher application.EventPublisher
		index     application.SearchIndex
	)
	if infra.Rabbit != nil {
		publisher = messaging.NewUserEventPublisher(infra.Rabbit)
	}
	if infra.ES != nil {
		index = search.NewUserIndex(infra.ES, cfg.ESUsersIndex)
	}

	c.UserService = application.NewService(c.Users, publisher, index, logger)
	return c, nil
}

// Close releases clients in reverse order of dependency.
func (c *Container) Close() {
	c.Infra.close()
}

func (i *Infra) close() {
	if i.Rabbit != nil {
		i.Rabbit.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.PGPool != nil {
		i.PGPool.Close()
	}
}
