// Package container wires the service together with samber/do.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/events"
	eventstore "github.com/serroba/shortify/internal/events/store"
	"github.com/serroba/shortify/internal/handlers"
	"github.com/serroba/shortify/internal/health"
	"github.com/serroba/shortify/internal/messaging"
	"github.com/serroba/shortify/internal/middleware"
	"github.com/serroba/shortify/internal/shortener"
	"github.com/serroba/shortify/internal/store"
	"github.com/serroba/shortify/internal/token"
	"go.uber.org/zap"
)

const (
	ServiceName    = "URL Shortener"
	ServiceVersion = "1.0.0"

	connectTimeout = 10 * time.Second
	requestIDSize  = 21
)

// Redis wraps the shared client so the injector can close it.
type Redis struct {
	*redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres wraps the shared pool so the injector can close it.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		level, err := zap.ParseAtomicLevel(opts.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}

		cfg := zap.NewDevelopmentConfig()
		if opts.LogFormat == "json" {
			cfg = zap.NewProductionConfig()
		}

		cfg.Level = level

		return cfg.Build()
	})
}

// RedisPackage provides *Redis.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect redis at %s: %w", opts.RedisAddr, err)
		}

		return &Redis{Client: client}, nil
	})
}

// PostgresPackage provides *Postgres and applies migrations when enabled.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if opts.Migrate {
			if err := store.Migrate(ctx, pool, logger); err != nil {
				pool.Close()

				return nil, err
			}
		}

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the link, account and audit event stores for the configured backend.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		if do.MustInvoke[*Options](i).Storage == StorageMemory {
			return do.MustInvoke[*store.MemoryStore](i).LinkStore(), nil
		}

		return store.NewPostgresLinkStore(do.MustInvoke[*Postgres](i).Pool), nil
	})

	do.Provide(i, func(i *do.Injector) (account.Repository, error) {
		if do.MustInvoke[*Options](i).Storage == StorageMemory {
			return do.MustInvoke[*store.MemoryStore](i).AccountStore(), nil
		}

		return store.NewPostgresAccountStore(do.MustInvoke[*Postgres](i).Pool), nil
	})

	do.Provide(i, func(i *do.Injector) (events.Store, error) {
		if do.MustInvoke[*Options](i).Storage == StorageMemory {
			return eventstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
		}

		return eventstore.NewPostgres(do.MustInvoke[*Postgres](i).Pool), nil
	})
}

// CachePackage provides the read-through link cache.
func CachePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Cache, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.Cache == BackendMemory {
			return store.NewMemoryLinkCache(), nil
		}

		return store.NewRedisLinkCache(do.MustInvoke[*Redis](i).Client, opts.CacheLifetime()), nil
	})
}

// TokenPackage provides *token.Service.
func TokenPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*token.Service, error) {
		opts := do.MustInvoke[*Options](i)

		return token.NewService([]byte(opts.JWTSecret), token.WithTTL(opts.TokenLifetime()))
	})
}

// AccountPackage provides *account.Directory.
func AccountPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*account.Directory, error) {
		opts := do.MustInvoke[*Options](i)

		return account.NewDirectory(
			do.MustInvoke[account.Repository](i),
			account.NewBcryptVerifier(opts.BcryptCost),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// ShortenerPackage provides *shortener.Service.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.Cache](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// EventBusPackage provides the message.Publisher and message.Subscriber for the configured transport.
// The memory transport hands out one GoChannel for both sides.
func EventBusPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
		opts := do.MustInvoke[*Options](i)
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		if opts.EventBus == BackendMemory {
			return messaging.NewMemoryBus(logger), nil
		}

		return messaging.NewRedisPublisher(do.MustInvoke[*Redis](i).Client, logger)
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.EventBus == BackendMemory {
			bus, ok := do.MustInvoke[message.Publisher](i).(message.Subscriber)
			if !ok {
				return nil, errors.New("memory publisher cannot subscribe")
			}

			return bus, nil
		}

		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		return messaging.NewRedisSubscriber(do.MustInvoke[*Redis](i).Client, logger)
	})
}

// PublisherGroupPackage provides *messaging.PublisherGroup.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		return messaging.NewPublisherGroup(do.MustInvoke[message.Publisher](i)), nil
	})
}

// ConsumerGroupPackage provides *messaging.ConsumerGroup with the audit consumers attached.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		if err := group.Add(events.NewConsumers(subscriber, do.MustInvoke[events.Store](i), logger)...); err != nil {
			return nil, err
		}

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		tokens := do.MustInvoke[*token.Service](i)
		directory := do.MustInvoke[*account.Directory](i)
		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		newRequestID, err := nanoid.Standard(requestIDSize)
		if err != nil {
			return nil, fmt.Errorf("request id generator: %w", err)
		}

		api := humachi.New(router, handlers.NewAPIConfig(ServiceName, ServiceVersion))
		api.UseMiddleware(middleware.RequestMeta(newRequestID))
		api.UseMiddleware(middleware.Authenticator(api, tokens, directory, logger))

		links := handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Service](i),
			directory,
			handlers.LinkConfig{
				BaseURL:        opts.ShortURLBase(),
				FallbackURL:    opts.FallbackURL,
				PublicUsername: opts.PublicUsername,
			},
			messaging.NewPublishFunc[events.LinkCreatedEvent](publisher, events.TopicLinkCreated),
			logger,
		)

		accounts := handlers.NewAccountHandler(
			directory,
			tokens,
			messaging.NewPublishFunc[events.AccountRegisteredEvent](publisher, events.TopicAccountRegistered),
			logger,
		)

		handlers.RegisterRoutes(api, links, accounts, handlers.NewDiagHandler(api, ServiceName, ServiceVersion, do.MustInvoke[*shortener.Service](i)))
		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts)))

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := map[string]health.Checker{}

	if opts.UsesPostgres() {
		checkers["postgres"] = do.MustInvoke[*Postgres](i).Pool
	}

	if opts.UsesRedis() {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
	}

	return checkers
}

// Register adds every package to the injector.
func Register(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	RepositoryPackage(i)
	CachePackage(i)
	TokenPackage(i)
	AccountPackage(i)
	ShortenerPackage(i)
	EventBusPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	HTTPPackage(i)
}
