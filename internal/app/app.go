// Package app wires configuration into adapters and use cases. Both binaries
// build their dependencies through it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	rediscache "github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/cache/redis"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/events"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/handler"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/payment/omise"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/repository/memory"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/repository/postgres"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/retry"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/platform/config"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/platform/database"
)

type publisher interface {
	ports.EventPublisher
	Close() error
}

// App holds the process-wide dependencies. Close releases them in reverse
// order of acquisition.
type App struct {
	Config   config.App
	Log      *slog.Logger
	Services handler.Services

	db     *sql.DB
	redis  *goredis.Client
	events publisher
}

func New(ctx context.Context, cfg config.App, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var (
		cache  ports.SlotCache
		locker ports.Locker
	)
	if cfg.RedisEnabled {
		a.redis = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr(), DB: 0})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr(), err)
		}
		log.Info("redis connected", "addr", cfg.RedisAddr())
		cache = rediscache.NewSlotCache(a.redis, cfg.SlotCacheTTL)
		locker = rediscache.NewLocker(a.redis)
	}

	if a.events, err = a.openPublisher(); err != nil {
		a.Close()
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(log),
		services.WithEventPublisher(a.events),
		services.WithRetry(retry.Options{
			MaxRetries: cfg.RetryMaxAttempts,
			BaseDelay:  cfg.RetryBaseDelay,
			Logger:     log,
		}),
	}
	if cache != nil {
		opts = append(opts, services.WithSlotCache(cache))
	}

	var payments ports.PaymentStatusProvider
	if cfg.OmiseSecretKey != "" {
		provider, err := omise.NewProvider(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		payments = provider
	} else {
		log.Warn("OMISE_SECRET_KEY not set, payment processing is disabled")
		payments = unconfiguredPayments{}
	}

	a.Services = handler.Services{
		Bookings:       services.NewBookingService(repo, opts...),
		Orders:         services.NewOrderService(repo, opts...),
		Payments:       services.NewPaymentService(repo, payments, opts...),
		Catalog:        services.NewCatalogService(repo, cfg.DefaultCurrency, opts...),
		Reconciliation: services.NewReconciliationService(repo, locker, cfg.CleanupLockTTL, opts...),
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) (ports.Repository, error) {
	if a.Config.Store == "memory" {
		a.Log.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		URL:             a.Config.DatabaseURL(),
		MaxOpenConns:    a.Config.DBMaxOpenConns,
		MaxIdleConns:    a.Config.DBMaxIdleConns,
		ConnMaxLifetime: a.Config.DBConnMaxLifetime,
	}, a.Log)
	if err != nil {
		return nil, err
	}
	a.db = db

	if a.Config.DBAutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		a.Log.Info("database schema applied")
	}
	return postgres.NewStore(db), nil
}

func (a *App) openPublisher() (publisher, error) {
	switch a.Config.EventSink {
	case "rabbitmq":
		p, err := events.NewRabbitPublisher(a.Config.RabbitURL, a.Config.RabbitExchange)
		if err != nil {
			return nil, err
		}
		a.Log.Info("publishing events to rabbitmq", "exchange", a.Config.RabbitExchange)
		return p, nil
	case "kafka":
		a.Log.Info("publishing events to kafka", "brokers", a.Config.KafkaBrokers, "topic", a.Config.KafkaTopic)
		return events.NewKafkaPublisher(a.Config.KafkaBrokers, a.Config.KafkaTopic), nil
	default:
		return events.NewLogPublisher(a.Log), nil
	}
}

func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

var errPaymentsDisabled = errors.New("payment provider is not configured")

type unconfiguredPayments struct{}

func (unconfiguredPayments) GetPaymentStatus(context.Context, string) (ports.PaymentStatus, error) {
	return "", errPaymentsDisabled
}
