package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	fileRepo "github.com/iho/gofinance/internal/adapter/repository/file"
	postgresRepo "github.com/iho/gofinance/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gofinance/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/gofinance/internal/adapter/repository/sqlite"
	"github.com/iho/gofinance/internal/infrastructure/config"
	"github.com/iho/gofinance/internal/infrastructure/metrics"
	"github.com/iho/gofinance/internal/infrastructure/postgres"
	"github.com/iho/gofinance/internal/infrastructure/redis"
	"github.com/iho/gofinance/internal/infrastructure/sqlite"
	"github.com/iho/gofinance/internal/usecase"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    usecase.SnapshotStore
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	store, err := a.buildStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.DatabaseTimeout)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		logger.Info().Msg("connected to redis")

		store = redisRepo.NewCachedStore(store, client, cfg.CacheTTL, a.metrics, logger)
	}

	a.store = store
	return a, nil
}

func (a *app) buildStore(ctx context.Context) (usecase.SnapshotStore, error) {
	switch a.cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })

		if err := sqlite.RunMigrations(a.cfg.SQLitePath, sqliteRepo.Migrations, a.logger); err != nil {
			return nil, err
		}
		a.logger.Info().Str("path", a.cfg.SQLitePath).Msg("opened sqlite database")

		return sqliteRepo.NewStore(db, a.logger), nil

	case config.DriverPostgres:
		if err := postgres.RunMigrations(a.cfg.DatabaseURL, postgresRepo.Migrations, a.logger); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    a.cfg.DatabaseURL,
			MaxConns:       a.cfg.DatabaseMaxConns,
			MinConns:       a.cfg.DatabaseMinConns,
			ConnectTimeout: a.cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.logger.Info().Msg("connected to postgres")

		return postgresRepo.NewStore(pool, a.logger), nil

	default:
		store, err := fileRepo.NewStore(a.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Str("dir", store.Dir()).Msg("using file storage")

		return store, nil
	}
}

func (a *app) newSession() *usecase.Session {
	return usecase.NewSession(usecase.SessionConfig{
		Store:   a.store,
		Metrics: a.metrics,
		Logger:  &a.logger,
	})
}

// close releases connections in reverse order and dumps metrics if configured.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		a.logger.Error().Err(err).Msg("failed to write metrics")
	}
}
