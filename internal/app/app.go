// Package app wires the service together: store backend, platform adapters,
// token manager, sweep scheduler, and the HTTP surface.
package app

import (
	"context"
	"net/http"
	"strconv"

	"token-vault/internal/auth"
	"token-vault/internal/common/logging"
	"token-vault/internal/config"
	"token-vault/internal/handlers"
	"token-vault/internal/locks"
	"token-vault/internal/manager"
	"token-vault/internal/redis"
	"token-vault/internal/scheduler"
	"token-vault/internal/store"

	// Register the store backends.
	_ "token-vault/internal/store/memory"
	_ "token-vault/internal/store/postgres"
	_ "token-vault/internal/store/sqlite"
)

type App struct {
	Config  *config.Config
	Store   store.Store
	Redis   *redis.Client
	Locks   *locks.Manager
	Manager *manager.Manager
	Sweeper *scheduler.Sweeper
	Auth    *auth.Auth
}

// New builds every component from configuration. Redis and the sweep are
// optional; everything else is required.
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	st, err := store.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	app.Store = st

	if cfg.RedisEnabled() {
		db, _ := strconv.Atoi(cfg.RedisDB)
		poolSize, _ := strconv.Atoi(cfg.RedisPoolSize)

		client, err := redis.NewClient(&redis.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       db,
			PoolSize: poolSize,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		app.Redis = client
		app.Locks = locks.NewManager(client)
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	app.Manager = manager.New(st, adapters, cfg.RefreshHorizonDuration())
	app.Auth = auth.New(cfg.JWTSecret)

	if cfg.SweepEnabled {
		var locker scheduler.SweepLocker
		if app.Locks != nil {
			locker = app.Locks
		}
		app.Sweeper = scheduler.NewSweeper(app.Manager, locker, cfg.SweepSchedule)
	}

	return app, nil
}

// Router builds the HTTP routing tree.
func (a *App) Router() http.Handler {
	var redisHealth handlers.HealthChecker
	if a.Redis != nil {
		redisHealth = a.Redis
	}
	h := handlers.New(a.Manager, a.Store, redisHealth)
	return handlers.NewRouter(h, a.Auth)
}

// Start launches the background sweep when enabled.
func (a *App) Start() error {
	if a.Sweeper != nil {
		return a.Sweeper.Start()
	}
	return nil
}

// Shutdown stops the sweep and waits for an in-progress run.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	return nil
}

// Cleanup closes every held connection. Safe on a partially built App.
func (a *App) Cleanup() {
	if a.Locks != nil {
		a.Locks.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logging.Warn("Failed to close Redis client", logging.Err(err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			logging.Warn("Failed to close credential store", logging.Err(err))
		}
	}
}
