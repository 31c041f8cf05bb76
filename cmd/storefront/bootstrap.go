package main

import (
	"context"
	"fmt"

	"github.com/cupcakery/storefront/app/routes"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/app"
	"github.com/cupcakery/storefront/pkg/cache"
	"github.com/cupcakery/storefront/pkg/database"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/middleware"
	"github.com/cupcakery/storefront/pkg/queue"
	"github.com/cupcakery/storefront/pkg/router"
	"github.com/cupcakery/storefront/pkg/session"
	"github.com/cupcakery/storefront/pkg/storage"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// bootRuntime connects the database, Redis (optional), storage and the queue,
// and registers the order listeners. Services are returned for the kernel.
func bootRuntime(ctx context.Context) (*services.Registry, error) {
	if err := bootDB(); err != nil {
		return nil, err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, using in-memory store", "error", err)
	}
	storage.Connect(ctx)

	queue.UseDB(database.DB)
	if config.QueueDriver() == "redis" {
		if cache.RDB == nil {
			return nil, fmt.Errorf("queue: QUEUE_DRIVER=redis but redis is unavailable")
		}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	services.RegisterListeners(database.DB)
	return services.NewRegistry(database.DB, nil, nil), nil
}

func sessionStore() session.Store {
	switch config.SessionDriver() {
	case "memory":
		return session.NewMemoryStore()
	case "redis":
		if cache.RDB != nil {
			return session.NewRedisStore(cache.RDB)
		}
		logger.Warn("session: SESSION_DRIVER=redis but redis is unavailable, using memory")
		return session.NewMemoryStore()
	}
	if cache.RDB != nil {
		return session.NewRedisStore(cache.RDB)
	}
	return session.NewMemoryStore()
}

// newApplication wires the kernel around reg.
func newApplication(reg *services.Registry) *app.Application {
	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.AppEnv() == "production"

	return app.New().
		Sessions(sessionStore(), opts).
		Use(middleware.Authenticate(reg.Accounts.Identity)).
		Routes(func(r *router.Router) {
			routes.RegisterWeb(r, reg)
			routes.RegisterOps(r, reg)
		}).
		Probe(database.Ping)
}
