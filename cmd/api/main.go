// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/infrastructure/cache"
	"github.com/eticaret/storefront/internal/infrastructure/database/postgres"
	"github.com/eticaret/storefront/internal/infrastructure/database/redis"
	"github.com/eticaret/storefront/internal/interfaces/http"
	"github.com/eticaret/storefront/internal/interfaces/http/routes"
	"github.com/eticaret/storefront/internal/pkg/events"
	"github.com/eticaret/storefront/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(startupCtx); err != nil {
		log.WithError(err).Fatal("database health check failed")
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(startupCtx); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}
	if _, failed := migration.CreateIndexes(startupCtx); failed > 0 {
		log.WithField("failed", failed).Warn("some indexes could not be created")
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(startupCtx, cfg.App.SeedAdminEmail, cfg.App.SeedAdminPassword); err != nil {
			log.WithError(err).Warn("data seeding failed")
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(startupCtx, cfg, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	store, closeStore := newCache(cfg, log, redisClient)
	defer closeStore()

	hub := events.NewHub(cfg.Security.WSAllowedOrigins, log)
	defer hub.Close()

	deps := routes.NewDependencies(cfg, log, db.GetDB(), store, hub)
	defer deps.Close()

	server := http.NewServer(cfg, log, db.GetDB(), redisClient.GetClient(), deps)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("HTTP server did not shut down cleanly")
	}

	log.Info("shutdown complete")
}

// newCache picks the catalog cache backend. Redis is used only when it is
// both selected and connected.
func newCache(cfg *config.Config, log *logrus.Logger, client *redis.Client) (cache.Cache, func()) {
	if cfg.Cache.Backend == "redis" {
		if client != nil {
			log.Info("using redis cache")
			return cache.NewRedisCache(client.GetClient(), cfg.Cache.KeyPrefix), func() {}
		}
		log.Warn("redis cache selected but redis is disabled, falling back to memory")
	}

	mem := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	return mem, mem.Close
}
