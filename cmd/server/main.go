package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdesk/incident-report/internal/api"
	"github.com/opsdesk/incident-report/internal/infrastructure/db/mongo"
	"github.com/opsdesk/incident-report/internal/infrastructure/db/redis"
	"github.com/opsdesk/incident-report/internal/infrastructure/hash"
	"github.com/opsdesk/incident-report/internal/pkg/config"
	"github.com/opsdesk/incident-report/internal/pkg/seed"
	"github.com/opsdesk/incident-report/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	principalRepo := mongo.NewPrincipalRepository(db)
	tokenRepo := mongo.NewRefreshTokenRepository(db)
	incidentRepo := mongo.NewIncidentRepository(db)
	for _, idx := range []interface {
		EnsureIndexes(context.Context) error
	}{principalRepo, tokenRepo, incidentRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	if err := seed.AdminPrincipal(ctx, cfg.Seed, principalRepo, hash.NewBcryptHasher(cfg.BcryptCost), log); err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}

	e := api.NewRouter(cfg, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
