package main

import (
	"context"
	"fmt"

	"HospitalMS/cache"
	"HospitalMS/config"
	"HospitalMS/database"
	"HospitalMS/logger"
	"HospitalMS/services"
	"HospitalMS/utils"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds the resources every subcommand needs.
type app struct {
	cfg    *config.AppConfig
	log    zerolog.Logger
	db     *gorm.DB
	redis  *redis.Client
	cache  *cache.Cache
	tokens *utils.TokenMaker
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.IsDev())

	db, err := database.InitDB(ctx, cfg.DBURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        cfg.IsDev(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client, err := database.NewRedisClient(ctx, database.DefaultRedisConfig(cfg.RedisAddress), log)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}

	c, err := cache.NewCache(client, log)
	if err != nil {
		_ = client.Close()
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		_ = client.Close()
		_ = database.Close(db)
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, redis: client, cache: c, tokens: tokens}, nil
}

// services wires the service layer; events may be nil.
func (a *app) services(events services.VisitEventPublisher) *services.Services {
	return services.New(services.Dependencies{
		DB:     a.db,
		Cache:  a.cache,
		Log:    a.log,
		Tokens: a.tokens,
		Mailer: utils.NewMailer(utils.SMTPConfig{
			Host:     a.cfg.SMTPHost,
			Port:     a.cfg.SMTPPort,
			User:     a.cfg.SMTPUser,
			Password: a.cfg.SMTPPass,
		}, a.log),
		Events: events,
	})
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close Redis client")
	}
	if err := database.Close(a.db); err != nil {
		a.log.Error().Err(err).Msg("failed to close database")
	}
}
