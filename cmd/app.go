package cmd

import (
	"fmt"
	"log/slog"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/config"
	"github.com/matheuskafuri/apod/internal/logging"
	"github.com/matheuskafuri/apod/internal/nasa"
	"github.com/matheuskafuri/apod/internal/repository"
)

// env is everything a command needs to reach the cache and the API.
type env struct {
	cfg  *config.Config
	log  *slog.Logger
	db   *cache.Cache
	repo *repository.Repository

	closeLog func() error
}

func setup() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.Init(config.LogPath(), cfg.LogLevel)
	if err != nil {
		// The log file is optional
		logger, closeLog = logging.Discard(), func() error { return nil }
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	client := nasa.NewClient(nasa.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeoutDuration(),
		Logger:  logger,
	})

	if cfg.UsingDemoKey() {
		logger.Info("using DEMO_KEY; set APOD_API_KEY for higher rate limits")
	}

	return &env{
		cfg:      cfg,
		log:      logger,
		db:       db,
		repo:     repository.New(client, db, logger),
		closeLog: closeLog,
	}, nil
}

func (e *env) Close() {
	e.db.Close()
	e.closeLog()
}
