package main

import (
	"fmt"
	"log/slog"

	"marquee/internal/catalog"
	"marquee/internal/chat"
	"marquee/internal/config"
	"marquee/internal/llm"
	"marquee/internal/notifications"
	"marquee/internal/rating"
	"marquee/internal/recommend"
	"marquee/internal/store"
	"marquee/internal/warmup"
)

// app holds the wired pipeline shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	recommend *recommend.Service
	chat      *chat.Orchestrator
	warmup    *warmup.Runner
	notifier  notifications.Service
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL,
		catalog.WithRateLimit(cfg.TMDB.RequestsPerSecond),
		catalog.WithPosterBase(cfg.TMDB.ImageBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	// Without an OMDb key titles are cached unrated.
	var ratings rating.Source
	if cfg.OMDb.APIKey != "" {
		omdb, err := rating.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("omdb client: %w", err)
		}
		ratings = rating.NewBreakerClient(omdb, rating.BreakerSettings{}, logger)
	} else {
		logger.Warn("omdb api key not set; titles will be cached without IMDb ratings")
	}

	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	svc := recommend.NewService(st, cat, ratings, completer, recommend.SettingsFromConfig(cfg), logger)
	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		recommend: svc,
		chat:      chat.New(st, svc, completer, cfg.Pipeline.ContextWindow, logger),
		warmup:    warmup.NewRunner(svc, cfg.WarmupLockPath(), logger),
		notifier:  notifications.NewService(cfg),
	}, nil
}

func (a *app) Close() {
	if a == nil || a.store == nil {
		return
	}
	_ = a.store.Close()
}
