package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/homeroomhq/homeroom-api/internal/config"
	"github.com/homeroomhq/homeroom-api/internal/domain/srs"
	"github.com/homeroomhq/homeroom-api/internal/generation"
	"github.com/homeroomhq/homeroom-api/internal/platform/gemini"
	"github.com/homeroomhq/homeroom-api/internal/platform/postgres"
	"github.com/homeroomhq/homeroom-api/internal/service"
	"github.com/homeroomhq/homeroom-api/internal/service/auth"
	"github.com/homeroomhq/homeroom-api/internal/service/review"
	"github.com/homeroomhq/homeroom-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	userStore  store.UserStore
	childStore store.ChildStore
	cardStore  store.CardStore
	stateStore store.ReviewStateStore
	slotStore  store.ReviewSlotStore

	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	cardService    service.CardService
	reviewService  review.Service
}

// newApplication constructs the stores and services from configuration.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	logger *slog.Logger,
) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, logger)
	childStore := postgres.NewPostgresChildStore(db, logger)
	cardStore := postgres.NewPostgresCardStore(db, logger)
	stateStore := postgres.NewPostgresReviewStateStore(db, logger)
	slotStore := postgres.NewPostgresReviewSlotStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	// Draft generation is optional; without an API key the endpoints report
	// the feature unavailable.
	var generator generation.Generator
	if cfg.Generation.GeminiAPIKey != "" {
		geminiGenerator, err := gemini.NewGenerator(ctx, logger, cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to create draft generator: %w", err)
		}
		generator = geminiGenerator
	} else {
		logger.Info("draft generation disabled, no API key configured")
	}

	cardService, err := service.NewCardService(db, cardStore, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	srsService := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:               cfg.Review.MinEaseFactor,
		MaxEaseFactor:               cfg.Review.MaxEaseFactor,
		InitialEaseFactor:           cfg.Review.InitialEaseFactor,
		HardIntervalMultiplier:      cfg.Review.HardIntervalMultiplier,
		EasyBonusMultiplier:         cfg.Review.EasyBonusMultiplier,
		LapseGoodMultiplier:         cfg.Review.LapseGoodMultiplier,
		FirstReviewHardIntervalDays: cfg.Review.FirstReviewHardIntervalDays,
		FirstReviewGoodIntervalDays: cfg.Review.FirstReviewGoodIntervalDays,
		FirstReviewEasyIntervalDays: cfg.Review.FirstReviewEasyIntervalDays,
		AgainReviewMinutes:          cfg.Review.AgainReviewMinutes,
	}))

	reviewService := review.NewService(
		db,
		cardStore,
		stateStore,
		slotStore,
		srsService,
		review.Config{
			MicroSessionCards:    cfg.Review.MicroSessionCards,
			StandardSessionCards: cfg.Review.StandardSessionCards,
		},
		logger,
	)

	return &application{
		config:         cfg,
		logger:         logger,
		userStore:      userStore,
		childStore:     childStore,
		cardStore:      cardStore,
		stateStore:     stateStore,
		slotStore:      slotStore,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		cardService:    cardService,
		reviewService:  reviewService,
	}, nil
}
