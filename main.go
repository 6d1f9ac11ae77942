package main

import (
	"context"
	"fmt"

	"github.com/ariebrainware/clinic-booking/booking"
	"github.com/ariebrainware/clinic-booking/classifier"
	"github.com/ariebrainware/clinic-booking/config"
	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/middleware"
	"github.com/ariebrainware/clinic-booking/routes"
	"github.com/ariebrainware/clinic-booking/store"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func newStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver != config.StoreDriverMySQL {
		return store.NewMemoryStore(), nil
	}

	db, err := config.ConnectMySQL()
	if err != nil {
		return nil, err
	}
	gs := store.NewGormStore(db)
	if err := gs.Migrate(); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	util.SetEventLoggerDB(gs.DB())
	return gs, nil
}

func main() {
	// Load the configuration
	cfg := config.LoadConfig()
	util.InitLogger(cfg.AppName, cfg.AppEnv, cfg.LogLevel)

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("error initializing store")
	}

	ctx := context.Background()
	if err := store.SeedDoctors(ctx, st); err != nil {
		log.Fatal().Err(err).Msg("error seeding doctors")
	}
	if err := store.SeedAdmin(ctx, st, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("error seeding admin user")
	}

	if _, err := config.ConnectRedis(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	client := classifier.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if client == nil {
		log.Warn().Msg("OPENAI_API_KEY not set, classifier runs in fallback-only mode")
	}
	cls := classifier.New(client, classifier.Options{
		Model:   cfg.OpenAIModel,
		Timeout: cfg.ClassifierTimeout,
		Metrics: m,
	})

	svc := booking.NewService(st, cls, m)

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, routes.Dependencies{
		AppName:  cfg.AppName,
		Service:  svc,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		RateLimit: middleware.RateLimitConfig{
			Limit:  cfg.RateLimit,
			Window: cfg.RateWindow,
		},
	})

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	log.Info().Str("address", address).Str("store", cfg.StoreDriver).Msg("starting server")
	if err := router.Run(address); err != nil {
		log.Fatal().Err(err).Msg("error starting server")
	}
}
