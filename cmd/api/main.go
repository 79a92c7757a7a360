package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"courtside/internal/api"
	"courtside/internal/config"
	"courtside/internal/database"
	"courtside/internal/domain"
	"courtside/internal/events"
	"courtside/internal/logging"
	"courtside/internal/metrics"
	"courtside/internal/repository"
	"courtside/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := buildRateLimitStore(redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribeReservationEvents(eventBus, &logger)

	booking := service.NewBookingService(db, eventBus, limiter,
		cfg.Booking.CancellationWindowHours, cfg.Booking.AttemptLimit, cfg.Booking.AttemptWindowSeconds, &logger)
	catalog := service.NewCatalogService(db, &logger)

	httpServer := api.NewHTTPServer(cfg.API, booking, catalog, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	startBackups(ctx, cfg, &logger)

	return serve(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	resources, rules, err := config.LoadCatalogFile(cfg.Catalog.Path)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", cfg.Catalog.Path).Msg("load catalog")
		return nil, err
	}
	if err := db.SeedCatalog(context.Background(), resources.Courts, resources.Equipment, resources.Coaches, rules); err != nil {
		logger.Error().Err(err).Msg("seed catalog")
		return nil, err
	}

	logger.Info().
		Int("courts", len(resources.Courts)).
		Int("equipment", len(resources.Equipment)).
		Int("coaches", len(resources.Coaches)).
		Int("rules", len(rules)).
		Msg("catalog seeded")
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildRateLimitStore prefers Redis with an in-memory failover; without
// Redis the attempt counters live in process memory only.
func buildRateLimitStore(redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimitStore {
	memory := repository.NewMemoryRateLimitStore()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverRateLimitStore(repository.NewRedisRateLimitStore(redisClient), memory, logger)
}

// subscribeReservationEvents drives the reservation lifecycle counters and
// an audit log line from the event bus, so metrics follow committed state
// changes rather than call sites.
func subscribeReservationEvents(bus *events.EventBus, logger *zerolog.Logger) {
	if bus == nil {
		return
	}

	decode := func(ev *events.Event) (events.ReservationEventPayload, error) {
		var payload events.ReservationEventPayload
		err := json.Unmarshal(ev.Payload, &payload)
		return payload, err
	}

	bus.Subscribe(events.EventReservationCreated, func(ev *events.Event) error {
		metrics.IncReservationCreated()
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("reference", payload.Reference).
			Int64("court_id", payload.CourtID).
			Str("date", payload.Date).
			Msg("event: reservation created")
		return nil
	})

	bus.Subscribe(events.EventReservationCancelled, func(ev *events.Event) error {
		metrics.IncReservationCancelled()
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("reference", payload.Reference).
			Int64("court_id", payload.CourtID).
			Str("date", payload.Date).
			Msg("event: reservation cancelled")
		return nil
	})

	bus.Subscribe(events.EventWaitlistPromoted, func(ev *events.Event) error {
		metrics.IncWaitlistPromotion()
		var payload events.PromotionEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("user_id", payload.UserID).
			Int64("notification_id", payload.NotificationID).
			Msg("event: waitlist entry promoted")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backup.Run(ctx)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
