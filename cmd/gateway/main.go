package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"worknow/internal/api"
	"worknow/internal/config"
	"worknow/internal/database"
	"worknow/internal/events"
	"worknow/internal/export"
	"worknow/internal/logging"
	"worknow/internal/metrics"
	"worknow/internal/models"
	"worknow/internal/remote"
	"worknow/internal/repository"
	"worknow/internal/service"
	"worknow/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, workspaces, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	store, err := database.NewCheckoutStore(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open checkout store")
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessionRepo := initSessionRepository(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func(c *redis.Client) { _ = repository.Close(c) })(redisClient)
	}

	backend := remote.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
	if redisClient != nil && cfg.Backend.CacheTTLSeconds > 0 {
		backend.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTLSeconds)*time.Second)
	}

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	cartService := service.NewCartService(sessionRepo, eventBus, &logger)
	stateService := service.NewStateService(sessionRepo, &logger)
	availabilityService := service.NewAvailabilityService(backend, cfg.Availability.OnFetchError, &logger)
	checkoutService := service.NewCheckoutService(cartService, backend, store, eventBus, &logger)
	exporter := export.NewScheduleExporter(backend, cfg.Exports.Path, &logger)

	if redisClient != nil && len(workspaces) > 0 {
		ids := make([]string, 0, len(workspaces))
		for _, ws := range workspaces {
			ids = append(ids, ws.ID)
		}
		refresher := worker.NewSnapshotRefresher(
			backend, redisClient, ids,
			time.Duration(cfg.Availability.RefreshIntervalSeconds)*time.Second,
			worker.RetryPolicy{}, &logger,
		)
		go refresher.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	go purgeStaleHandoffs(ctx, store, &logger)

	apiServer := api.NewHTTPServer(cfg.API, cfg.Selection, api.Deps{
		Carts:        cartService,
		States:       stateService,
		Backend:      backend,
		Availability: availabilityService,
		Checkout:     checkoutService,
		Handoffs:     store,
		Sessions:     sessionRepo,
		Exporter:     exporter,
		Workspaces:   workspaces,
	}, &logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	logger.Info().Msg("booking gateway started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("API server error")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, []models.Workspace, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := logging.Component(baseLogger, "gateway-main")

	workspacesPath := os.Getenv("WORKSPACES_PATH")
	if workspacesPath == "" {
		workspacesPath = "configs/workspaces.yaml"
	}
	workspaces, err := loadWorkspaces(workspacesPath)
	if err != nil {
		logger.Error().Err(err).Msgf("failed to load %s", workspacesPath)
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, workspaces, logger, closer, nil
}

// loadWorkspaces reads the watch-list of workspaces this gateway serves.
func loadWorkspaces(path string) ([]models.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Workspaces []models.Workspace `yaml:"workspaces"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	if err := config.ValidateWorkspaces(wrapper.Workspaces); err != nil {
		return nil, err
	}
	return wrapper.Workspaces, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create database directory")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("failed to create export directory")
			return err
		}
	}
	return nil
}

func initSessionRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverSessionRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultSessionTTL) * time.Second
	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	fallback := repository.NewMemorySessionRepository()
	return redisClient, repository.NewFailoverSessionRepository(primary, fallback, logger)
}

// purgeStaleHandoffs drops checkout snapshots that were never consumed.
// Anything older than a session's lifetime belongs to an abandoned flow.
func purgeStaleHandoffs(ctx context.Context, store *database.CheckoutStore, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := store.PurgeOlderThan(ctx, time.Duration(models.DefaultSessionTTL)*time.Second); err != nil {
				logger.Error().Err(err).Msg("handoff purge failed")
			}
		}
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// subscribeBookingEvents keeps an operational trace of the booking flow.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(level func() *zerolog.Event) events.EventHandler {
		return func(ev *events.Event) error {
			level().
				Str("event", ev.Type).
				RawJSON("payload", ev.Payload).
				Msg("booking event")
			return nil
		}
	}

	bus.Subscribe(events.EventSelectionSet, logEvent(func() *zerolog.Event { return logger.Info() }))
	bus.Subscribe(events.EventSelectionCleared, logEvent(func() *zerolog.Event { return logger.Info() }))
	bus.Subscribe(events.EventCheckoutRequested, logEvent(func() *zerolog.Event { return logger.Info() }))
	bus.Subscribe(events.EventCheckoutConflict, logEvent(func() *zerolog.Event { return logger.Warn() }))
}
