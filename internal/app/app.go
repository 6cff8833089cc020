package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/A3Manav/jewellery-wishlist-service/internal/config"
	"github.com/A3Manav/jewellery-wishlist-service/internal/event"
	handler "github.com/A3Manav/jewellery-wishlist-service/internal/handler/http"
	"github.com/A3Manav/jewellery-wishlist-service/internal/notify"
	"github.com/A3Manav/jewellery-wishlist-service/internal/service"
	redisstore "github.com/A3Manav/jewellery-wishlist-service/internal/store/redis"
	"github.com/A3Manav/jewellery-wishlist-service/internal/upstream"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/health"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/httpclient"
	pkgkafka "github.com/A3Manav/jewellery-wishlist-service/pkg/kafka"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/tracing"
)

const serviceName = "wishlist-service"

// App wires together all dependencies and runs the wishlist service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	pruner          *service.Pruner
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracingShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TraceSample,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis client for session state.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Breaker-wrapped clients for the storefront API. Auth and catalog
	// trip independently so a catalog outage does not block logins.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.UpstreamTimeout
	authClient := upstream.NewAuthClient(cfg.StorefrontBaseURL,
		httpclient.NewBreakerClient(httpclient.New(clientCfg), httpclient.DefaultBreakerConfig("auth-api"), logger))
	catalogClient := upstream.NewCatalogClient(cfg.StorefrontBaseURL,
		httpclient.NewBreakerClient(httpclient.New(clientCfg), httpclient.DefaultBreakerConfig("catalog-api"), logger))

	// Build the dependency graph.
	sessionStore := redisstore.NewStore(rdb)
	eventProducer := event.NewProducer(producer, logger)
	notifier := notify.NewDeduper(
		notify.NewEventNotifier(eventProducer, logger),
		cfg.NotifyDedupeWindow,
	)
	pruner := service.NewPruner(authClient, cfg.PruneQueueSize, logger)

	reconciler := service.NewReconciler(
		sessionStore,
		authClient,
		catalogClient,
		eventProducer,
		notifier,
		pruner,
		service.Config{
			SessionTTL:             time.Duration(cfg.SessionTTL) * time.Hour,
			ProfileTimeout:         cfg.ProfileTimeout,
			MaterializeConcurrency: cfg.MaterializeConcurrency,
			LoginPromptDelay:       cfg.LoginPromptDelay,
		},
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	// HTTP router.
	h := handler.NewHandler(reconciler, logger)
	router := handler.NewRouter(h, healthHandler, handler.RouterConfig{
		ServiceName:    serviceName,
		RequestTimeout: cfg.RequestTimeout,
		LoginRPS:       cfg.LoginRPS,
		LoginBurst:     cfg.LoginBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		pruner:          pruner,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and the background pruner, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	prunerCtx, stopPruner := context.WithCancel(context.Background())
	defer stopPruner()
	go a.pruner.Run(prunerCtx)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
