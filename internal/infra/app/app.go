package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/infra/config"
	"github.com/wisatahub/platform-gateway/internal/infra/database"
	kafkainfra "github.com/wisatahub/platform-gateway/internal/infra/kafka"
	"github.com/wisatahub/platform-gateway/internal/infra/logger"
	redisinfra "github.com/wisatahub/platform-gateway/internal/infra/redis"
	"github.com/wisatahub/platform-gateway/internal/infra/security"
	"github.com/wisatahub/platform-gateway/internal/infra/telemetry"
	postgresrepo "github.com/wisatahub/platform-gateway/internal/repository/postgres"
	redisrepo "github.com/wisatahub/platform-gateway/internal/repository/redis"
	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
	"github.com/wisatahub/platform-gateway/internal/transport/http/routes"
	"github.com/wisatahub/platform-gateway/internal/usecase"
)

// Application wires the gateway's dependencies and owns their lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metricsProvider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	keyProvider, err := security.NewDirKeyProvider(cfg.Session.KeyDirectory)
	if err != nil {
		return nil, fmt.Errorf("init key provider: %w", err)
	}
	jwtManager := security.NewJWTManager(keyProvider, cfg.Session.SigningKeyID)

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	revocations := redisrepo.NewSessionRevocationStore(redisClient.Client(), cfg.Redis.RevocationPrefix)
	sessionReader := security.NewSessionReader(jwtManager, revocations, cfg.Session, log)

	repos := postgresrepo.NewRepositories(pool)

	var producer *kafkainfra.Producer
	var publisher port.DecisionPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			publisher = kafkainfra.NewStubPublisher(log)
		} else {
			publisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka decision publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		publisher = kafkainfra.NewStubPublisher(log)
	}

	resolver := usecase.NewRoleResolver(repos.Assignments, log)
	consent := usecase.NewConsentGate()
	gatewayService := usecase.NewGatewayService(repos.Profiles, resolver, consent, publisher, log, cfg.Gateway.StoreTimeout)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "gateway:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     httpMetrics,
		RateLimiter: rateLimiter,
		Sessions:    sessionReader,
		Gateway:     gatewayService,
		Recorder:    metricsProvider,
		Resolver:    resolver,
		Profiles:    repos.Profiles,
		Assignments: repos.Assignments,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracer:   tracer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting access gateway",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
