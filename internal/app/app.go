package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/suleman231/provisimarket-hub/internal/assistant"
	"github.com/suleman231/provisimarket-hub/internal/chat"
	"github.com/suleman231/provisimarket-hub/internal/config"
	"github.com/suleman231/provisimarket-hub/internal/event"
	handler "github.com/suleman231/provisimarket-hub/internal/handler/http"
	"github.com/suleman231/provisimarket-hub/internal/repository"
	"github.com/suleman231/provisimarket-hub/internal/repository/memory"
	pgrepo "github.com/suleman231/provisimarket-hub/internal/repository/postgres"
	redisrepo "github.com/suleman231/provisimarket-hub/internal/repository/redis"
	"github.com/suleman231/provisimarket-hub/internal/service"
	"github.com/suleman231/provisimarket-hub/pkg/database"
	"github.com/suleman231/provisimarket-hub/pkg/health"
	"github.com/suleman231/provisimarket-hub/pkg/httpclient"
	pkgkafka "github.com/suleman231/provisimarket-hub/pkg/kafka"
	"github.com/suleman231/provisimarket-hub/pkg/middleware"
	"github.com/suleman231/provisimarket-hub/pkg/tracing"
)

// App wires together all dependencies and runs the marketplace server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	market         *service.Marketplace
	chat           *chat.Registry
	shutdownTracer tracing.ShutdownFunc
	httpServer     *http.Server
	done           chan struct{}
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger, done: make(chan struct{})}

	tcfg := tracing.DefaultConfig(handler.ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTelEnabled
	tcfg.OTLPEndpoint = cfg.OTelEndpoint
	tcfg.SampleRate = cfg.OTelSampleRate
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	snapshots, err := a.openSnapshotStore(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	var publisher event.Publisher = event.Noop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Assistant calls are single-shot.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.MaxRetries = 0
	geminiClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("gemini"),
		logger,
	)
	bridge := assistant.NewBridge(geminiClient, assistant.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	}, logger)
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; the assistant will answer with its fallback text")
	}

	a.market = service.NewMarketplace(repository.NewStateRepository(snapshots), publisher, logger)
	a.chat = chat.NewRegistry(bridge, logger)
	h := handler.NewHandler(a.market, a.chat, bridge, cfg.MediaMaxUploadBytes, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(h, healthHandler, handler.RouterConfig{
		CORS:           corsCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RequestTimeout: cfg.RequestTimeout,
		Done:           a.done,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openSnapshotStore connects the configured storage backend and registers
// its readiness check.
func (a *App) openSnapshotStore(ctx context.Context, h *health.Handler) (repository.SnapshotStore, error) {
	cfg := a.cfg
	switch cfg.StorageDriver {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		h.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return redisrepo.NewSnapshotStore(rdb, cfg.SnapshotTTL), nil

	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
			Host:            cfg.PostgresHost,
			Port:            cfg.PostgresPort,
			User:            cfg.PostgresUser,
			Password:        cfg.PostgresPass,
			DBName:          cfg.PostgresDB,
			SSLMode:         cfg.PostgresSSL,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLifetime,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)

		if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		database.RegisterPoolMetrics(pool, handler.ServiceName)
		h.RegisterCritical("postgres", pool.Ping)
		return pgrepo.NewSnapshotStore(pool), nil

	default:
		a.logger.Warn("using in-memory snapshot storage; state is lost on restart")
		return memory.NewSnapshotStore(), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.runSessionEviction(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// runSessionEviction drops idle in-memory sessions until ctx is done.
// Marketplace state is reloaded from storage on next use; chat transcripts
// are not persisted and are lost.
func (a *App) runSessionEviction(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SessionSweepInt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case <-ticker.C:
			sessions := a.market.EvictIdle(a.cfg.SessionIdleTTL)
			chats := a.chat.EvictIdle(a.cfg.SessionIdleTTL)
			if sessions > 0 || chats > 0 {
				a.logger.Debug("evicted idle sessions",
					slog.Int("sessions", sessions),
					slog.Int("chats", chats),
				)
			}
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	close(a.done)

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()
	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
