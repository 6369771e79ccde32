package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/frenow/rocketshoes-cart/internal/client"
	"github.com/frenow/rocketshoes-cart/internal/config"
	"github.com/frenow/rocketshoes-cart/internal/event"
	handler "github.com/frenow/rocketshoes-cart/internal/handler/http"
	"github.com/frenow/rocketshoes-cart/internal/notify"
	"github.com/frenow/rocketshoes-cart/internal/storage"
	"github.com/frenow/rocketshoes-cart/internal/storage/memory"
	pgstorage "github.com/frenow/rocketshoes-cart/internal/storage/postgres"
	redisstorage "github.com/frenow/rocketshoes-cart/internal/storage/redis"
	"github.com/frenow/rocketshoes-cart/internal/store"
	"github.com/frenow/rocketshoes-cart/pkg/database"
	"github.com/frenow/rocketshoes-cart/pkg/health"
	"github.com/frenow/rocketshoes-cart/pkg/httpclient"
	pkgkafka "github.com/frenow/rocketshoes-cart/pkg/kafka"
	"github.com/frenow/rocketshoes-cart/pkg/middleware"
	"github.com/frenow/rocketshoes-cart/pkg/tracing"
)

const serviceVersion = "0.1.0"

// pingStorage is a snapshot backend that can report readiness.
type pingStorage interface {
	storage.Storage
	Ping(ctx context.Context) error
}

// App wires together all dependencies and runs the cart store.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.CartStore
	httpServer *http.Server

	// closers run in reverse order on shutdown.
	closers []func() error
}

// NewApp creates the application and seeds the cart from its snapshot.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			a.close()
		}
	}()

	shutdownTracer, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.onClose(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracer(ctx)
	})

	healthHandler := health.NewHandler()

	backend, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	healthHandler.RegisterCritical("storage", backend.Ping)

	stockHTTP := a.upstreamClient("stock")
	catalogHTTP := a.upstreamClient("catalog")
	healthHandler.RegisterNonCritical("stock", breakerCheck(stockHTTP))
	healthHandler.RegisterNonCritical("catalog", breakerCheck(catalogHTTP))

	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	var producer *event.Producer
	if cfg.KafkaEnabled {
		kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.onClose(kafkaProducer.Close)
		healthHandler.RegisterNonCritical("kafka", kafkaProducer.Ping)

		notifiers = append(notifiers, notify.NewKafkaNotifier(kafkaProducer, cfg.StorageKey, handler.ServiceName, logger))
		producer = event.NewProducer(kafkaProducer, cfg.StorageKey, handler.ServiceName, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.store = store.New(
		client.NewStockClient(stockHTTP, cfg.StockAPIURL),
		client.NewCatalogClient(catalogHTTP, cfg.CatalogAPIURL),
		storage.NewSnapshotRepository(backend, cfg.StorageKey),
		notifiers,
		logger,
	)
	if producer != nil {
		a.store.Subscribe(producer.OnCartChanged)
	}
	if err := a.store.Load(ctx); err != nil {
		return nil, err
	}

	router := handler.NewRouter(a.store, healthHandler, middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins}, logger)
	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ready = true
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (pingStorage, error) {
	switch a.cfg.StorageBackend {
	case config.BackendMemory:
		a.logger.Warn("using in-memory cart storage; the cart is lost on restart")
		return memory.New(), nil

	case config.BackendPostgres:
		pgCfg := a.cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.onClose(func() error { pool.Close(); return nil })

		if err := database.RunMigrations(ctx, pool, pgstorage.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(pool, handler.ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		a.logger.Info("connected to PostgreSQL", slog.String("host", pgCfg.Host), slog.String("db", pgCfg.DBName))
		return pgstorage.New(pool, database.QueryTracer{SlowThreshold: 200 * time.Millisecond, Logger: a.logger}), nil

	default:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.onClose(rdb.Close)
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
			slog.Duration("ttl", a.cfg.CartTTL()),
		)
		return redisstorage.New(rdb, a.cfg.CartTTL()), nil
	}
}

func (a *App) upstreamClient(name string) *httpclient.CircuitBreakerClient {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = a.cfg.UpstreamTimeout()
	httpCfg.MaxRetries = a.cfg.UpstreamMaxRetries
	return httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), httpclient.DefaultCircuitBreakerConfig(name), a.logger)
}

// breakerCheck reports an upstream as down while its breaker is open.
func breakerCheck(c *httpclient.CircuitBreakerClient) health.Checker {
	return func(context.Context) error {
		if c.State() == gobreaker.StateOpen {
			return httpclient.ErrCircuitOpen
		}
		return nil
	}
}

// Handler exposes the router.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Store exposes the cart store to in-process consumers.
func (a *App) Store() *store.CartStore {
	return a.store
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
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
	a.close()

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
