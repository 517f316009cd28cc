package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/repository/mongo"
	"github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceVersion = "0.1.0"

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongo          *database.Mongo
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
		Insecure:       cfg.OTelInsecure,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler(2 * time.Second)

	productRepo, userRepo, err := a.openStore(ctx, healthHandler)
	if err != nil {
		a.release()
		return nil, err
	}

	// Kafka is optional. A disabled producer publishes nothing.
	var publisher event.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	// The review feed cache is optional too. An unreachable Redis at startup
	// leaves the feed uncached rather than failing the boot.
	var feedCache repository.ReviewFeedCache
	if cfg.RedisEnabled {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB

		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			logger.Warn("redis unavailable, review feed cache disabled", slog.String("error", err.Error()))
		} else {
			a.redis = client
			feedCache = redis.NewFeedCache(client)
			healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})
			logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	productService := service.NewProductService(productRepo, eventProducer, feedCache, logger)
	reviewService := service.NewReviewService(productRepo, eventProducer, feedCache, cfg.FeedCacheTTL, logger)
	userService := service.NewUserService(userRepo, jwtManager, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		ProductService: productService,
		ReviewService:  reviewService,
		UserService:    userService,
		TokenValidator: jwtManager.Validator(),
		Health:         healthHandler,
		CORS:           cors,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	a.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStore connects the configured document store and registers its
// readiness check.
func (a *App) openStore(ctx context.Context, h *health.Handler) (repository.ProductRepository, repository.UserRepository, error) {
	cfg := a.cfg

	if cfg.StoreDriver == config.StoreMemory {
		a.logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewProductRepository(), memory.NewUserRepository(), nil
	}

	mongoCfg := database.DefaultMongoConfig()
	mongoCfg.URI = cfg.MongoURI
	mongoCfg.Database = cfg.MongoDB
	mongoCfg.MaxPoolSize = cfg.MongoPoolSize
	mongoCfg.ConnectAttempts = cfg.ConnectAttempts

	monitor := database.NewMonitor(database.MonitorOptions{
		Service:       cfg.ServiceName,
		SlowThreshold: cfg.SlowCommand,
		Logger:        a.logger,
	})

	m, err := database.NewMongo(ctx, mongoCfg, monitor, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	a.mongo = m

	if err := mongo.EnsureIndexes(ctx, m.DB); err != nil {
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	a.logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDB))

	h.RegisterCritical("mongo", m.Ping)

	return mongo.NewProductRepository(m.DB), mongo.NewUserRepository(m.DB), nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
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
		a.release()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis, then MongoDB.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.release(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// release closes every backing resource that was opened.
func (a *App) release() error {
	var errs []error

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}

	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(ctx); err != nil {
			a.logger.Error("mongo close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.mongo = nil
	}

	return errors.Join(errs...)
}
