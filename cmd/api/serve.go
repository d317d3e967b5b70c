package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"conclusio/docs"
	"conclusio/internal/config"
	"conclusio/internal/events"
	handlers "conclusio/internal/http/handler"
	"conclusio/internal/http/middleware"
	tracing "conclusio/internal/otel"
	"conclusio/internal/repository/postgres"
	"conclusio/internal/service"
	"conclusio/internal/session"
	"conclusio/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create the schema or load reference data on start")

	return cmd
}

func runServe(parent context.Context, skipMigrate bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	if !skipMigrate {
		if err := rt.migrateAndSeed(ctx); err != nil {
			return err
		}
	}

	store, err := storage.New(cfg.Storage, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	revoker, closeRedis, err := newRevoker(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("event_publisher_close_failed", zap.Error(err))
		}
	}()

	tokens, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return err
	}

	pieceRepo := postgres.NewPiecePostgres(rt.db)
	conclusionSvc := service.NewConclusionService(postgres.NewConclusionPostgres(rt.db), pieceRepo, store, publisher, logger)
	deps := handlers.Deps{
		DB:          rt.db,
		Session:     cfg.Session,
		Auth:        service.NewAuthService(postgres.NewUserPostgres(rt.db), tokens, revoker, logger),
		Conclusions: conclusionSvc,
		Pieces:      service.NewPieceService(pieceRepo, conclusionSvc, store, publisher, logger, cfg.Limits.MaxPieceSize),
		Reference:   service.NewReferenceService(postgres.NewReferencePostgres(rt.db)),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(cfg, logger, reg, deps)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown_signal_received")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("http_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("http_server_listening", zap.String("addr", addr), zap.String("version", Version))
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// newApp assembles the Fiber application: global middleware, /metrics, Swagger UI and
// the API routes.
func newApp(cfg *config.AppConfig, logger *zap.Logger, reg *prometheus.Registry, deps handlers.Deps) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Limits.BodyLimit,
		DisableStartupMessage: true,
	})

	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(recover.New())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == middleware.MetricsPath
	})))
	app.Use(metrics.Handler())
	// Logger renders chain errors, so the metrics above observe the final status.
	app.Use(middleware.Logger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
	}))

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, deps)
	return app, nil
}

// newRevoker connects the Redis revocation list, or disables revocation when no address is
// configured. The returned func closes the client.
func newRevoker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (session.Revoker, func(), error) {
	if cfg.Addr == "" {
		logger.Warn("session_revocation_disabled", zap.String("reason", "REDIS_ADDR not set"))
		return session.NoopRevoker{}, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return session.NewRedisRevoker(rdb), func() {
		if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			logger.Warn("redis_close_failed", zap.Error(err))
		}
	}, nil
}
