// Package main is the entrypoint for the QR content API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nahomWM/Quantum-Qr-Code/internal/analytics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/config"
	"github.com/nahomWM/Quantum-Qr-Code/internal/handler"
	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/middleware"
	"github.com/nahomWM/Quantum-Qr-Code/internal/objectstore"
	"github.com/nahomWM/Quantum-Qr-Code/internal/server"
	"github.com/nahomWM/Quantum-Qr-Code/internal/service"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metadata store
	metadata, err := newMetadataStore(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}
	catalog := store.NewCatalog(metadata)

	// Object store
	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize object storage",
			slog.String("backend", cfg.StorageBackend),
			slog.String("error", err.Error()),
		)
		_ = metadata.Close()
		os.Exit(1)
	}

	// Services
	metricsRecorder := metrics.NewInMemory()
	scanRecorder := analytics.NewRecorder(catalog, logger, metricsRecorder)
	gateway := service.NewContentGateway(catalog, objects, scanRecorder, logger, metricsRecorder, cfg.FetchTimeout)
	definitionService := service.NewDefinitionService(catalog, logger, metricsRecorder)
	payloadService := service.NewPayloadService(catalog, objects, logger, metricsRecorder)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(metadata)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	scanHandler := handler.NewScanHandler(gateway, metricsRecorder, logger)
	analyticsHandler := handler.NewAnalyticsHandler(catalog, logger)
	definitionHandler := handler.NewDefinitionHandler(definitionService, logger)
	payloadHandler := handler.NewPayloadHandler(payloadService, logger, cfg.MaxUploadSize)

	r := setupRouter(routerDeps{
		base:        h,
		health:      healthHandler,
		metrics:     metricsHandler,
		scan:        scanHandler,
		analytics:   analyticsHandler,
		definitions: definitionHandler,
		payloads:    payloadHandler,
		limiter:     newScanLimiter(cfg, metadata),
	}, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("metadata store", func(ctx context.Context) error {
		return metadata.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"metadata_backend", cfg.MetadataBackend,
		"storage_backend", cfg.StorageBackend,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newMetadataStore builds the configured metadata store backend. It
// logs its own errors so connection strings can be redacted here.
func newMetadataStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.MetadataBackend {
	case "redis":
		s, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return nil, err
		}
		logger.Info("connected to Redis")
		return s, nil

	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, err
		}
		logger.Info("connected to database")
		return s, nil

	default:
		logger.Warn("using in-memory metadata store; documents will not survive a restart")
		return store.NewMemory(), nil
	}
}

// newObjectStore builds the configured payload storage backend.
func newObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Client, error) {
	if cfg.StorageBackend == "s3" {
		return objectstore.NewS3(ctx, cfg.S3Region, cfg.S3Endpoint, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
	}
	return objectstore.NewB2(cfg.B2Endpoint, cfg.B2Bucket, cfg.B2KeyID, cfg.B2AppKey), nil
}

// newScanLimiter returns a Redis-backed limiter when the metadata
// backend is Redis, nil otherwise. The middleware treats a nil limiter
// as disabled.
func newScanLimiter(cfg *config.Config, metadata store.Store) middleware.Limiter {
	redisStore, ok := metadata.(*store.Redis)
	if !ok || !cfg.RateLimitScanEnabled {
		return nil
	}
	return middleware.NewRedisLimiter(redisStore.Client(), cfg.RateLimitScanLimit, cfg.RateLimitScanWindow)
}

type routerDeps struct {
	base        *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	scan        *handler.ScanHandler
	analytics   *handler.AnalyticsHandler
	definitions *handler.DefinitionHandler
	payloads    *handler.PayloadHandler
	limiter     middleware.Limiter
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: deps.limiter,
		Enabled: cfg.RateLimitScanEnabled && deps.limiter != nil,
	}

	// Operational endpoints
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)
	r.Get("/", deps.base.Root)

	// Public scan path, rate limited per IP
	r.With(middleware.RateLimit(rateLimitCfg)).Get("/code/{id}", deps.scan.Scan)
	r.Get("/file/{payloadRef}", deps.scan.Download)

	// Analytics
	r.Get("/analytics/{id}", deps.analytics.Get)
	r.Post("/analytics/batch", deps.analytics.Batch)

	// Authoring
	r.Post("/upload", deps.payloads.Upload)
	r.Route("/definitions", func(r chi.Router) {
		r.Get("/", deps.definitions.List)
		r.Post("/", deps.definitions.Create)
		r.Get("/{id}", deps.definitions.Get)
		r.Delete("/{id}", deps.definitions.Delete)
	})

	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials out of a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces any embedded secrets in an error message with
// their redacted forms.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
