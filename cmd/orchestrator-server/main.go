package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/api"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/auth"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/dispatch"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/provider"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/storage"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tools"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/workflow"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Logger
	logger := mustBuildLogger(envOrDefault("ORCH_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	httpPort := envOrDefault("ORCH_HTTP_PORT", "8080")
	identityURL := os.Getenv("IDENTITY_BASE_URL")
	providersPath := os.Getenv("ORCH_PROVIDERS_FILE")
	postgresDSN := os.Getenv("POSTGRES_DSN")
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	cacheTTL := envOrDefaultInt("ORCH_AUTH_CACHE_TTL_S", 30)

	crmURL := envOrDefault("CRM_API_URL", "https://crm.internal.example.com/api")
	calendarURL := envOrDefault("CALENDAR_API_URL", "https://www.googleapis.com/calendar/v3")
	docsURL := envOrDefault("DOCS_API_URL", "https://docs.googleapis.com/v1")
	weatherURL := envOrDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1")

	if identityURL == "" {
		logger.Fatal("IDENTITY_BASE_URL is required")
	}

	logger.Info("starting orchestrator server",
		zap.String("http_port", httpPort),
		zap.String("identity_url", identityURL),
	)

	// Provider catalog
	var catalog *provider.Catalog
	if providersPath != "" {
		var err error
		catalog, err = provider.LoadCatalog(providersPath)
		if err != nil {
			logger.Fatal("failed to load provider catalog", zap.Error(err))
		}
		logger.Info("provider catalog loaded",
			zap.String("path", providersPath),
			zap.Int("providers", len(catalog.List())),
		)
	} else {
		catalog = provider.DefaultCatalog()
		logger.Info("no ORCH_PROVIDERS_FILE set, using built-in provider catalog")
	}

	// Token broker over the external identity service
	identity := broker.NewHTTPIdentityClient(identityURL, logger)
	tokenBroker := broker.New(catalog, identity, logger)

	// Tool registry — populated once here, read-only afterward
	registry := tool.NewRegistry()
	registry.MustRegister(tools.All(tools.Config{
		Broker:          tokenBroker,
		CRMBaseURL:      crmURL,
		CalendarBaseURL: calendarURL,
		DocsBaseURL:     docsURL,
		WeatherBaseURL:  weatherURL,
		Logger:          logger,
	})...)
	logger.Info("tool registry populated", zap.Int("tools", len(registry.List())))

	// Workflow catalog
	workflows := workflow.NewCatalog()
	workflows.MustRegister(workflow.BuiltinSpecs()...)

	// Storage — ClickHouse or LogWriter fallback
	var writer storage.EventWriter
	if clickhouseDSN != "" {
		chWriter, err := storage.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// Dispatcher and workflow engine
	dispatcher := dispatch.New(registry, writer, logger)
	engine := workflow.NewEngine(dispatcher, logger)

	// Caller auth — Postgres-backed or static for local development
	var authenticator auth.Authenticator
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		authenticator = auth.NewPostgresAuthenticator(auth.PostgresAuthConfig{
			DB:       db,
			CacheTTL: time.Duration(cacheTTL) * time.Second,
			Logger:   logger,
		})
		logger.Info("postgres auth connected")
	} else {
		authenticator = auth.NewStaticAuthenticator()
		logger.Warn("no POSTGRES_DSN set, using static auth (development only)")
	}

	// HTTP server
	deps := &api.Dependencies{
		Registry:   registry,
		Dispatcher: dispatcher,
		Engine:     engine,
		Workflows:  workflows,
		Broker:     tokenBroker,
		Auth:       authenticator,
		Logger:     logger,
	}
	httpServer := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("orchestrator server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
