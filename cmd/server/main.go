package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	catalogapp "github.com/wzledger/backend/internal/application/catalog"
	identityapp "github.com/wzledger/backend/internal/application/identity"
	ledgerapp "github.com/wzledger/backend/internal/application/ledger"
	partnerapp "github.com/wzledger/backend/internal/application/partner"
	"github.com/wzledger/backend/internal/infrastructure/auth"
	"github.com/wzledger/backend/internal/infrastructure/config"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"github.com/wzledger/backend/internal/infrastructure/persistence"
	"github.com/wzledger/backend/internal/infrastructure/storage"
	"github.com/wzledger/backend/internal/infrastructure/telemetry"
	"github.com/wzledger/backend/internal/interfaces/http/handler"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
	"github.com/wzledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger until the OTEL log bridge is ready.
	logCfg := logger.ForEnvironment(cfg.App.Env, cfg.Log.Level)
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFrom(cfg.Telemetry, Version), bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logger provider", zap.Error(err))
	}
	log := bootLog
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig(cfg.Telemetry, Version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry, Version), log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Profiling, cfg.Telemetry.ServiceName), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry), log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	blacklist, redisClient := newTokenBlacklist(ctx, cfg.Redis, log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB)
	entryRepo := persistence.NewGormEntryRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	companyService := partnerapp.NewCompanyService(companyRepo, log)
	productService := catalogapp.NewProductService(productRepo, balanceRepo, log)

	if cfg.Storage.Enabled {
		images, err := storage.NewS3ImageStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		if err := images.EnsureBucket(ctx); err != nil {
			log.Fatal("Image bucket is not available", zap.Error(err))
		}
		productService.SetImageStorage(images, cfg.Storage.MaxImageBytes)
		log.Info("Image storage enabled", zap.String("bucket", images.Bucket()))
	}

	entryService := ledgerapp.NewEntryService(
		entryRepo,
		ledgerapp.NewResolver(entryRepo, companyRepo, productRepo),
		persistence.NewGormTransactionScope(db.DB),
		log,
	)
	if meterProvider.IsEnabled() {
		ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("ledger"), log)
		if err != nil {
			log.Fatal("Failed to create ledger metrics", zap.Error(err))
		}
		entryService.SetMetrics(ledgerMetrics)
	}

	engine := router.NewEngine(ctx, router.EngineConfig{
		Env:            cfg.App.Env,
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		MaxImageBytes:  cfg.Storage.MaxImageBytes,
		TracingEnabled: tracerProvider.IsEnabled(),
		Profiling: middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		},
	}, router.Dependencies{
		Logger:    log,
		JWT:       jwtService,
		Blacklist: blacklist,
		Users:     userRepo,
		Meter:     meterProvider,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Entries:   handler.NewEntryHandler(entryService),
		Companies: handler.NewCompanyHandler(companyService),
		Products:  handler.NewProductHandler(productService),
		Health:    handler.NewHealthHandler(db, Version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// newTokenBlacklist uses Redis when it is enabled and reachable. Otherwise
// revocations live in process memory and do not survive restarts.
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (auth.TokenBlacklist, *redis.Client) {
	if !cfg.Enabled {
		log.Warn("Redis disabled, using in-memory token blacklist")
		return auth.NewInMemoryTokenBlacklist(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory token blacklist", zap.Error(err))
		_ = client.Close()
		return auth.NewInMemoryTokenBlacklist(), nil
	}

	log.Info("Redis connected", zap.String("addr", cfg.Addr()))
	return auth.NewRedisTokenBlacklist(client, ""), client
}
