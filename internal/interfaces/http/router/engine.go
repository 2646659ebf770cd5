package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/infrastructure/auth"
	"github.com/wzledger/backend/internal/infrastructure/config"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"github.com/wzledger/backend/internal/infrastructure/telemetry"
	"github.com/wzledger/backend/internal/interfaces/http/handler"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// multipartOverhead is added to the image size limit for form boundaries and headers
const multipartOverhead = 64 << 10

// EngineConfig configures the HTTP engine
type EngineConfig struct {
	Env            string
	ServiceName    string
	HTTP           config.HTTPConfig
	MaxImageBytes  int64
	TracingEnabled bool
	Profiling      middleware.ProfilingConfig
}

// Handlers groups the HTTP handlers mounted on the engine
type Handlers struct {
	Auth      *handler.AuthHandler
	Entries   *handler.EntryHandler
	Companies *handler.CompanyHandler
	Products  *handler.ProductHandler
	Health    *handler.HealthHandler
}

// Dependencies are the collaborators the middleware stack needs
type Dependencies struct {
	Logger    *zap.Logger
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	Users     identity.UserRepository
	Meter     *telemetry.MeterProvider // nil disables HTTP metrics
}

// NewEngine builds the gin engine with the middleware stack and all routes.
// ctx bounds background work such as rate limiter cleanup.
func NewEngine(ctx context.Context, cfg EngineConfig, deps Dependencies, h Handlers) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Tracing runs before the request logger so log lines carry the trace ID.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.HTTPMetrics(deps.Meter, log))
	engine.Use(middleware.ProfilingWithConfig(cfg.Profiling))

	jsonLimit := middleware.BodyLimit(cfg.HTTP.MaxBodySize)
	protected := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     deps.JWT,
			TokenBlacklist: deps.Blacklist,
			Logger:         log,
		}),
		middleware.CurrentUser(deps.Users),
		middleware.TracingAttributeInjector(),
	}

	r := NewRouter(engine, WithAPIVersion("v1"))

	health := NewDomainGroup("health", "/health")
	health.GET("", h.Health.Check)
	r.RegisterRoot(health)

	r.RegisterRoot(authRoutes(ctx, cfg.HTTP, log, jsonLimit, protected, h.Auth))

	entries := NewDomainGroup("ledger", "/entries").Use(jsonLimit).Use(protected...)
	entries.POST("", h.Entries.Create)
	entries.GET("", h.Entries.List)
	entries.GET("/:id", h.Entries.GetByID)
	entries.PATCH("/:id", h.Entries.Immutable)
	entries.DELETE("/:id", h.Entries.Immutable)
	r.Register(entries)

	companies := NewDomainGroup("partner", "/companies").Use(jsonLimit).Use(protected...)
	companies.GET("", h.Companies.List)
	companies.POST("", h.Companies.Create)
	companies.GET("/:id", h.Companies.GetByID)
	companies.PATCH("/:id", h.Companies.Update)
	companies.DELETE("/:id", h.Companies.Delete)
	r.Register(companies)

	// Image uploads need a larger body limit than the JSON routes.
	products := NewDomainGroup("catalog", "/products")
	catalog := products.Group("catalog-json", "").Use(jsonLimit).Use(protected...)
	catalog.GET("", h.Products.List)
	catalog.POST("", h.Products.Create)
	catalog.GET("/:id", h.Products.GetByID)
	catalog.PATCH("/:id", h.Products.Update)
	catalog.DELETE("/:id", h.Products.Delete)
	catalog.GET("/:id/balances", h.Products.Balances)
	images := products.Group("catalog-images", "").
		Use(middleware.BodyLimit(cfg.MaxImageBytes + multipartOverhead)).
		Use(protected...)
	images.POST("/:id/image", h.Products.UploadImage)
	r.Register(products)

	r.Setup()
	return engine
}

func authRoutes(ctx context.Context, cfg config.HTTPConfig, log *zap.Logger, jsonLimit gin.HandlerFunc, protected []gin.HandlerFunc, h *handler.AuthHandler) *DomainGroup {
	group := NewDomainGroup("identity", "/auth").Use(jsonLimit)
	if cfg.AuthRateLimit > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, cfg.AuthRateWindow)
		group.Use(middleware.RateLimit(limiter))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.AuthRateLimit),
			zap.Duration("window", cfg.AuthRateWindow),
		)
	}

	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.POST("/refresh", h.Refresh)

	session := group.Group("identity-session", "").Use(protected...)
	session.POST("/logout", h.Logout)
	session.GET("/me", h.Me)
	return group
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	cors.ExposeHeaders = append(cors.ExposeHeaders, "X-RateLimit-Limit", "X-RateLimit-Remaining")
	cors.MaxAge = 12 * time.Hour
	return cors
}
