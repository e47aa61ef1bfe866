package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opsdesk/incident-report/internal/api/handler"
	"github.com/opsdesk/incident-report/internal/api/middleware"
	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/service"
	"github.com/opsdesk/incident-report/internal/core/token"
	mongodb "github.com/opsdesk/incident-report/internal/infrastructure/db/mongo"
	redisdb "github.com/opsdesk/incident-report/internal/infrastructure/db/redis"
	"github.com/opsdesk/incident-report/internal/infrastructure/hash"
	"github.com/opsdesk/incident-report/internal/pkg/config"
)

// NewRouter builds the Echo instance with all routes registered. Everything
// except login, refresh, health, and metrics sits behind the authorization
// gate; admin-only routes add an RBAC check on top.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("incident_report"))

	// --- Dependencies ---
	principalRepo := mongodb.NewPrincipalRepository(db)
	tokenRepo := mongodb.NewRefreshTokenRepository(db)
	incidentRepo := mongodb.NewIncidentRepository(db)

	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)
	hasher := hash.NewBcryptHasher(cfg.BcryptCost)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Throttle.Limit, cfg.Throttle.Window)

	sessionService := service.NewSessionService(
		principalRepo, tokenRepo, hasher, codec, throttle,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log,
	)
	principalService := service.NewPrincipalService(principalRepo, tokenRepo, hasher, log)
	incidentService := service.NewIncidentService(incidentRepo, log)

	authHandler := handler.NewAuthHandler(sessionService)
	principalHandler := handler.NewPrincipalHandler(principalService)
	incidentHandler := handler.NewIncidentHandler(incidentService)

	gate := middleware.Auth(codec, principalRepo)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh-token", authHandler.Refresh)
	e.POST("/auth/revoke-token", authHandler.Revoke, gate)
	e.POST("/auth/change-password", authHandler.ChangePassword, gate)

	// --- Principal directory ---
	e.GET("/principals", principalHandler.List, gate, adminOnly)
	e.POST("/principals", principalHandler.Create, gate, adminOnly)
	e.GET("/principals/:id", principalHandler.Get, gate)
	e.PUT("/principals/:id", principalHandler.Update, gate, adminOnly)
	e.GET("/principals/:id/refresh-tokens", principalHandler.RefreshTokens, gate)

	// --- Incident records ---
	e.GET("/incidents", incidentHandler.List, gate, adminOnly)
	e.POST("/incidents", incidentHandler.Create, gate, adminOnly)
	e.GET("/incidents/:id", incidentHandler.Get, gate)
	e.PUT("/incidents/:id", incidentHandler.Update, gate, adminOnly)
	e.POST("/incidents/:id/acknowledge", incidentHandler.Acknowledge, gate)
	e.POST("/incidents/:id/resolve", incidentHandler.Resolve, gate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
