package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cheatvault/gta-cheats-api/internal/api/docs"
	"github.com/cheatvault/gta-cheats-api/internal/api/handler"
	"github.com/cheatvault/gta-cheats-api/internal/api/middleware"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// Deps is everything the router needs. Ctx is cancelled on shutdown and
// ends open websocket streams.
type Deps struct {
	Ctx            context.Context
	Logger         zerolog.Logger
	JWTSecret      string
	FreeLikeLimit  int64
	AllowedOrigins []string

	Auth      ports.AuthService
	Cheats    ports.CheatService
	Likes     ports.LikeService
	Badges    ports.BadgeService
	Premium   ports.PremiumService
	Favorites ports.FavoritesService
	Auditor   ports.QuotaAuditor
	NewStream handler.StreamFactory
	Checks    map[string]handler.Check

	NewLikeStream handler.LikeStatusStreamFactory
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.FreeLikeLimit)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("cheats"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	cheatHandler := handler.NewCheatHandler(d.Cheats)
	likeHandler := handler.NewLikeHandler(d.Likes, d.FreeLikeLimit)
	favoritesHandler := handler.NewFavoritesHandler(d.Ctx, d.Favorites, d.NewStream, d.AllowedOrigins, d.Logger)
	likeStreamHandler := handler.NewLikeStreamHandler(d.Ctx, d.Cheats, d.NewLikeStream, d.AllowedOrigins, d.Logger)
	badgeHandler := handler.NewBadgeHandler(d.Badges)
	premiumHandler := handler.NewPremiumHandler(d.Premium, d.FreeLikeLimit)
	adminHandler := handler.NewAdminHandler(d.Premium, d.Auditor)

	requireAuth := middleware.Auth(d.JWTSecret)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret)

	// --- Ops ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- v1 ---
	v1 := e.Group("/v1")

	v1.GET("/cheats", cheatHandler.List)
	v1.GET("/cheats/:id", cheatHandler.Get)
	v1.GET("/cheats/:id/like", likeHandler.Status, optionalAuth)
	v1.POST("/cheats/:id/like", likeHandler.Toggle, optionalAuth)
	v1.GET("/cheats/:id/like/stream", likeStreamHandler.Stream, optionalAuth)
	v1.GET("/badges", badgeHandler.Catalog, optionalAuth)

	me := v1.Group("/me")
	me.GET("/favorites", favoritesHandler.Summary, optionalAuth)
	me.GET("/favorites/stream", favoritesHandler.Stream, requireAuth)
	me.GET("/badges", badgeHandler.Mine, requireAuth)
	me.GET("/premium", premiumHandler.Me, requireAuth)

	admin := v1.Group("/admin", requireAuth, middleware.RBAC(domain.RoleAdmin))
	admin.PUT("/subscriptions/:user_id", adminHandler.SetSubscription)
	admin.POST("/quota-audit", adminHandler.QuotaAudit)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("user_id", currentUserID(c)).
				Msg("request")
			return nil
		},
	})
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(middleware.UserIDKey).(string)
	return id
}
