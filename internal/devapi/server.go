package devapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/platform/auth"
	"github.com/clinica/dashboard/internal/platform/db"
	"github.com/clinica/dashboard/internal/platform/middleware"
)

type ServerConfig struct {
	JWT         auth.JWTConfig
	CORSOrigins []string
	// StoreName labels the backend in the health report.
	StoreName string
	BodyLimit string
	// HandlerTimeout bounds each /api request; zero disables it.
	HandlerTimeout time.Duration
	// RateLimit throttles each caller of /api; a zero rate disables it.
	RateLimit middleware.RateLimitConfig
}

// NewServer assembles the echo instance serving /api and /health.
func NewServer(cfg ServerConfig, store Store, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.GET("/health", db.HealthHandler(cfg.StoreName, store))

	api := e.Group("/api", auth.BearerMiddleware(cfg.JWT))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimit(cfg.RateLimit))
	}
	api.Use(middleware.RequestTimeout(cfg.HandlerTimeout))
	NewHandler(NewService(store, logger), logger).RegisterRoutes(api)

	return e
}
