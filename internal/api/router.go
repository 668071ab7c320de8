package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/client-console/docs"
	"github.com/99minutos/client-console/internal/api/handler"
	"github.com/99minutos/client-console/internal/core/ports"
)

// Registry is where HTTP metrics are registered and /metrics gathers from.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
// A nil registry selects the default Prometheus registry.
func NewRouter(console ports.ConsoleService, repo ports.ClientRepository, log zerolog.Logger, registry Registry) *echo.Echo {
	if registry == nil {
		registry = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registry,
	}))

	// --- Dependencies ---
	consoleHandler := handler.NewConsoleHandler(console, log)

	// --- Console routes ---
	v1 := e.Group("/v1")
	v1.GET("/console", consoleHandler.Render)
	v1.GET("/catalog", consoleHandler.Catalog)
	v1.GET("/clients", consoleHandler.List)
	v1.POST("/clients", consoleHandler.Create)
	v1.GET("/clients/:username", consoleHandler.Get)
	v1.PUT("/clients/:username", consoleHandler.Update)
	v1.DELETE("/clients/:username", consoleHandler.Delete)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(map[string]handler.Pinger{"storage": repo})

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – is storage reachable?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
