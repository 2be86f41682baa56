package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taskflow/approval-platform/internal/api/handler"
	"github.com/taskflow/approval-platform/internal/api/middleware"
	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// Options carries what every router needs besides its services.
type Options struct {
	// Service names the process in logs, metrics and the swagger instance.
	Service     string
	Logger      zerolog.Logger
	CORSOrigins []string
	// Checks are probed by /health/ready.
	Checks []handler.Check
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// IdentityDeps wires the identity service routes.
type IdentityDeps struct {
	Auth           ports.AuthService
	Tokens         ports.TokenValidator
	LoginRateLimit int
}

// TaskDeps wires the task service routes.
type TaskDeps struct {
	Tasks  ports.TaskService
	Tokens ports.TokenValidator
}

// NewIdentityRouter builds the Echo instance for the identity service.
func NewIdentityRouter(opts Options, deps IdentityDeps) *echo.Echo {
	e := newEcho(opts)

	authHandler := handler.NewAuthHandler(deps.Auth)
	limiter := middleware.NewRateLimiter(deps.LoginRateLimit)

	g := e.Group("/auth")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login, limiter.Middleware())
	g.GET("/validate", authHandler.Validate)
	g.GET("/users", authHandler.ListUsers, middleware.Auth(deps.Tokens))

	return e
}

// NewTaskRouter builds the Echo instance for the task service.
func NewTaskRouter(opts Options, deps TaskDeps) *echo.Echo {
	e := newEcho(opts)

	taskHandler := handler.NewTaskHandler(deps.Tasks)

	g := e.Group("/tasks", middleware.Auth(deps.Tokens))
	g.POST("", taskHandler.Create, middleware.RBAC(domain.CapManageTasks))
	g.GET("", taskHandler.List, middleware.RBAC(domain.CapManageTasks))
	g.PUT("/:id/approve", taskHandler.Approve, middleware.RBAC(domain.CapReviewTasks))
	g.PUT("/:id/reject", taskHandler.Reject, middleware.RBAC(domain.CapReviewTasks))

	return e
}

func newEcho(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)
	e.Validator = handler.NewValidator()
	// No trusted proxies: RealIP is the socket peer, never X-Forwarded-For.
	e.IPExtractor = echo.ExtractIPDirect()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskflow",
		Subsystem:  opts.Service,
		Registerer: opts.Registerer,
		Skipper:    skipInfraPaths,
	}))
	// Handles errors itself so the metrics middleware above sees final status codes.
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.CORS(opts.CORSOrigins))

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", handler.NewHealthHandler(opts.Service).Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(opts.Logger, opts.Checks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: opts.Gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(opts.Service)))

	return e
}

func skipInfraPaths(c echo.Context) bool {
	p := c.Path()
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
