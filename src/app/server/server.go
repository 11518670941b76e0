// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"returnsdesk/src/app/http/handler"
	"returnsdesk/src/app/http/response"
	"returnsdesk/src/app/middleware"
	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
	"returnsdesk/src/core/usecase"
	"returnsdesk/src/infra/config"
)

// Dependencies are the adapters the server is wired with.
type Dependencies struct {
	// Refresher keeps identity sessions fresh. Nil disables session refresh.
	Refresher ports.SessionRefresher

	// Health lists dependencies checked by /health/detailed, by name.
	Health map[string]ports.ExternalService
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// background work (rate limiter cleanup) stops when cancel is called
	ctx    context.Context
	cancel context.CancelFunc

	// Handlers
	healthHandler  *handler.HealthHandler
	sessionHandler *handler.SessionHandler
	returnsHandler *handler.ReturnsHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, deps Dependencies) (*Server, error) {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	healthService := usecase.NewHealthService(log, deps.Health)
	returnService := usecase.NewReturnService(log)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		log:            log,
		router:         router,
		ctx:            ctx,
		cancel:         cancel,
		healthHandler:  handler.NewHealthHandler(healthService),
		sessionHandler: handler.NewSessionHandler(),
		returnsHandler: handler.NewReturnsHandler(returnService),
	}

	edge, err := s.edgeFilterConfig(deps.Refresher)
	if err != nil {
		cancel()
		return nil, err
	}

	s.setupMiddleware(edge)
	s.setupRoutes()
	s.setupHTTPServer()

	return s, nil
}

func (s *Server) edgeFilterConfig(refresher ports.SessionRefresher) (middleware.EdgeFilterConfig, error) {
	origins, err := s.cfg.OriginPolicy()
	if err != nil {
		return middleware.EdgeFilterConfig{}, fmt.Errorf("origin policy: %w", err)
	}
	transient, err := domain.ParseFailurePolicy(s.cfg.Edge.TransientPolicy)
	if err != nil {
		return middleware.EdgeFilterConfig{}, fmt.Errorf("transient failure policy: %w", err)
	}
	terminal, err := domain.ParseFailurePolicy(s.cfg.Edge.TerminalPolicy)
	if err != nil {
		return middleware.EdgeFilterConfig{}, fmt.Errorf("terminal failure policy: %w", err)
	}

	s.log.Info("edge filter configured",
		"policy", origins.Name,
		"origin_patterns", len(origins.Patterns()),
		"transient_policy", string(transient),
		"terminal_policy", string(terminal),
	)

	return middleware.EdgeFilterConfig{
		Origins:         origins,
		Routes:          middleware.DefaultRouteMatcher,
		Refresher:       refresher,
		TransientPolicy: transient,
		TerminalPolicy:  terminal,
		Log:             s.log,
	}, nil
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware(edge middleware.EdgeFilterConfig) {
	// Order matters: Recovery should be first to catch all panics.
	// The rate limit runs before the edge filter so throttled API calls
	// never reach the identity provider.
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logging(s.log))
	s.router.Use(middleware.RateLimit(s.ctx, middleware.RateLimitConfig{
		Rate:     rate.Limit(s.cfg.RateLimit.RPS),
		Burst:    s.cfg.RateLimit.Burst,
		Prefixes: []string{"/v1/"},
	}, s.log))
	s.router.Use(middleware.EdgeFilter(edge))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		s.router.Static("/static", dir)
	}

	v1 := s.router.Group("/v1")
	{
		v1.GET("/session", s.sessionHandler.Me)

		v1.GET("/returns/options", s.returnsHandler.Options)
		v1.POST("/returns/submit", s.returnsHandler.Submit)
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "The requested resource was not found", middleware.GetRequestID(c))
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		s.cancel()
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)
	defer s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
