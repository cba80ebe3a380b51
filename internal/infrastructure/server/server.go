package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/AgentOS/browser/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/browser/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/browser/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/store"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	sessionManager *session.Manager
	store          store.Store
	logger         *logging.Logger
	config         *config.Config
	metrics        *monitoring.Metrics
	tracer         *tracing.Tracer
	lastRestore    session.RestoreResult
}

// NewServer creates a new server instance. The persisted session is
// restored before the server is returned, so nothing is served from the
// default state by accident.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize logger
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing browser session server",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("storage_path", cfg.Storage.Path),
	)

	// Each server owns its registry so several can coexist in one process
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)
	logger.Info("Performance monitoring initialized")

	tracer := tracing.New("browser", logger)

	engines, err := search.LoadOrDefault(cfg.Session.SearchEnginesFile)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load search engines: %w", err)
	}
	logger.Info("Search engines loaded", zap.Int("count", engines.Len()))

	st, err := store.New(store.Config{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		Compress: cfg.Storage.Compress,
	})
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sessionManager := session.NewManager(st, session.Options{
		Key:      cfg.Storage.Key,
		Window:   cfg.Session.SaveWindow,
		Delay:    cfg.Session.SaveDelay,
		Registry: engines,
		Logger:   logger,
		Metrics:  metrics,
		Tracer:   tracer,
	})
	restore := sessionManager.Restore(context.Background())

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	}
	router.Use(middleware.CORS(corsConfig))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Register routes
	api.NewHandlers(sessionManager).Register(router)
	router.GET("/stream", ws.NewHandler(sessionManager, corsConfig, logger, metrics).HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully",
		zap.Bool("restored", restore.Restored),
		zap.Int("tabs", restore.Tabs),
	)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		sessionManager: sessionManager,
		store:          st,
		logger:         logger,
		config:         cfg,
		metrics:        metrics,
		tracer:         tracer,
		lastRestore:    restore,
	}, nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session returns the session the server drives
func (s *Server) Session() *session.Manager {
	return s.sessionManager
}

// RestoreResult reports what startup restore did
func (s *Server) RestoreResult() session.RestoreResult {
	return s.lastRestore
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops accepting requests, writes the final snapshot and closes the
// store
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}

	if err := s.sessionManager.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to save session: %w", err))
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	} else {
		s.logger.Info("Closed store")
	}

	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
