package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	apihttp "github.com/auroraos/backend/internal/api/http"
	"github.com/auroraos/backend/internal/api/middleware"
	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/infrastructure/config"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"github.com/auroraos/backend/internal/infrastructure/monitoring"
	"github.com/auroraos/backend/internal/infrastructure/resilience"
	"github.com/auroraos/backend/internal/infrastructure/tracing"
	"github.com/auroraos/backend/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	handler http.Handler
	router  *storage.Router
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newServer(cfg, logger, afero.NewOsFs())
}

// newServer wires the server around logger and the filesystem backing the local bridge
func newServer(cfg *config.Config, logger *logging.Logger, fs afero.Fs) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Initializing Aurora storage server",
		zap.String("port", cfg.Server.Port),
		zap.String("bridge", cfg.Storage.Bridge),
		zap.Int64("threshold", cfg.Storage.Threshold),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("aurora-storage", logger)

	b := newBridge(cfg.Storage, fs, logger, metrics)
	router := storage.New(b, storage.Options{
		Threshold:     cfg.Storage.Threshold,
		ChunkSize:     cfg.Storage.ChunkSize,
		SessionBudget: cfg.Storage.SessionBudget,
		Logger:        logger,
		Metrics:       metrics,
	})
	logger.Info("Storage router ready", zap.Bool("native", router.CapabilityCheck()))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(tracing.HTTPMiddleware(tracer))
	engine.Use(monitoring.Middleware(metrics))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		engine.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(router, apihttp.UploadLimits{
		MaxBytes:    cfg.Upload.MaxBytes,
		MemoryBytes: cfg.Upload.MemoryBytes,
	}, logger)
	handlers.Register(engine)

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		handler: gzhttp.GzipHandler(engine),
		router:  router,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// newBridge builds the bridge selected by cfg.Bridge
func newBridge(cfg config.StorageConfig, fs afero.Fs, logger *logging.Logger, metrics *monitoring.Metrics) bridge.Bridge {
	switch cfg.Bridge {
	case config.BridgeRemote:
		log := logger.Named("bridge")
		rb := bridge.NewRemoteBridge(bridge.RemoteConfig{
			BaseURL:  cfg.BridgeURL,
			FileHost: cfg.FileHost,
			Timeout:  cfg.BridgeTimeout,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("Bridge circuit changed state",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
				metrics.SetBreakerState(name, int(to))
			},
		})
		metrics.SetBreakerState(rb.Breaker().Name(), int(rb.Breaker().State()))
		logger.Info("Using remote bridge", zap.String("url", cfg.BridgeURL))
		return rb
	case config.BridgeNone:
		logger.Info("Native storage disabled, files stay in session memory")
		return bridge.Disabled{}
	default:
		logger.Info("Using local bridge", zap.String("data_dir", cfg.DataDir))
		return bridge.NewLocalBridge(fs, bridge.LocalConfig{
			DataDir:  cfg.DataDir,
			FileHost: cfg.FileHost,
		})
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the storage router
func (s *Server) Router() *storage.Router {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// Close releases the session and flushes telemetry
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	err := s.router.Close()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
