package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/alumniconnect/platform/internal/bootstrap"
	"github.com/alumniconnect/platform/internal/config"
	"github.com/alumniconnect/platform/internal/pkg/logger"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/alumniconnect/platform/internal/pkg/scheduler"
	"github.com/alumniconnect/platform/internal/pkg/telemetry"
)

// Server holds the state for the HTTP server.
type Server struct {
	config        *config.Config
	handler       http.Handler
	closeStore    func()
	scheduler     *scheduler.Scheduler
	traceShutdown telemetry.ShutdownFunc
	logger        zerolog.Logger
	http          *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context, configPath, version string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	traceShutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("failed to setup tracing: %w", err)
	}

	store, closeStore, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, fmt.Errorf("failed to setup store: %w", err)
	}
	metrics.Init(version, cfg.Database.Driver)

	deps := bootstrap.BuildDependencies(cfg, store, lgr, version)
	router, err := bootstrap.SetupRouter(cfg, deps)
	if err != nil {
		closeStore()
		_ = traceShutdown(ctx)
		return nil, err
	}

	s := &Server{
		config:        cfg,
		handler:       withCORS(cfg.CORS, router),
		closeStore:    closeStore,
		traceShutdown: traceShutdown,
		logger:        lgr,
	}

	if cfg.Scheduler.Enabled {
		s.scheduler = scheduler.New(logger.Component("scheduler"), config.Duration(cfg.Scheduler.JobTimeout))
		err := s.scheduler.Register("lifecycle", cfg.Scheduler.LifecycleSpec, func(ctx context.Context) error {
			_, err := deps.LifecycleService.Run(ctx)
			return err
		})
		if err != nil {
			closeStore()
			_ = traceShutdown(ctx)
			return nil, err
		}
	}

	return s, nil
}

func withCORS(cfg config.CORSConfig, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: cfg.AllowCredentials,
	}).Handler(h)
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.handler,
		ReadTimeout:  config.Duration(s.config.Server.ReadTimeout),
		WriteTimeout: config.Duration(s.config.Server.WriteTimeout),
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for errors starting the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	if s.scheduler != nil {
		s.scheduler.Start()
		s.logger.Info().Str("spec", s.config.Scheduler.LifecycleSpec).Msg("Lifecycle scheduler started")
	}

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive either a server error or an OS signal
	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	if err := s.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.Duration(s.config.Server.ShutdownTimeout))
	defer cancel()

	var errs []error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			errs = append(errs, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.scheduler != nil {
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduler did not stop in time")
			errs = append(errs, err)
		}
	}

	s.logger.Info().Msg("Closing store...")
	s.closeStore()

	if err := s.traceShutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Tracer shutdown error")
		errs = append(errs, err)
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(errs...)
}
