package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/services"
	"github.com/yigit/studentdesk/internal/bootstrap"
	"github.com/yigit/studentdesk/internal/config"
	"github.com/yigit/studentdesk/internal/db"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/logger"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	db     *db.PostgresDB
	auth   *services.AuthService
	logger zerolog.Logger
	http   *http.Server

	stopWorkers context.CancelFunc
	workers     sync.WaitGroup
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router, err := bootstrap.SetupRouter(cfg, deps, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	return &Server{
		config: cfg,
		router: router,
		db:     database,
		auth:   deps.AuthService,
		logger: lgr,
	}, nil
}

// startWorkers launches the session janitor and the session audit log.
func (s *Server) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopWorkers = cancel

	events, unsubscribe := s.auth.Subscribe()
	interval := helpers.ParseDuration(s.config.Session.CleanupInterval, time.Hour)

	s.workers.Add(2)
	go func() {
		defer s.workers.Done()
		runSessionJanitor(ctx, s.auth, interval, logger.Component("session-janitor"))
	}()
	go func() {
		defer s.workers.Done()
		auditSessions(events, logger.Component("session-audit"))
	}()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 10*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	s.startWorkers()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := helpers.ParseDuration(s.config.Server.ShutdownTimeout, 5*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shutdownError := false

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.stopWorkers != nil {
		s.stopWorkers()
		s.workers.Wait()
		s.stopWorkers = nil
	}

	if s.db != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.db.Close()
		s.db = nil
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
