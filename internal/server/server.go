// Package server exposes the interview session service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/interview"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/metrics"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/session"
)

// Sessions is the session API served over HTTP.
type Sessions interface {
	Start(ctx context.Context, ownerID, role, difficulty string) (*session.Session, error)
	NextQuestion(ctx context.Context, sessionID, callerID string) (session.NextQuestionResult, error)
	SubmitAnswer(ctx context.Context, sessionID, callerID, answer string) (interview.Evaluation, error)
	End(ctx context.Context, sessionID, callerID string) (session.Summary, error)
	Get(ctx context.Context, sessionID, callerID string) (*session.Session, error)
	History(ctx context.Context, callerID string, limit int) (*session.History, error)
}

// Options configures a Server.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	Version     string
	// Checks are pinged by /readyz, keyed by name.
	Checks map[string]Pinger
	Logger *zap.Logger
}

// Server routes HTTP requests to the session service.
type Server struct {
	sessions Sessions
	checks   map[string]Pinger
	version  string
	logger   *zap.Logger
	router   chi.Router
}

// New builds the router.
func New(sessions Sessions, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Version == "" {
		opts.Version = "(devel)"
	}
	s := &Server{
		sessions: sessions,
		checks:   opts.Checks,
		version:  opts.Version,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(opts.Logger), middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/interview", func(r chi.Router) {
		r.Use(Authenticate(opts.JWTSecret))
		r.Post("/start", s.handleStart)
		r.Post("/question", s.handleQuestion)
		r.Post("/answer", s.handleAnswer)
		r.Post("/end", s.handleEnd)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/history", s.handleHistory)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPConfig holds listener settings for Run.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
