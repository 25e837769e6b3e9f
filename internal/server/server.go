package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teemow/tablero/internal/instrumentation"
	"github.com/teemow/tablero/internal/view"
)

const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
)

// Options wires the dashboard's collaborators. Auth, Providers, Renderer and
// Sessions are required.
type Options struct {
	Auth      Authenticator
	Providers Providers
	Renderer  view.Renderer
	Sessions  *SessionManager
	Health    *HealthChecker
	Metrics   *instrumentation.Metrics
	Logger    *slog.Logger

	// SecureCookies marks the session cookie Secure; set when deployed
	// behind HTTPS.
	SecureCookies bool

	// Now defaults to time.Now and decides which month the calendar shows.
	Now func() time.Time
}

// Server is the dashboard's HTTP front end.
type Server struct {
	auth          Authenticator
	providers     Providers
	renderer      view.Renderer
	sessions      *SessionManager
	health        *HealthChecker
	metrics       *instrumentation.Metrics
	logger        *slog.Logger
	secureCookies bool
	now           func() time.Time
	router        chi.Router
}

// New validates the options and builds the router.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Auth == nil:
		return nil, errors.New("authenticator is required")
	case opts.Providers == nil:
		return nil, errors.New("providers are required")
	case opts.Renderer == nil:
		return nil, errors.New("renderer is required")
	case opts.Sessions == nil:
		return nil, errors.New("session manager is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Health == nil {
		opts.Health = NewHealthChecker(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		auth:          opts.Auth,
		providers:     opts.Providers,
		renderer:      opts.Renderer,
		sessions:      opts.Sessions,
		health:        opts.Health,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		secureCookies: opts.SecureCookies,
		now:           opts.Now,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(recoverer(s.logger))
	r.Use(securityHeaders)

	s.health.Mount(r)

	r.Get("/", s.handleIndex)
	r.Get("/login", s.handleLogin)
	r.Get("/oauth2callback", s.handleCallback)
	r.Get("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireCredential)

		r.Get("/cuentas", s.handleAccount)
		r.Get("/correos", s.handleMail)
		r.Get("/classroom", s.handleCourses)
		r.Get("/calendario", s.handleCalendar)
		r.Post("/calendario", s.handleCalendar)
	})

	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within DefaultShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting dashboard", slog.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	s.health.SetShuttingDown()
	s.logger.Info("shutting down dashboard")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}
	return nil
}
