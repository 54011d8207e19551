package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/dmitrymomot/fieldrules/pkg/logger"
)

// Server runs an http.Handler until its context is cancelled, then shuts
// down gracefully.
type Server struct {
	cfg     Config
	handler http.Handler
	logger  *slog.Logger
}

// New returns a Server for handler. A nil logger discards output.
func New(cfg Config, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		cfg:     cfg.withDefaults(),
		handler: handler,
		logger:  log.With(logger.Component("server")),
	}
}

// Serve accepts connections on ln and blocks until ctx is cancelled or the
// listener fails. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.handler == nil {
		_ = ln.Close()
		return ErrNilHandler
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.InfoContext(ctx, "server started", slog.String("addr", ln.Addr().String()))

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(ErrShutdown, err)
		}
		<-errCh
		s.logger.InfoContext(ctx, "server stopped")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = errors.Join(ErrStart, err)
		}
	}
	return runErr
}

// Run listens on the configured address and serves until ctx is cancelled.
// The returned function is suitable for errgroup.
func (s *Server) Run(ctx context.Context) func() error {
	return func() error {
		ln, err := (&net.ListenConfig{}).Listen(context.WithoutCancel(ctx), "tcp", s.cfg.Addr)
		if err != nil {
			return errors.Join(ErrStart, err)
		}
		return s.Serve(ctx, ln)
	}
}
