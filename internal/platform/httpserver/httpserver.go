// Package httpserver wraps net/http with the timeouts and graceful shutdown
// behavior every deployment of this service wants.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const shutdownGrace = 10 * time.Second

// Server owns one listening *http.Server.
type Server struct {
	inner *http.Server
}

// New builds a server for addr with bounded read/write timeouts so a slow
// client cannot pin a connection forever.
func New(addr string, handler http.Handler) *Server {
	return &Server{inner: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Run listens until ctx is cancelled, then drains in-flight requests for up
// to shutdownGrace before returning. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.inner.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
