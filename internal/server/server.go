// Package server owns the HTTP listener and ties it to the fx lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/hola-starter/internal/config"
	applog "github.com/janisto/hola-starter/internal/platform/logging"
)

// Module provides *Server and binds it to the application lifecycle.
var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(Register),
)

// Server is an http.Server that remembers the address it actually bound.
type Server struct {
	srv *http.Server

	mu    sync.Mutex
	bound net.Addr
}

// New configures the HTTP server for cfg.Addr with conservative timeouts.
func New(cfg config.Config, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
	if errLog, err := zap.NewStdLogAt(applog.Logger().Named("http"), zapcore.WarnLevel); err == nil {
		srv.ErrorLog = errLog
	}
	return &Server{srv: srv}
}

// Listen binds the configured address. A port that is already in use is reported here,
// before any request is served.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()
	return ln, nil
}

// Serve blocks serving ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the bound address, or the configured one before Listen succeeds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil {
		return s.bound.String()
	}
	return s.srv.Addr
}

// Register starts the server with the application and stops it gracefully on shutdown.
// If serving fails after start, the application is asked to exit with code 1.
func Register(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := s.Listen(ctx)
			if err != nil {
				return err
			}
			applog.LogInfo(ctx, "server listening", zap.String("addr", s.Addr()))
			go func() {
				if err := s.Serve(ln); err != nil {
					applog.LogError(context.Background(), "serve failed", err, zap.String("addr", s.Addr()))
					if sdErr := shutdowner.Shutdown(fx.ExitCode(1)); sdErr != nil {
						applog.LogError(context.Background(), "shutdown request failed", sdErr)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			applog.LogInfo(ctx, "server shutting down", zap.String("addr", s.Addr()))
			if err := s.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			applog.LogInfo(ctx, "server exited")
			return nil
		},
	})
}
