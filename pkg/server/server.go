// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server is the HTTP server hosting the API routes plus health, readiness
// and metrics endpoints.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	mu          sync.RWMutex
	ready       bool
}

// Option configures the server.
type Option func(*Server)

// WithName sets the server name reported on the root route.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the server version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithHandler adds API routes. They run behind the middleware chain.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		if s.config.Handlers == nil {
			s.config.Handlers = make(map[string]http.HandlerFunc, len(handlers))
		}
		for path, h := range handlers {
			s.config.Handlers[path] = h
		}
	}
}

// WithConfig replaces the configuration. Options applied after it still
// take effect.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// New creates a server from NewConfig and the given options.
func New(opts ...Option) *Server {
	s := &Server{config: NewConfig()}
	for _, opt := range opts {
		opt(s)
	}

	s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(s.config.Address, fmt.Sprintf("%d", s.config.Port)),
		Handler:           s.setupRoutes(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	return s
}

// SetReady marks the server as ready to serve traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports whether the server accepts traffic.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.SetReady(true)
	slog.Info("server listening", "address", ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server", "timeout", s.config.ShutdownTimeout.String())
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts the server and blocks until SIGINT or SIGTERM, or until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("server config",
		"name", s.config.Name,
		"version", s.config.Version,
		"address", s.httpServer.Addr,
		"rateLimit", float64(s.config.RateLimit),
		"rateLimitBurst", s.config.RateLimitBurst,
		"maxBodyBytes", s.config.MaxBodyBytes,
		"readTimeout", s.config.ReadTimeout.String(),
		"writeTimeout", s.config.WriteTimeout.String(),
		"shutdownTimeout", s.config.ShutdownTimeout.String(),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
