// Package server is the HTTP surface of the sections service: rendered
// pages, a small JSON API, the nonce-gated admin endpoints and the live
// reload websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/ucf/section/internal/admin"
	"github.com/ucf/section/internal/config"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/page"
	"github.com/ucf/section/internal/posttype"
	"github.com/ucf/section/internal/section"
)

// Deps are the components the server serves from.
type Deps struct {
	Pages    *section.Repository
	Sections *section.Repository
	Renderer *page.Renderer
	PostType posttype.Definition
	// Admin enables the admin routes when non-nil.
	Admin *admin.MetaSaver
	// Hub enables the live reload websocket when non-nil.
	Hub *Hub
}

// Server serves sections over HTTP.
type Server struct {
	config     *config.Config
	deps       Deps
	logger     logging.Logger
	httpServer *http.Server
	mutex      sync.Mutex
}

// New creates a Server.
func New(cfg *config.Config, deps Deps, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{config: cfg, deps: deps, logger: logger.WithComponent("server")}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /{slug}", s.handlePage)
	mux.HandleFunc("GET /section/{slug}", s.handleSection)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/types", s.handleTypes)

	if s.deps.Admin != nil {
		mux.HandleFunc("GET /admin/sections/{id}", s.handleAdminSection)
		mux.HandleFunc("POST /admin/sections/{id}/assets", s.handleAdminSave)
	}
	if s.deps.Hub != nil {
		mux.Handle("GET /ws", s.deps.Hub)
	}

	return Chain(mux,
		RequestID(),
		AccessLog(s.logger),
		Recover(s.logger),
	)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mutex.Lock()
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	srv := s.httpServer
	s.mutex.Unlock()

	if s.deps.Hub != nil {
		go s.deps.Hub.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "serving sections", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops the server, waiting up to the configured timeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	srv := s.httpServer
	s.mutex.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
