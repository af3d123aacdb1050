// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the ops HTTP router, middleware chain, and the
read-only refdata handlers into a runnable [http.Server] for cmd/apiimport.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/apiimport are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/gamecatalog/internal/catalog/refdata"
	"github.com/taibuivan/gamecatalog/internal/platform/config"
	"github.com/taibuivan/gamecatalog/internal/platform/constants"
	"github.com/taibuivan/gamecatalog/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in cmd/apiimport/main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the ops server's handler sets.
type Handlers struct {
	// Liveness is the /healthz handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /readyz handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Refdata exposes read-only Platform/Currency/Country/Jurisdiction lookups.
	Refdata *refdata.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers the ops routes. There is no Authenticate/CORS middleware: this
// server has no write API and no browser clients.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	rte := chi.NewRouter()

	// # Middleware Chain
	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.RateLimit(ctx))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	rte.Get("/healthz", h.Liveness)
	rte.Get("/readyz", h.Readiness)

	// # Reference Data
	rte.Mount("/refdata", h.Refdata.Routes())

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("ops server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
