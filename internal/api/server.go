package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/api/handler"
	mw "github.com/edvin/equipreg/internal/api/middleware"
	"github.com/edvin/equipreg/internal/host"
)

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	runtime     *host.Runtime
	callers     mw.CallerLookup
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, runtime *host.Runtime, callers mw.CallerLookup) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		runtime:     runtime,
		callers:     callers,
		auditLogger: mw.NewAuditLogger(logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.callers))
		r.Use(s.auditLogger.Middleware)

		// Assets
		asset := handler.NewAsset(s.runtime)
		r.Post("/assets", asset.Register)
		r.Get("/assets/last-id", asset.LastID)
		r.Get("/assets/{id}", asset.Get)
		r.Post("/assets/{id}/transfer", asset.Transfer)

		// Issuer allow-list
		issuer := handler.NewIssuer(s.runtime)
		r.Get("/contract", issuer.ContractOwner)
		r.Post("/issuers", issuer.Add)
		r.Get("/issuers/{identity}", issuer.Get)

		// Certifications
		cert := handler.NewCertification(s.runtime)
		r.Put("/certifications", cert.Issue)
		r.Get("/certifications", cert.Get)
		r.Get("/certifications/status", cert.Status)
		r.Post("/certifications/revoke", cert.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.runtime.Ready(ctx); err != nil {
		checks["store"] = err.Error()
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if _, ok, err := s.runtime.ContractOwner(ctx); err != nil || !ok {
		checks["deployment"] = "not deployed"
		healthy = false
	} else {
		checks["deployment"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes pending audit entries.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
