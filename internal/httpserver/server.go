package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/health-hub/internal/auth"
	"github.com/fdg312/health-hub/internal/blob"
	"github.com/fdg312/health-hub/internal/bundle/orchestrator"
	"github.com/fdg312/health-hub/internal/config"
	"github.com/fdg312/health-hub/internal/reports"
	"github.com/fdg312/health-hub/internal/storage"
	"github.com/fdg312/health-hub/internal/storage/memory"
	"github.com/fdg312/health-hub/internal/storage/postgres"
)

// Server wires the planning, export and auth handlers onto a ServeMux and
// owns the process-lifetime dependencies (storage, blob store).
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	authMiddleware *auth.Middleware
	orchestrator   *orchestrator.Orchestrator
	reportsService *reports.Service
}

// New builds a Server and registers its routes. It does not start
// listening — call Start for that.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.initOrchestrator()
	s.initReports()
	s.routes()
	return s
}

func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: mode=memory (no DATABASE_URL)")
		s.storage = memory.NewMemoryStorage()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL storage: failed to connect to postgres: %v", err)
	}
	log.Println("INFO storage: mode=postgres")
	s.storage = store
}

func (s *Server) initOrchestrator() {
	s.orchestrator = orchestrator.New(orchestrator.Config{
		MinSolutionDiversityPercent: s.config.Solver.MinSolutionDiversityPercent,
		MaxTimePerSolutionMs:        s.config.Solver.MaxTimePerSolutionMs,
		GreedySeed:                  time.Now().UnixNano(),
	})
}

func (s *Server) initReports() {
	blobCfg := s.config.Blob
	blobCfg.Mode = s.config.Blob.EffectiveReportsMode()

	blobStore, mode, err := blob.NewBlobStore(blobCfg, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: %v", err)
	}
	log.Printf("INFO reports: blob mode=%s", mode)

	s.reportsService = reports.NewService(
		s.storage,
		blobStore,
		s.config.Blob.S3.PresignTTLSeconds,
		s.config.Blob.S3.PublicBaseURL,
		s.config.Blob.S3.PreferPublicURL,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	authService := auth.NewService(s.config)
	authHandlers := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandlers.HandleDevAuth)

	s.mux.HandleFunc("POST /v1/bundles:plan", s.handlePlanBundles)

	reportHandlers := reports.NewHandlers(s.reportsService)
	s.mux.HandleFunc("POST /v1/reports", reportHandlers.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportHandlers.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportHandlers.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportHandlers.HandleDelete)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Start builds the middleware chain (outermost first: CORS → Rate Limit →
// Auth → Router) and blocks serving HTTP.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	var handler http.Handler = s.mux
	if s.authMiddleware != nil && s.config.AuthMode != "none" {
		if s.config.AuthRequired {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)

	log.Printf("Server listening on http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Planning API: http://localhost%s/v1/bundles:plan\n", addr)

	return http.ListenAndServe(addr, handler)
}

func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
