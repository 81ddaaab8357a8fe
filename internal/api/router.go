// Package api exposes the analysis service over HTTP for the dashboards.
package api

import (
	"io"
	"net/http"

	"github.com/bizlens/bizcalc/internal/service"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TenantHeader selects the tenant of a request; the server default applies when absent.
const TenantHeader = "X-Tenant-ID"

// Server holds the HTTP handlers.
type Server struct {
	svc           *service.AnalysisService
	defaultTenant string
	logger        *zap.Logger
}

// NewServer creates the HTTP surface over svc.
func NewServer(svc *service.AnalysisService, defaultTenant string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, defaultTenant: defaultTenant, logger: logger}
}

// NewRouter registers every route.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/analyses/run", s.runAnalysis).Methods("POST")
	v1.HandleFunc("/analyses", s.listAnalyses).Methods("GET")
	v1.HandleFunc("/analyses/{id}", s.getAnalysis).Methods("GET")
	v1.HandleFunc("/analyses/{id}/approve", s.approveAnalysis).Methods("POST")
	v1.HandleFunc("/channels/evaluate", s.evaluateChannels).Methods("POST")

	return r
}

// Handler wraps the router with access logging and CORS for browser clients.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	logged := handlers.LoggingHandler(accessLog, s.NewRouter())
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", TenantHeader}),
	)(logged)
}
