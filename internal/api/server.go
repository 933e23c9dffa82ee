// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/veyra/billscope/internal/catalog"
	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/scan"
)

// Config bounds what the scan endpoint accepts.
type Config struct {
	// MaxUploadBytes caps the size of an uploaded dataset.
	MaxUploadBytes int64
	// AllowPaths permits scanning server-local files named in the
	// request body. Off by default: uploads only.
	AllowPaths bool
}

// DefaultConfig returns the standard configuration used when no
// overrides are provided.
func DefaultConfig() Config {
	return Config{MaxUploadBytes: 32 << 20}
}

// Merge overlays non-zero fields from the override onto the base.
func (c Config) Merge(override Config) Config {
	result := c
	if override.MaxUploadBytes > 0 {
		result.MaxUploadBytes = override.MaxUploadBytes
	}
	if override.AllowPaths {
		result.AllowPaths = true
	}
	return result
}

// Server exposes scanning and stored runs over HTTP.
type Server struct {
	router  chi.Router
	service *scan.Service
	catalog *catalog.Store
	cfg     Config
}

// NewServer builds the HTTP surface around a scan service.
func NewServer(service *scan.Service, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("scan service required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		catalog: service.Catalog,
		cfg:     configuration,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/scan", s.handleScan)
	s.router.Get("/v1/runs", s.handleRuns)
	s.router.Get("/v1/runs/{id}", s.handleRun)
	s.router.Get("/v1/logs", s.handleLogs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"catalog": s.catalog != nil,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
