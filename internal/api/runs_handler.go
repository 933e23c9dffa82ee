// File path: internal/api/runs_handler.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/veyra/billscope/internal/catalog"
	"github.com/veyra/billscope/internal/common"
)

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("catalog not configured"))
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	runs, err := s.catalog.ListRuns(r.Context(), limit)
	if err != nil {
		common.Logger().Error("api: list runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("catalog not configured"))
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("run id required"))
		return
	}
	run, doc, err := s.catalog.GetRun(r.Context(), id)
	if errors.Is(err, catalog.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		common.Logger().Error("api: get run failed", "run", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	counts, err := s.catalog.CategoryCounts(r.Context(), id)
	if err != nil {
		common.Logger().Warn("api: category counts unavailable", "run", id, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":        run,
		"categories": counts,
		"report":     doc,
	})
}
