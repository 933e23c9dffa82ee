// File path: internal/api/scan_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/detect"
	"github.com/veyra/billscope/internal/scan"
)

type scanPathRequest struct {
	Path string `json:"path"`
}

type scanResponse struct {
	RunID    string      `json:"run_id,omitempty"`
	Duration string      `json:"duration"`
	Report   interface{} `json:"report"`
}

// handleScan accepts a dataset as a multipart upload (field "dataset")
// or, when path scanning is enabled, as a JSON body naming a
// server-local file. Query parameters: lenient, advise.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()

	ds, source, err := s.loadScanDataset(r)
	if err != nil {
		logger.Warn("api: scan request rejected", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := scan.Options{
		Source:  source,
		Lenient: boolQuery(r, "lenient"),
		Advise:  boolQuery(r, "advise"),
	}
	result, err := s.service.Scan(r.Context(), ds, opts)
	if err != nil {
		var malformed *detect.MalformedValueError
		if errors.As(err, &malformed) {
			// Bad data in the upload, not a server fault.
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		logger.Error("api: scan failed", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		RunID:    result.RunID,
		Duration: result.Duration.String(),
		Report:   result.Document,
	})
}

func (s *Server) loadScanDataset(r *http.Request) (*dataset.Dataset, string, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "multipart/") {
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			return nil, "", fmt.Errorf("parse upload: %w", err)
		}
		file, header, err := r.FormFile("dataset")
		if err != nil {
			return nil, "", fmt.Errorf("dataset file field required: %w", err)
		}
		defer file.Close()
		ds, err := dataset.ReadCSV(file)
		if err != nil {
			return nil, "", err
		}
		return ds, header.Filename, nil
	}

	var req scanPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", fmt.Errorf("decode scan request: %w", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, "", fmt.Errorf("path required")
	}
	if !s.cfg.AllowPaths {
		return nil, "", fmt.Errorf("path scanning disabled; upload the dataset instead")
	}
	ds, err := dataset.ReadFile(req.Path)
	if err != nil {
		return nil, "", err
	}
	return ds, req.Path, nil
}

func boolQuery(r *http.Request, name string) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false
	}
	parsed, err := strconv.ParseBool(raw)
	return err == nil && parsed
}
