// File path: internal/scan/scan.go

// Package scan wires the column resolver, rule engine, advisor, and
// catalog into the single operation the CLI and the API both run.
package scan

import (
	"context"
	"time"

	"github.com/veyra/billscope/internal/advisor"
	"github.com/veyra/billscope/internal/catalog"
	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/detect"
	"github.com/veyra/billscope/internal/report"
	"github.com/veyra/billscope/internal/schema"
)

// Options selects per-scan behavior.
type Options struct {
	Source  string
	Lenient bool
	Advise  bool
}

// Result bundles the produced document with its catalog id, when the
// run was persisted.
type Result struct {
	Document *report.Document
	RunID    string
	Duration time.Duration
}

// Service runs scans. Catalog and Advisor are optional; a nil catalog
// skips persistence and a nil (or disabled) advisor skips advice.
type Service struct {
	Catalog *catalog.Store
	Advisor *advisor.Advisor
}

// Scan resolves the dataset's columns, evaluates the anomaly rules,
// attaches advisory text when requested, and records the run.
func (s *Service) Scan(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	logger := common.Logger()
	start := time.Now()

	mapping := schema.MapColumns(ds.Columns)
	logger.Debug("scan: columns resolved", "resolved", len(mapping), "columns", len(ds.Columns))

	detector := detect.New(detect.Config{Lenient: opts.Lenient})
	rep, err := detector.Detect(ds, mapping)
	if err != nil {
		return nil, err
	}

	doc := report.New(rep, ds.Len(), report.Options{Source: opts.Source})
	if opts.Advise && s.Advisor.Enabled() {
		advice, err := s.Advisor.Advise(ctx, ds.Columns, doc.Counts())
		if err != nil {
			// Advisory text is a side channel; the scan stands on its own.
			logger.Warn("scan: advisory generation failed", "error", err)
		} else {
			doc.Criteria = advice.Criteria
			doc.Narrative = advice.Narrative
		}
	}

	result := &Result{Document: doc, Duration: time.Since(start)}
	if s.Catalog != nil {
		id, err := s.Catalog.RecordRun(ctx, doc, opts.Lenient, result.Duration)
		if err != nil {
			logger.Warn("scan: run not persisted", "error", err)
		} else {
			result.RunID = id
		}
	}
	logger.Info("scan: complete",
		"rows", ds.Len(), "flagged", rep.Total(), "duration", result.Duration.String())
	return result, nil
}
