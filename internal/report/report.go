// File path: internal/report/report.go

// Package report assembles the JSON document emitted after a scan. The
// four category names under "anomalies" are the only schema contract
// the scanner guarantees; everything else is presentation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/detect"
)

// DefaultSummary is the fixed summary line carried by every report.
const DefaultSummary = "The Telecom Billing Anomalies Detection system is designed to identify inconsistencies and errors in billing data."

// Document is the serializable result of one scan. Criteria and
// Narrative are advisory text produced by the LLM side-channel; they
// are displayed alongside the findings and never feed back into
// detection.
type Document struct {
	Summary     string        `json:"summary"`
	Anomalies   detect.Report `json:"anomalies"`
	Criteria    string        `json:"criteria,omitempty"`
	Narrative   string        `json:"narrative,omitempty"`
	Source      string        `json:"source,omitempty"`
	Rows        int           `json:"rows"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Options carries the optional fields attached to a new document.
type Options struct {
	Source    string
	Criteria  string
	Narrative string
}

// New builds a document around a finished anomaly report.
func New(rep detect.Report, rows int, opts Options) *Document {
	return &Document{
		Summary:     DefaultSummary,
		Anomalies:   rep,
		Criteria:    opts.Criteria,
		Narrative:   opts.Narrative,
		Source:      opts.Source,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}
}

// Counts returns the flagged-record count per category, keyed by the
// stable category names.
func (d *Document) Counts() map[string]int {
	counts := make(map[string]int, 4)
	for _, c := range detect.Categories() {
		counts[string(c)] = d.Anomalies.Count(c)
	}
	return counts
}

// WriteJSON streams the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes the document to the given path.
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := d.WriteJSON(f); err != nil {
		return err
	}
	common.Logger().Info("report: written", "path", path, "flagged", d.Anomalies.Total())
	return nil
}
