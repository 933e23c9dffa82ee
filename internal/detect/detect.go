// File path: internal/detect/detect.go

// Package detect evaluates the fixed billing anomaly rules over a
// loaded dataset. Rules only run when every role they require resolved
// against the dataset headers; a rule whose roles are missing yields an
// empty category, never an error.
package detect

import (
	"fmt"

	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/schema"
)

// Category names one of the four anomaly buckets. The names are the
// stable schema contract of the emitted report.
type Category string

const (
	CategoryDuplicates       Category = "Duplicate Billings"
	CategoryHighLow          Category = "High or Low Billings"
	CategoryInvalidService   Category = "Invalid Service Types"
	CategorySuspendedBilling Category = "Billing for Suspended Accounts"
)

// Categories lists the anomaly buckets in report order.
func Categories() []Category {
	return []Category{
		CategoryDuplicates,
		CategoryHighLow,
		CategoryInvalidService,
		CategorySuspendedBilling,
	}
}

// Report maps each category to the records it flagged, in dataset
// order. Every category key is always present.
type Report map[Category][]dataset.Record

func emptyReport() Report {
	rep := make(Report, 4)
	for _, c := range Categories() {
		rep[c] = []dataset.Record{}
	}
	return rep
}

// Count returns how many records a category flagged.
func (r Report) Count(c Category) int {
	return len(r[c])
}

// Total returns the number of flagged records across all categories.
func (r Report) Total() int {
	total := 0
	for _, records := range r {
		total += len(records)
	}
	return total
}

// Config controls how the detector treats malformed cell values.
// Strict mode (the default) aborts the run the way the original
// scanner did; lenient mode drops the offending row from the rule
// under evaluation and keeps going.
type Config struct {
	Lenient bool
}

// Detector runs the four anomaly rules.
type Detector struct {
	cfg Config
}

// New constructs a Detector with the given configuration.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// MalformedValueError reports a cell whose type did not fit the rule
// evaluating it, e.g. a non-numeric billing amount.
type MalformedValueError struct {
	Category Category
	Row      int // zero-based record index
	Column   string
	Value    dataset.Value
	Want     string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("%s: row %d column %q: expected %s, got %v",
		e.Category, e.Row+1, e.Column, e.Want, e.Value)
}

// Detect evaluates all four rules against the dataset and merges the
// results. The dataset and mapping are never mutated; flagged records
// are independent copies of the originals.
func (d *Detector) Detect(ds *dataset.Dataset, m schema.Mapping) (Report, error) {
	logger := common.Logger()
	rep := emptyReport()
	if ds.Empty() {
		logger.Debug("detect: empty dataset, nothing to scan")
		return rep, nil
	}

	rules := []struct {
		category Category
		run      func(*dataset.Dataset, schema.Mapping) ([]dataset.Record, error)
	}{
		{CategoryDuplicates, d.duplicateBillings},
		{CategoryHighLow, d.highLowBillings},
		{CategoryInvalidService, d.invalidServiceTypes},
		{CategorySuspendedBilling, d.suspendedBillings},
	}
	for _, rule := range rules {
		flagged, err := rule.run(ds, m)
		if err != nil {
			return nil, err
		}
		if flagged != nil {
			rep[rule.category] = flagged
		}
		logger.Debug("detect: rule evaluated", "category", string(rule.category), "flagged", len(flagged))
	}
	return rep, nil
}

// malformed either builds the strict-mode error or, in lenient mode,
// returns nil so the caller can skip the row.
func (d *Detector) malformed(c Category, row int, column string, v dataset.Value, want string) error {
	if d.cfg.Lenient {
		return nil
	}
	return &MalformedValueError{Category: c, Row: row, Column: column, Value: v, Want: want}
}
