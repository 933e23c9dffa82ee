// File path: internal/dataset/dataset.go

// Package dataset loads tabular billing data into memory. The detection
// engine treats the result as read-only: column names are opaque strings
// and cell values are opaque scalars.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Value is a single cell: a string, a float64, or nil when the cell was
// empty in the source file.
type Value interface{}

// Record is one row keyed by column name. Every record of a dataset
// carries the same set of keys.
type Record map[string]Value

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered collection of records sharing one header set.
// It is never mutated after load.
type Dataset struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

var errNoHeader = errors.New("dataset has no header row")

func buildDataset(columns []string, rows [][]string) (*Dataset, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		trimmed := strings.TrimSpace(col)
		if trimmed == "" {
			return nil, errors.New("blank column name in header")
		}
		if _, dup := seen[trimmed]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", trimmed)
		}
		seen[trimmed] = struct{}{}
	}
	ds := &Dataset{Columns: make([]string, len(columns))}
	for i, col := range columns {
		ds.Columns[i] = strings.TrimSpace(col)
	}
	ds.Records = make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(ds.Columns))
		for i, col := range ds.Columns {
			rec[col] = coerce(row[i])
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// coerce maps a raw CSV cell to its scalar form: empty cells become nil
// and numeric-looking cells become float64, mirroring how a dataframe
// loader types a billing export.
func coerce(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return num
	}
	return trimmed
}
