// File path: internal/dataset/csv.go
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/veyra/billscope/internal/common"
)

// ReadCSV parses a CSV document with a header row into a Dataset. Rows
// with a field count different from the header are rejected by the
// underlying csv reader.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, row)
	}
	ds, err := buildDataset(header, rows)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("dataset: csv parsed", "columns", len(ds.Columns), "rows", ds.Len())
	return ds, nil
}

// ReadFile loads the CSV dataset at the given path.
func ReadFile(path string) (*Dataset, error) {
	if path == "" {
		return nil, errors.New("dataset path required")
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}
