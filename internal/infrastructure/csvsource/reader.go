package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoHeader is returned for an empty input.
var ErrNoHeader = errors.New("csv input has no header row")

// ReadFile reads every data row of the CSV file at path. See Read.
func ReadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a headered CSV stream into one untrusted record per data row,
// keyed by the trimmed header names. Cells stay strings; type coercion is left
// to validation. Blank lines are skipped and short rows leave trailing keys
// absent.
func Read(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []map[string]any
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(records)+1, err)
		}

		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}

	return records, nil
}
