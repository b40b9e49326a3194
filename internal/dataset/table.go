package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"precision/internal/metric"
)

// ErrNoHeader is returned for input without a header line.
var ErrNoHeader = errors.New("dataset: missing header")

// Table is the input dataset: one column per attribute, one row per record.
type Table struct {
	Header []string
	Rows   [][]string
}

// Shape returns the record and attribute count of the table.
func (t *Table) Shape() metric.Shape {
	return metric.Shape{Records: len(t.Rows), Attributes: len(t.Header)}
}

// ReadCSV reads a table from CSV. The first line is the header; every row must
// have as many fields as the header.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// LoadCSV reads a table from a CSV file.
func LoadCSV(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f, delimiter)
}
