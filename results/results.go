// Package results persists sweep results as headered comma-delimited tables.
//
// Values are written without quoting; they must not contain commas or
// newlines.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Row is one positional tuple of a results table.
type Row []any

// ColumnCountError is returned when a row does not match the header.
type ColumnCountError struct {
	Path string
	Want int
	Got  int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("row for %s has %d values, header declares %d columns", e.Path, e.Got, e.Want)
}

// Init removes any existing file at path and writes header as its only line.
func Init(path, header string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous results: %w", err)
	}

	if !strings.HasSuffix(header, "\n") {
		header += "\n"
	}
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	return nil
}

// Append writes row as one line at the end of path. The file is closed
// before Append returns.
func Append(path, row string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results: %w", err)
	}

	if !strings.HasSuffix(row, "\n") {
		row += "\n"
	}
	if _, err := f.WriteString(row); err != nil {
		f.Close()
		return fmt.Errorf("failed to append results row: %w", err)
	}
	return f.Close()
}

// Table is a results file with a declared column list.
type Table struct {
	Path    string
	Columns []string
	rows    int
}

// Create initializes the file at path with the given columns.
func Create(path string, columns ...string) (*Table, error) {
	if err := Init(path, strings.Join(columns, ",")); err != nil {
		return nil, err
	}
	return &Table{Path: path, Columns: columns}, nil
}

// Header returns the header line without trailing newline.
func (t *Table) Header() string {
	return strings.Join(t.Columns, ",")
}

// Rows returns the number of rows appended through t.
func (t *Table) Rows() int {
	return t.rows
}

// Append formats values and writes them as one row.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.Columns) {
		return &ColumnCountError{Path: t.Path, Want: len(t.Columns), Got: len(values)}
	}

	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = Format(v)
	}
	if err := Append(t.Path, strings.Join(fields, ",")); err != nil {
		return err
	}
	t.rows++
	return nil
}

// Format renders a single value: strings as-is, integers in base 10 and
// floats in their shortest round-trip form.
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Read parses the table at path. Every record has as many fields as the header.
func Read(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open results: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return header, records, nil
}

// Column returns the index of name in header, or -1.
func Column(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
