// Package chart renders finished results tables as line and bar charts.
//
// Charts only read the column schema written by the results package; the
// output format follows the file extension (png, svg, pdf, eps, jpg).
package chart

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/perfgo/joinsweep/results"
)

// ErrNoData is returned when no record survives filtering.
var ErrNoData = errors.New("no data to plot")

// Record is one row of a results table addressed by column name.
type Record struct {
	header []string
	fields []string
}

// NewRecord binds fields to header.
func NewRecord(header, fields []string) Record {
	return Record{header: header, fields: fields}
}

// String returns the raw value of col, or "" when the column is missing.
func (r Record) String(col string) string {
	i := results.Column(r.header, col)
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Float parses the value of col.
func (r Record) Float(col string) (float64, error) {
	i := results.Column(r.header, col)
	if i < 0 || i >= len(r.fields) {
		return 0, fmt.Errorf("column %s not found", col)
	}
	v, err := strconv.ParseFloat(r.fields[i], 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

// Value derives a number from a record.
type Value func(r Record) (float64, error)

// Column reads a numeric column as is.
func Column(name string) Value {
	return func(r Record) (float64, error) {
		return r.Float(name)
	}
}

// Throughput derives thousands of records per second from a tuple count and
// a time in microseconds.
func Throughput(tuples, micros string) Value {
	return func(r Record) (float64, error) {
		n, err := r.Float(tuples)
		if err != nil {
			return 0, err
		}
		t, err := r.Float(micros)
		if err != nil {
			return 0, err
		}
		if t == 0 {
			return 0, fmt.Errorf("column %s is zero", micros)
		}
		return 1000 * n / t, nil
	}
}

// Kind selects the chart type.
type Kind int

const (
	Lines Kind = iota
	Bars
	StackedBars
)

func (k Kind) String() string {
	switch k {
	case Bars:
		return "bars"
	case StackedBars:
		return "stacked-bars"
	default:
		return "lines"
	}
}

// Spec describes one chart of a results table.
type Spec struct {
	// File name of the image, relative to the output directory
	File string
	Kind Kind

	Title  string
	XLabel string
	YLabel string

	// X is numeric for line charts and categorical for bar charts
	X string
	// Y is ignored for stacked bars
	Y Value
	// Series splits records into lines, or into bar groups
	Series string
	// Stack lists the numeric columns stacked per X category
	Stack []string

	// Only restricts and orders the series (lines) or categories (bars)
	Only   []string
	Filter func(r Record) bool
	// Split draws one chart per distinct value of this column, see Expand
	Split string

	LogX bool
	LogY bool
	// Relative divides every line by its first point
	Relative bool

	// Palette overrides the renderer palette
	Palette Palette
}

// records binds and filters the rows of a table.
func (s Spec) records(header []string, rows [][]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := NewRecord(header, row)
		if s.Filter != nil && !s.Filter(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// distinct returns the values of col in order of appearance.
func distinct(recs []Record, col string) []string {
	seen := map[string]bool{}
	var order []string
	for _, r := range recs {
		v := r.String(col)
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
	}
	return order
}

// groups returns the distinct values of col in order of appearance, or the
// values of Only that occur.
func (s Spec) groups(recs []Record, col string) []string {
	order := distinct(recs, col)
	if len(s.Only) == 0 {
		return order
	}

	seen := make(map[string]bool, len(order))
	for _, v := range order {
		seen[v] = true
	}
	var restricted []string
	for _, v := range s.Only {
		if seen[v] {
			restricted = append(restricted, v)
		}
	}
	return restricted
}

// Expand returns the charts drawn from a table. Without Split, or when the
// Split column holds a single value, that is s itself. Otherwise every value
// gets its own chart, with the value appended to the file name and title.
func (s Spec) Expand(header []string, rows [][]string) []Spec {
	if s.Split == "" {
		return []Spec{s}
	}
	values := distinct(s.records(header, rows), s.Split)
	if len(values) <= 1 {
		return []Spec{s}
	}

	ext := filepath.Ext(s.File)
	base := strings.TrimSuffix(s.File, ext)
	out := make([]Spec, 0, len(values))
	for _, v := range values {
		split := s
		split.Split = ""
		split.File = base + "-" + fileSafe(v) + ext
		split.Title = v
		if s.Title != "" {
			split.Title = s.Title + " (" + v + ")"
		}

		col, value, filter := s.Split, v, s.Filter
		split.Filter = func(r Record) bool {
			return r.String(col) == value && (filter == nil || filter(r))
		}
		out = append(out, split)
	}
	return out
}

func fileSafe(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, v)
}
