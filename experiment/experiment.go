// Package experiment defines the benchmark sweeps of the join application and
// the charts drawn from their results.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/perfgo/joinsweep/chart"
	"github.com/perfgo/joinsweep/model"
	"github.com/perfgo/joinsweep/results"
	"github.com/perfgo/joinsweep/sweep"
)

// Dimension names shared by the catalog.
const (
	DimAlgorithm = "algorithm"
	DimDataset   = "dataset"
	DimBatch     = "batch"
	DimWindow    = "window"
	DimThreads   = "threads"
	DimSize      = "size"
)

// Experiment is one sweep of the catalog.
type Experiment struct {
	Name        string
	Description string
	Header      []string
	Metrics     []string

	// Defaults of the algorithm and dataset dimensions. A nil Datasets means
	// the experiment has no dataset dimension.
	Algorithms []string
	Datasets   []string

	// validDataset rejects dataset names the experiment cannot build
	validDataset func(name string) bool
	// axes returns the dimensions following algorithm and dataset
	axes  func() []sweep.Dimension
	build func(p sweep.Point) model.RunConfig
	row   func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row

	Charts []chart.Spec
}

// Options override the default dimensions of an experiment.
type Options struct {
	Algorithms []string
	Datasets   []string
}

// Dimensions returns the sweep axes, algorithm first.
func (e *Experiment) Dimensions(opts Options) ([]sweep.Dimension, error) {
	algorithms := e.Algorithms
	if len(opts.Algorithms) > 0 {
		algorithms = opts.Algorithms
	}
	dims := []sweep.Dimension{sweep.Values(DimAlgorithm, algorithms...)}

	if len(opts.Datasets) > 0 && e.Datasets == nil {
		return nil, fmt.Errorf("experiment %s has no dataset dimension", e.Name)
	}
	if e.Datasets != nil {
		datasets := e.Datasets
		if len(opts.Datasets) > 0 {
			datasets = opts.Datasets
		}
		for _, d := range datasets {
			if e.validDataset != nil && !e.validDataset(d) {
				return nil, fmt.Errorf("experiment %s does not know dataset %s", e.Name, d)
			}
		}
		dims = append(dims, sweep.Values(DimDataset, datasets...))
	}

	if e.axes != nil {
		dims = append(dims, e.axes()...)
	}
	return dims, nil
}

// Plan returns the sweep plan writing into table.
func (e *Experiment) Plan(table *results.Table, opts Options) (sweep.Plan, error) {
	dims, err := e.Dimensions(opts)
	if err != nil {
		return sweep.Plan{}, err
	}
	return sweep.Plan{
		Name:       e.Name,
		Table:      table,
		Metrics:    e.Metrics,
		Dimensions: dims,
		Build:      e.build,
		Row:        e.row,
	}, nil
}

// Configs returns the configuration of every sweep point in execution order.
func (e *Experiment) Configs(opts Options) ([]model.RunConfig, error) {
	dims, err := e.Dimensions(opts)
	if err != nil {
		return nil, err
	}
	points := sweep.Product(dims...)
	cfgs := make([]model.RunConfig, len(points))
	for i, p := range points {
		cfgs[i] = e.build(p)
	}
	return cfgs, nil
}

// ResultsPath returns the results table of the experiment inside dir.
func (e *Experiment) ResultsPath(dir string) string {
	return filepath.Join(dir, e.Name+".csv")
}

// CreateTable initializes the results table of the experiment inside dir.
func (e *Experiment) CreateTable(dir string) (*results.Table, error) {
	return results.Create(e.ResultsPath(dir), e.Header...)
}

// Plot renders every chart of the experiment from its results table in dir
// and returns the written files.
func (e *Experiment) Plot(r *chart.Renderer, dir string) ([]string, error) {
	path := e.ResultsPath(dir)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no results for %s: %w", e.Name, err)
	}

	header, rows, err := results.Read(path)
	if err != nil {
		return nil, err
	}
	if strings.Join(header, ",") != strings.Join(e.Header, ",") {
		return nil, fmt.Errorf("results %s have header %q, expected %q", path, strings.Join(header, ","), strings.Join(e.Header, ","))
	}

	var files []string
	for _, chartSpec := range e.Charts {
		for _, spec := range chartSpec.Expand(header, rows) {
			out := filepath.Join(dir, spec.File)
			if err := r.Render(spec, header, rows, out); err != nil {
				return files, fmt.Errorf("failed to render %s: %w", spec.File, err)
			}
			files = append(files, out)
		}
	}
	return files, nil
}

// Lookup returns the experiment with the given name.
func Lookup(name string) (*Experiment, error) {
	for _, e := range Catalog() {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown experiment %q, known experiments: %s", name, strings.Join(Names(), ", "))
}

// Names returns the experiment names in lexical order.
func Names() []string {
	var names []string
	for _, e := range Catalog() {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
