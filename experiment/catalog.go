package experiment

// This file contains the concrete sweeps.

import (
	"math"
	"strings"

	"github.com/perfgo/joinsweep/chart"
	"github.com/perfgo/joinsweep/metrics"
	"github.com/perfgo/joinsweep/model"
	"github.com/perfgo/joinsweep/results"
	"github.com/perfgo/joinsweep/sweep"
)

const (
	// tpch-1 runs pass no sizes, the dataset has fixed relation sizes
	tpchRSize = 150000
	tpchSSize = 1500000
)

// generalConfigs are the named base configurations of the general
// performance comparison.
var generalConfigs = map[string]model.RunConfig{
	"synth-1": model.RunConfig{}.
		WithName("synth-1").
		WithRate(1024, 1024).
		WithSize(200000, 200000).
		WithWindow(65536, 65536).
		WithBatch(1024, 1024).
		WithSkew(0).
		WithFKJoin(true).
		WithThreads(1),
	"synth-2": model.RunConfig{}.
		WithName("synth-2").
		WithRate(1024, 4096).
		WithSize(200000, 800000).
		WithWindow(65536, 65536).
		WithBatch(1024, 4096).
		WithSkew(0).
		WithFKJoin(true).
		WithThreads(1),
	"tpch-1": model.RunConfig{}.
		WithName("tpch-1").
		WithDataset("tpch-1").
		WithRate(1024, 1024).
		WithWindow(65536, 65536).
		WithBatch(1024, 4096).
		WithThreads(1),
}

var generalAlgorithms = []string{
	"SHJ", "SHJ-L0", "SHJ-L1", "SHJ-L2", "NFK-JOIN-L2", "SHJ-L3", "NFK-JOIN-L3", "SHJ-L4", "NLJ-L4",
	"FK-EPHI-L2", "FK-MERG-L2", "FK-SORT-L2", "FK-MERG-L3", "FK-SORT-L3", "FK-MERG-L4", "FK-SORT-L4",
}

// scalabilityConfig is the large synthetic workload used for thread scaling.
var scalabilityConfig = model.RunConfig{}.
	WithName("synth-1").
	WithRate(1000, 1000).
	WithSize(5000000, 5000000).
	WithWindow(4194304, 4194304).
	WithBatch(4096, 4096).
	WithSkew(0).
	WithFKJoin(true)

// isNonFK reports whether the algorithm joins without a foreign key relation.
func isNonFK(algorithm string) bool {
	return strings.HasPrefix(algorithm, "NFK-JOIN-")
}

func powersOfTwo(from, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = from << i
	}
	return out
}

// Catalog returns all experiments.
func Catalog() []*Experiment {
	return []*Experiment{
		generalPerformance(),
		batchSize(),
		windowSize(),
		windowBatchSize(),
		scalability(),
		phaseBreakdown(),
	}
}

func generalPerformance() *Experiment {
	return &Experiment{
		Name:        "general-performance",
		Description: "Throughput of every algorithm on the synthetic and TPC-H datasets",
		Header:      []string{"algorithm", "dataset", "inputTuples", "time"},
		Metrics:     []string{metrics.Time},
		Algorithms:  generalAlgorithms,
		Datasets:    []string{"synth-1", "synth-2", "tpch-1"},
		validDataset: func(name string) bool {
			_, ok := generalConfigs[name]
			return ok
		},
		build: func(p sweep.Point) model.RunConfig {
			return generalConfigs[p.String(DimDataset)].WithAlgorithm(p.String(DimAlgorithm))
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			sized := cfg
			if cfg.Dataset() == "tpch-1" {
				sized = cfg.WithSize(tpchRSize, tpchSSize)
			}
			return results.Row{cfg.Algorithm(), cfg.Name, sized.StreamedTuples(), agg[metrics.Time]}
		},
		Charts: []chart.Spec{
			{
				File:    "all-general-performance.png",
				Kind:    chart.Bars,
				XLabel:  "Algorithm",
				YLabel:  "Throughput [K rec / s]",
				X:       "algorithm",
				Y:       chart.Throughput("inputTuples", "time"),
				Series:  "dataset",
				Only:    generalAlgorithms,
				Palette: chart.Datasets,
			},
			{
				File:   "top-figure.png",
				Kind:   chart.Bars,
				XLabel: "Level of data privacy",
				YLabel: "Throughput [K rec / s]",
				X:      "algorithm",
				Y:      chart.Throughput("inputTuples", "time"),
				Only:   []string{"SHJ", "SHJ-L0", "SHJ-L1", "FK-EPHI-L2", "FK-MERG-L3", "FK-MERG-L4", "NLJ-L4"},
				Filter: func(r chart.Record) bool { return r.String("dataset") == "synth-1" },
			},
		},
	}
}

func batchSize() *Experiment {
	return &Experiment{
		Name:        "batch-size",
		Description: "Throughput over the micro-batch size at a fixed window",
		Header:      []string{"algorithm", "dataset", "window", "batch", "num-tuples", "time", "throughput"},
		Metrics:     []string{metrics.Time, metrics.Throughput},
		Algorithms:  []string{"FK-MERG-L4", "FK-MERG-L3", "FK-EPHI-L2", "FK-SORT-L4", "FK-SORT-L3"},
		Datasets:    []string{"synth-1"},
		axes: func() []sweep.Dimension {
			return []sweep.Dimension{sweep.Values(DimBatch, sweep.LogSpaced(100, 50000, 10)...)}
		},
		build: func(p sweep.Point) model.RunConfig {
			alg := p.String(DimAlgorithm)
			batch := p.Int(DimBatch)
			return model.RunConfig{}.
				WithAlgorithm(alg).
				WithDataset(p.String(DimDataset)).
				WithWindow(65536, 65536).
				WithBatch(batch, batch).
				WithFKJoin(!isNonFK(alg)).
				WithSize(200000, 200000)
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			return results.Row{
				cfg.Algorithm(), cfg.Dataset(), cfg.RWindow(), cfg.RBatch(),
				cfg.InputTuples(), agg[metrics.Time], agg[metrics.Throughput],
			}
		},
		Charts: []chart.Spec{
			{
				File:   "batch-size.png",
				Kind:   chart.Lines,
				XLabel: "Batch size [rec]",
				YLabel: "Throughput [K rec / s]",
				X:      "batch",
				Y:      chart.Throughput("num-tuples", "time"),
				Series: "algorithm",
				Split:  "dataset",
				LogX:   true,
				LogY:   true,
			},
		},
	}
}

func windowSize() *Experiment {
	return &Experiment{
		Name:        "window-size",
		Description: "Throughput over the window size with proportional batches",
		Header:      []string{"algorithm", "dataset", "window", "time", "input-tuples"},
		Metrics:     []string{metrics.Time, metrics.Throughput},
		Algorithms:  []string{"SHJ", "FK-MERG-L4", "FK-SORT-L4", "NLJ-L4"},
		Datasets:    []string{"synth-1"},
		axes: func() []sweep.Dimension {
			return []sweep.Dimension{sweep.Values(DimWindow, sweep.LogSpaced(128, 1048576, 14)...)}
		},
		build: func(p sweep.Point) model.RunConfig {
			alg := p.String(DimAlgorithm)
			window := p.Int(DimWindow)
			batch := 1024
			if window <= 1024 {
				batch = window / 2
			}
			cfg := model.RunConfig{}.
				WithAlgorithm(alg).
				WithDataset(p.String(DimDataset)).
				WithWindow(window, window).
				WithBatch(batch, batch).
				WithSize(window+4*batch, window+4*batch)
			if isNonFK(alg) {
				cfg = cfg.WithFKJoin(false)
			}
			return cfg
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			return results.Row{cfg.Algorithm(), cfg.Dataset(), cfg.RWindow(), agg[metrics.Time], cfg.StreamedTuples()}
		},
		Charts: []chart.Spec{
			{
				File:   "window-size.png",
				Kind:   chart.Lines,
				XLabel: "Window size [tuples]",
				YLabel: "Throughput [K rec / s]",
				X:      "window",
				Y:      chart.Throughput("input-tuples", "time"),
				Series: "algorithm",
				Split:  "dataset",
				LogX:   true,
				LogY:   true,
			},
		},
	}
}

func windowBatchSize() *Experiment {
	return &Experiment{
		Name:        "window-batch-size",
		Description: "Throughput over large windows with logarithmic batch sizes",
		Header:      []string{"algorithm", "dataset", "window", "batch", "time", "input-tuples"},
		Metrics:     []string{metrics.Time, metrics.Throughput},
		Algorithms:  []string{"FK-MERG-L3", "FK-SORT-L3"},
		Datasets:    []string{"synth-1"},
		axes: func() []sweep.Dimension {
			return []sweep.Dimension{sweep.Values(DimWindow, sweep.LogSpaced(2048, 33554432, 15)...)}
		},
		build: func(p sweep.Point) model.RunConfig {
			alg := p.String(DimAlgorithm)
			window := p.Int(DimWindow)
			batch := sweep.NextPowerOfTwo(int(math.Log2(float64(window))))
			cfg := model.RunConfig{}.
				WithAlgorithm(alg).
				WithDataset(p.String(DimDataset)).
				WithWindow(window, window).
				WithBatch(batch, batch).
				WithSize(window+10*batch, window+10*batch)
			if isNonFK(alg) {
				cfg = cfg.WithFKJoin(false)
			}
			return cfg
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			return results.Row{cfg.Algorithm(), cfg.Dataset(), cfg.RWindow(), cfg.RBatch(), agg[metrics.Time], cfg.StreamedTuples()}
		},
		Charts: []chart.Spec{
			{
				File:   "window-batch-size.png",
				Kind:   chart.Lines,
				Title:  "MERG vs. SORT for m=logN",
				XLabel: "Window size [tuples]",
				YLabel: "Throughput [K rec / s]",
				X:      "window",
				Y:      chart.Throughput("input-tuples", "time"),
				Series: "algorithm",
				Split:  "dataset",
				LogX:   true,
				LogY:   true,
			},
		},
	}
}

func scalability() *Experiment {
	return &Experiment{
		Name:        "scalability",
		Description: "Throughput speedup over the number of threads",
		Header:      []string{"algorithm", "threads", "totalInputTuples", "window", "time", "throughput"},
		Metrics:     []string{metrics.Time, metrics.Throughput},
		Algorithms:  []string{"FK-EPHI-L2"},
		axes: func() []sweep.Dimension {
			return []sweep.Dimension{sweep.Values(DimThreads, powersOfTwo(1, 7)...)}
		},
		build: func(p sweep.Point) model.RunConfig {
			return scalabilityConfig.
				WithAlgorithm(p.String(DimAlgorithm)).
				WithThreads(p.Int(DimThreads))
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			return results.Row{
				cfg.Algorithm(), cfg.Threads(), cfg.InputTuples(), cfg.RWindow(),
				agg[metrics.Time], agg[metrics.Throughput],
			}
		},
		Charts: []chart.Spec{
			{
				File:     "scalability.png",
				Kind:     chart.Lines,
				XLabel:   "threads",
				YLabel:   "Scalability",
				X:        "threads",
				Y:        chart.Column("throughput"),
				Series:   "algorithm",
				Relative: true,
			},
		},
	}
}

var phaseColumns = []string{
	metrics.LeftInitTime, metrics.LeftBuildTime, metrics.LeftProbeTime,
	metrics.RightInitTime, metrics.RightBuildTime, metrics.RightProbeTime,
}

func phaseBreakdown() *Experiment {
	return &Experiment{
		Name:        "phase-breakdown",
		Description: "Self-join execution time split into build and probe phases",
		Header:      append([]string{"algorithm", "size"}, phaseColumns...),
		Metrics:     phaseColumns,
		Algorithms:  []string{"SHJ_Graphos"},
		axes: func() []sweep.Dimension {
			return []sweep.Dimension{sweep.Values(DimSize, powersOfTwo(256, 11)...)}
		},
		build: func(p sweep.Point) model.RunConfig {
			size := p.Int(DimSize)
			return model.RunConfig{}.
				WithAlgorithm(p.String(DimAlgorithm)).
				WithSize(size, size).
				WithSelfJoin(true)
		},
		row: func(p sweep.Point, cfg model.RunConfig, agg map[string]float64) results.Row {
			row := results.Row{cfg.Algorithm(), cfg.RSize()}
			for _, col := range phaseColumns {
				row = append(row, agg[col])
			}
			return row
		},
		Charts: []chart.Spec{
			{
				File:    "phase-breakdown.png",
				Kind:    chart.StackedBars,
				Title:   "Self-join split to phases",
				XLabel:  "Input table size |R|",
				YLabel:  "Execution time [micros]",
				X:       "size",
				Stack:   phaseColumns,
				Split:   "algorithm",
				Palette: chart.Phases,
			},
		},
	}
}
