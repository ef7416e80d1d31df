package experiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perfgo/joinsweep/chart"
	"github.com/perfgo/joinsweep/metrics"
	"github.com/perfgo/joinsweep/model"
	"github.com/perfgo/joinsweep/results"
	"github.com/perfgo/joinsweep/sweep"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, name string) *Experiment {
	t.Helper()
	e, err := Lookup(name)
	require.NoError(t, err)
	return e
}

func TestCatalog_Names(t *testing.T) {
	require.Equal(t, []string{
		"batch-size",
		"general-performance",
		"phase-breakdown",
		"scalability",
		"window-batch-size",
		"window-size",
	}, Names())

	_, err := Lookup("does-not-exist")
	require.Error(t, err)
}

func TestCatalog_RowsMatchHeader(t *testing.T) {
	agg := map[string]float64{}
	for _, m := range []string{
		metrics.Time, metrics.Throughput,
		metrics.LeftInitTime, metrics.LeftBuildTime, metrics.LeftProbeTime,
		metrics.RightInitTime, metrics.RightBuildTime, metrics.RightProbeTime,
	} {
		agg[m] = 1
	}

	for _, e := range Catalog() {
		t.Run(e.Name, func(t *testing.T) {
			dims, err := e.Dimensions(Options{})
			require.NoError(t, err)
			points := sweep.Product(dims...)
			require.NotEmpty(t, points)

			for _, p := range points {
				cfg := e.build(p)
				require.Len(t, e.row(p, cfg, agg), len(e.Header))
			}
			for _, m := range e.Metrics {
				require.Contains(t, agg, m)
			}
			require.NotEmpty(t, e.Charts)
		})
	}
}

func TestGeneralPerformance(t *testing.T) {
	e := lookup(t, "general-performance")

	cfgs, err := e.Configs(Options{Algorithms: []string{"FK-SORT-L4"}})
	require.NoError(t, err)
	require.Len(t, cfgs, 3)

	require.Equal(t,
		"./app --alg FK-SORT-L4 --r-batch 1024 --s-batch 1024 --r-rate 1024 --s-rate 1024 --r-size 200000 --s-size 200000 --r-window 65536 --s-window 65536 --skew 0 --fk-join --nthreads 1",
		cfgs[0].Command(""))
	require.Equal(t,
		"./app --alg FK-SORT-L4 --dataset tpch-1 --r-batch 1024 --s-batch 4096 --r-rate 1024 --s-rate 1024 --r-window 65536 --s-window 65536 --nthreads 1",
		cfgs[2].Command(""))

	p := sweep.Product(sweep.Values(DimAlgorithm, "FK-SORT-L4"), sweep.Values(DimDataset, "tpch-1"))[0]
	row := e.row(p, cfgs[2], map[string]float64{metrics.Time: 130})
	require.Equal(t, results.Row{"FK-SORT-L4", "tpch-1", 150000 + 1500000 - 2*65536, 130.0}, row)
	require.Zero(t, cfgs[2].RSize())

	row = e.row(p, cfgs[0], map[string]float64{metrics.Time: 2.5})
	require.Equal(t, results.Row{"FK-SORT-L4", "synth-1", 400000 - 2*65536, 2.5}, row)
}

func TestGeneralPerformance_UnknownDataset(t *testing.T) {
	_, err := lookup(t, "general-performance").Configs(Options{Datasets: []string{"synth-9"}})
	require.Error(t, err)
}

func TestBatchSize(t *testing.T) {
	e := lookup(t, "batch-size")
	cfgs, err := e.Configs(Options{Algorithms: []string{"NFK-JOIN-L3", "FK-MERG-L3"}})
	require.NoError(t, err)
	require.Len(t, cfgs, 20)

	require.False(t, cfgs[0].FKJoin())
	require.Equal(t, 128, cfgs[0].RBatch())
	require.Equal(t, 65536, cfgs[9].SBatch())
	require.True(t, cfgs[10].FKJoin())
	require.Equal(t, 400000, cfgs[10].InputTuples())
}

func TestWindowSize(t *testing.T) {
	cfgs, err := lookup(t, "window-size").Configs(Options{Algorithms: []string{"SHJ"}})
	require.NoError(t, err)
	require.Len(t, cfgs, 14)

	require.Equal(t, 128, cfgs[0].RWindow())
	require.Equal(t, 64, cfgs[0].RBatch())
	require.Equal(t, 128+4*64, cfgs[0].RSize())

	last := cfgs[len(cfgs)-1]
	require.Equal(t, 1048576, last.RWindow())
	require.Equal(t, 1024, last.RBatch())
	require.Equal(t, 1048576+4096, last.SSize())
	require.True(t, last.NoSGX())
}

func TestWindowBatchSize(t *testing.T) {
	cfgs, err := lookup(t, "window-batch-size").Configs(Options{Algorithms: []string{"FK-MERG-L3"}})
	require.NoError(t, err)
	require.Len(t, cfgs, 15)

	require.Equal(t, 2048, cfgs[0].RWindow())
	require.Equal(t, 16, cfgs[0].RBatch())
	require.Equal(t, 2048+160, cfgs[0].RSize())

	last := cfgs[len(cfgs)-1]
	require.Equal(t, 33554432, last.RWindow())
	require.Equal(t, 32, last.RBatch())
}

func TestScalability(t *testing.T) {
	e := lookup(t, "scalability")
	cfgs, err := e.Configs(Options{})
	require.NoError(t, err)

	var threads []int
	for _, c := range cfgs {
		threads = append(threads, c.Threads())
		require.Equal(t, 4194304, c.RWindow())
		require.True(t, c.FKJoin())
	}
	require.Equal(t, []int{1, 2, 4, 8, 16, 32, 64}, threads)

	_, err = e.Configs(Options{Datasets: []string{"synth-1"}})
	require.Error(t, err)
}

func TestPhaseBreakdown(t *testing.T) {
	cfgs, err := lookup(t, "phase-breakdown").Configs(Options{})
	require.NoError(t, err)
	require.Len(t, cfgs, 11)
	require.Equal(t, "./app --alg SHJ_Graphos --r-size 256 --s-size 256 --self-join", cfgs[0].Command(""))
	require.Equal(t, 256*1024, cfgs[10].SSize())
}

type fixedRunner struct {
	output string
}

func (r fixedRunner) Run(model.RunConfig) (string, error) {
	return r.output, nil
}

func TestExperiment_SweepAndPlot(t *testing.T) {
	dir := t.TempDir()
	e := lookup(t, "batch-size")

	table, err := e.CreateTable(dir)
	require.NoError(t, err)
	plan, err := e.Plan(table, Options{Algorithms: []string{"FK-MERG-L3", "FK-SORT-L3"}})
	require.NoError(t, err)

	d := &sweep.Driver{
		Runner:      fixedRunner{output: "joinTotalTime   [micros] : 1000\njoinThroughput [M rec/s] : 0.4\n"},
		Extractor:   metrics.NewExtractor(),
		Repetitions: 2,
		Logger:      zerolog.Nop(),
	}
	report, err := d.Run(plan)
	require.NoError(t, err)
	require.Equal(t, 20, report.Rows)

	content, err := os.ReadFile(e.ResultsPath(dir))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 21)
	require.Equal(t, "algorithm,dataset,window,batch,num-tuples,time,throughput", lines[0])
	require.Equal(t, "FK-MERG-L3,synth-1,65536,128,400000,1000,0.4", lines[1])

	files, err := e.Plot(chart.NewRenderer(zerolog.Nop()), dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "batch-size.png")}, files)
	require.FileExists(t, files[0])
}

func TestExperiment_PlotSplitsCharts(t *testing.T) {
	tests := []struct {
		name  string
		exp   string
		opts  Options
		files []string
	}{
		{
			name:  "batch-size per dataset",
			exp:   "batch-size",
			opts:  Options{Algorithms: []string{"FK-MERG-L3"}, Datasets: []string{"synth-1", "synth-2"}},
			files: []string{"batch-size-synth-1.png", "batch-size-synth-2.png"},
		},
		{
			name:  "phase-breakdown per algorithm",
			exp:   "phase-breakdown",
			opts:  Options{Algorithms: []string{"SHJ_Graphos", "SHJ"}},
			files: []string{"phase-breakdown-SHJ_Graphos.png", "phase-breakdown-SHJ.png"},
		},
	}

	output := "joinTotalTime: 1000\njoinThroughput: 0.4\n" +
		"leftInitTime: 1\nleftBuildTime: 2\nleftProbeTime: 3\n" +
		"rightInitTime: 4\nrightBuildTime: 5\nrightProbeTime: 6\n"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := lookup(t, tt.exp)

			table, err := e.CreateTable(dir)
			require.NoError(t, err)
			plan, err := e.Plan(table, tt.opts)
			require.NoError(t, err)

			d := &sweep.Driver{
				Runner:      fixedRunner{output: output},
				Extractor:   metrics.NewExtractor(),
				Repetitions: 1,
				Logger:      zerolog.Nop(),
			}
			_, err = d.Run(plan)
			require.NoError(t, err)

			files, err := e.Plot(chart.NewRenderer(zerolog.Nop()), dir)
			require.NoError(t, err)
			var want []string
			for _, f := range tt.files {
				want = append(want, filepath.Join(dir, f))
			}
			require.Equal(t, want, files)
			for _, f := range files {
				require.FileExists(t, f)
			}
		})
	}
}

func TestExperiment_PlotRejectsForeignTable(t *testing.T) {
	dir := t.TempDir()
	e := lookup(t, "scalability")

	_, err := results.Create(e.ResultsPath(dir), "a", "b")
	require.NoError(t, err)

	_, err = e.Plot(chart.NewRenderer(zerolog.Nop()), dir)
	require.Error(t, err)

	_, err = lookup(t, "window-size").Plot(chart.NewRenderer(zerolog.Nop()), dir)
	require.Error(t, err)
}
