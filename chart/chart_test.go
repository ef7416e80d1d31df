package chart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var batchHeader = []string{"algorithm", "dataset", "window", "batch", "num-tuples", "time", "throughput"}

var batchRows = [][]string{
	{"FK-MERG-L3", "synth-1", "65536", "128", "400000", "2000", "0.2"},
	{"FK-MERG-L3", "synth-1", "65536", "256", "400000", "1000", "0.4"},
	{"FK-SORT-L3", "synth-1", "65536", "128", "400000", "4000", "0.1"},
	{"FK-SORT-L3", "synth-1", "65536", "256", "400000", "3000", "0.13"},
}

func TestPalette_Style(t *testing.T) {
	s, err := Algorithms.Style("SHJ")
	require.NoError(t, err)
	require.NotNil(t, s.Color)
	require.NotNil(t, s.Marker)

	_, err = Algorithms.Style("HASH-MAGIC")
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "HASH-MAGIC", unknown.Category)
}

func TestPalette_Colors(t *testing.T) {
	require.Equal(t, mustHex("#e8c600"), Algorithms["SHJ"].Color)
	require.Equal(t, mustHex("#7326d3"), Algorithms["FK-MERG-L4"].Color)
	require.Contains(t, Datasets.Names(), "tpch-1")
	require.Len(t, Phases, 6)
}

func TestRecord(t *testing.T) {
	r := NewRecord(batchHeader, batchRows[0])
	require.Equal(t, "FK-MERG-L3", r.String("algorithm"))
	require.Equal(t, "", r.String("missing"))

	v, err := r.Float("batch")
	require.NoError(t, err)
	require.Equal(t, 128.0, v)

	_, err = r.Float("algorithm")
	require.Error(t, err)

	thr, err := Throughput("num-tuples", "time")(r)
	require.NoError(t, err)
	require.Equal(t, 200000.0, thr)
}

func TestRenderer_Lines(t *testing.T) {
	for _, ext := range []string{"png", "svg"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "charts", "batch."+ext)
			spec := Spec{
				Kind:   Lines,
				Title:  "batch size",
				X:      "batch",
				Y:      Throughput("num-tuples", "time"),
				Series: "algorithm",
				LogX:   true,
				LogY:   true,
			}

			require.NoError(t, NewRenderer(zerolog.Nop()).Lines(spec, batchHeader, batchRows, out))
			info, err := os.Stat(out)
			require.NoError(t, err)
			require.Positive(t, info.Size())
		})
	}
}

func TestRenderer_LinesRelative(t *testing.T) {
	r := NewRenderer(zerolog.Nop())
	spec := Spec{X: "batch", Y: Column("throughput"), Series: "algorithm", Relative: true}

	recs := spec.records(batchHeader, batchRows)
	pts, err := r.points(spec, recs, "FK-MERG-L3")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	require.Equal(t, 1.0, pts[0].Y)
	require.Equal(t, 2.0, pts[1].Y)
}

func TestRenderer_UnknownSeries(t *testing.T) {
	rows := [][]string{{"MYSTERY", "synth-1", "1", "1", "1", "1", "1"}}
	spec := Spec{X: "batch", Y: Column("time"), Series: "algorithm"}

	err := NewRenderer(zerolog.Nop()).Lines(spec, batchHeader, rows, filepath.Join(t.TempDir(), "x.png"))
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
}

func TestRenderer_NoData(t *testing.T) {
	spec := Spec{
		X:      "batch",
		Y:      Column("time"),
		Series: "algorithm",
		Filter: func(r Record) bool { return r.String("dataset") == "tpch-1" },
	}
	err := NewRenderer(zerolog.Nop()).Lines(spec, batchHeader, batchRows, filepath.Join(t.TempDir(), "x.png"))
	require.ErrorIs(t, err, ErrNoData)
}

func TestRenderer_Bars(t *testing.T) {
	header := []string{"algorithm", "dataset", "inputTuples", "time"}
	rows := [][]string{
		{"SHJ", "synth-1", "268928", "100"},
		{"SHJ", "synth-2", "868928", "300"},
		{"NLJ-L4", "synth-1", "268928", "90000"},
		{"NLJ-L4", "synth-2", "868928", "250000"},
	}

	tests := []struct {
		name string
		spec Spec
	}{
		{
			name: "grouped",
			spec: Spec{Kind: Bars, X: "algorithm", Y: Throughput("inputTuples", "time"), Series: "dataset", Palette: Datasets},
		},
		{
			name: "single",
			spec: Spec{
				Kind:   Bars,
				X:      "algorithm",
				Y:      Throughput("inputTuples", "time"),
				Only:   []string{"NLJ-L4", "SHJ"},
				Filter: func(r Record) bool { return r.String("dataset") == "synth-1" },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), tt.name+".png")
			require.NoError(t, NewRenderer(zerolog.Nop()).Render(tt.spec, header, rows, out))
			require.FileExists(t, out)
		})
	}
}

func TestRenderer_StackedBars(t *testing.T) {
	header := []string{"algorithm", "size", "leftInitTime", "leftBuildTime", "leftProbeTime", "rightInitTime", "rightBuildTime", "rightProbeTime"}
	rows := [][]string{
		{"SHJ_Graphos", "256", "1", "2", "3", "4", "5", "6"},
		{"SHJ_Graphos", "512", "2", "4", "6", "8", "10", "12"},
	}
	spec := Spec{
		Kind:    StackedBars,
		X:       "size",
		Stack:   header[2:],
		Palette: Phases,
	}

	out := filepath.Join(t.TempDir(), "phases.svg")
	require.NoError(t, NewRenderer(zerolog.Nop()).Render(spec, header, rows, out))
	require.FileExists(t, out)
}

func TestRenderer_StackedBarsRejectMergedRecords(t *testing.T) {
	header := []string{"algorithm", "size", "leftInitTime"}
	rows := [][]string{
		{"SHJ_Graphos", "256", "10"},
		{"SHJ", "256", "999"},
	}
	spec := Spec{Kind: StackedBars, X: "size", Stack: header[2:], Palette: Phases}

	err := NewRenderer(zerolog.Nop()).Render(spec, header, rows, filepath.Join(t.TempDir(), "phases.png"))
	var dup *DuplicateCategoryError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "size", dup.Column)
	require.Equal(t, "256", dup.Category)

	spec.Split = "algorithm"
	specs := spec.Expand(header, rows)
	require.Len(t, specs, 2)
	for _, s := range specs {
		out := filepath.Join(t.TempDir(), s.File)
		require.NoError(t, NewRenderer(zerolog.Nop()).Render(s, header, rows, out))
	}
}

func TestSpec_Expand(t *testing.T) {
	rows := append([][]string{
		{"FK-MERG-L3", "synth-2", "65536", "128", "1000000", "2000", "0.5"},
	}, batchRows...)

	tests := []struct {
		name      string
		spec      Spec
		rows      [][]string
		wantFiles []string
		wantTitle []string
		wantRecs  []int
	}{
		{
			name:      "no split",
			spec:      Spec{File: "batch-size.png", Title: "Batch"},
			rows:      rows,
			wantFiles: []string{"batch-size.png"},
			wantTitle: []string{"Batch"},
			wantRecs:  []int{5},
		},
		{
			name:      "single value keeps the file",
			spec:      Spec{File: "batch-size.png", Split: "dataset"},
			rows:      batchRows,
			wantFiles: []string{"batch-size.png"},
			wantTitle: []string{""},
			wantRecs:  []int{4},
		},
		{
			name:      "one chart per value",
			spec:      Spec{File: "batch-size.png", Title: "Batch", Split: "dataset"},
			rows:      rows,
			wantFiles: []string{"batch-size-synth-2.png", "batch-size-synth-1.png"},
			wantTitle: []string{"Batch (synth-2)", "Batch (synth-1)"},
			wantRecs:  []int{1, 4},
		},
		{
			name: "split keeps the filter",
			spec: Spec{
				File:   "batch-size.svg",
				Split:  "dataset",
				Filter: func(r Record) bool { return r.String("algorithm") == "FK-MERG-L3" },
			},
			rows:      rows,
			wantFiles: []string{"batch-size-synth-2.svg", "batch-size-synth-1.svg"},
			wantTitle: []string{"synth-2", "synth-1"},
			wantRecs:  []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := tt.spec.Expand(batchHeader, tt.rows)
			require.Len(t, specs, len(tt.wantFiles))
			for i, s := range specs {
				require.Equal(t, tt.wantFiles[i], s.File)
				require.Equal(t, tt.wantTitle[i], s.Title)
				require.Len(t, s.records(batchHeader, tt.rows), tt.wantRecs[i])
			}
		})
	}
}

func TestFileSafe(t *testing.T) {
	require.Equal(t, "SHJ_Graphos", fileSafe("SHJ_Graphos"))
	require.Equal(t, "tpch-1", fileSafe("tpch-1"))
	require.Equal(t, "a_b_c", fileSafe("a/b c"))
}

func TestRenderer_BarsRejectLogScale(t *testing.T) {
	spec := Spec{Kind: Bars, X: "algorithm", Y: Column("time"), LogY: true}
	err := NewRenderer(zerolog.Nop()).Bars(spec, batchHeader, batchRows, filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "lines", Lines.String())
	require.Equal(t, "bars", Bars.String())
	require.Equal(t, "stacked-bars", StackedBars.String())
}
