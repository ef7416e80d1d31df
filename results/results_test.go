package results

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "out.csv")

	require.NoError(t, Init(path, "a,b"))
	require.NoError(t, Append(path, "1,2"))
	require.NoError(t, Init(path, "a,b\n"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(content))
}

func TestAppend_MissingFile(t *testing.T) {
	err := Append(filepath.Join(t.TempDir(), "missing.csv"), "1")
	require.Error(t, err)
}

func TestTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.csv")

	table, err := Create(path, "algorithm", "dataset", "window", "time")
	require.NoError(t, err)
	require.Equal(t, "algorithm,dataset,window,time", table.Header())

	rows := []Row{
		{"SHJ", "synth-1", 128, 130.0},
		{"FK-MERG-L4", "synth-1", 256, 2.5},
		{"NLJ-L4", "tpch-1", 512, int64(77)},
	}
	for _, row := range rows {
		require.NoError(t, table.Append(row...))
	}
	require.Equal(t, 3, table.Rows())

	header, records, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, []string{"algorithm", "dataset", "window", "time"}, header)
	require.Equal(t, [][]string{
		{"SHJ", "synth-1", "128", "130"},
		{"FK-MERG-L4", "synth-1", "256", "2.5"},
		{"NLJ-L4", "tpch-1", "512", "77"},
	}, records)
	for _, rec := range records {
		require.Len(t, rec, len(header))
	}
}

func TestTable_ColumnCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table, err := Create(path, "a", "b")
	require.NoError(t, err)

	err = table.Append(1)
	var countErr *ColumnCountError
	require.True(t, errors.As(err, &countErr))
	require.Equal(t, 2, countErr.Want)
	require.Equal(t, 1, countErr.Got)
	require.Equal(t, 0, table.Rows())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(content))
}

func TestRead_RejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Init(path, "a,b"))
	require.NoError(t, Append(path, "1,2,3"))

	_, _, err := Read(path)
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: "FK-SORT-L3", want: "FK-SORT-L3"},
		{in: 65536, want: "65536"},
		{in: int64(-3), want: "-3"},
		{in: 130.0, want: "130"},
		{in: 2.5, want: "2.5"},
		{in: 0.0731, want: "0.0731"},
		{in: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestColumn(t *testing.T) {
	header := []string{"algorithm", "batch", "time"}
	require.Equal(t, 1, Column(header, "batch"))
	require.Equal(t, -1, Column(header, "window"))
}
