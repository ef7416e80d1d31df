package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/perfgo/joinsweep/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func record(id string, ts time.Time) *model.History {
	return &model.History{
		ID:          id,
		Experiment:  "batch-size",
		Timestamp:   ts,
		Args:        []string{"joinsweep", "run", "batch-size"},
		Repetitions: 3,
		Points:      50,
		Rows:        50,
		ResultsFile: "results/batch-size.csv",
		Git:         &model.Git{Commit: "0123456789abcdef", Branch: "main"},
	}
}

func TestWriteAndLoad(t *testing.T) {
	root := Root(t.TempDir())
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	dir, err := Write(root, record("aaaaaaaa-1111-2222-3333-444444444444", base))
	require.NoError(t, err)
	require.Equal(t, "20250301-120000-aaaaaaaa", filepath.Base(dir))

	_, err = Write(root, record("bbbbbbbb-1111-2222-3333-444444444444", base.Add(time.Hour)))
	require.NoError(t, err)

	// unparsable records are skipped
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, FileName), []byte("{"), 0644))

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	SortNewest(entries)
	require.Equal(t, "bbbbbbbb-1111-2222-3333-444444444444", entries[0].History.ID)
	require.Equal(t, "batch-size", entries[1].History.Experiment)
	require.Equal(t, "main", entries[1].History.Git.Branch)
	require.True(t, entries[1].History.Timestamp.Equal(base))
}

func TestLoadEntries_MissingRoot(t *testing.T) {
	entries, err := LoadEntries(zerolog.Nop(), filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSelect(t *testing.T) {
	base := time.Now()
	entries := []Entry{
		{History: *record("cafe0001", base)},
		{History: *record("beef0002", base.Add(-time.Minute))},
	}

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "0", want: "cafe0001"},
		{arg: "-1", want: "beef0002"},
		{arg: "BEEF", want: "beef0002"},
		{arg: "1", wantErr: true},
		{arg: "-2", wantErr: true},
		{arg: "dead", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			e, err := Select(entries, tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, e.History.ID)
		})
	}

	_, err := Select(nil, "0")
	require.Error(t, err)
}

func TestAttach(t *testing.T) {
	dir, err := Write(Root(t.TempDir()), record("cafe0001", time.Now()))
	require.NoError(t, err)

	require.NoError(t, Attach(dir, "output.txt", []byte("enclave creation failed\n")))

	data, err := os.ReadFile(filepath.Join(dir, "output.txt"))
	require.NoError(t, err)
	require.Equal(t, "enclave creation failed\n", string(data))

	require.Error(t, Attach(filepath.Join(dir, "missing"), "output.txt", nil))
}
