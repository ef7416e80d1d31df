package cli

// This file contains the history show command for displaying a previous
// sweep.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/perfgo/joinsweep/history"
	"github.com/perfgo/joinsweep/results"
	"github.com/urfave/cli/v2"
)

// showOptions are the arguments of history show following the ID or index.
type showOptions struct {
	resultsDir string
	output     bool
}

func removeFirstDashDash(in []string) []string {
	if len(in) > 0 && in[0] == "--" {
		return in[1:]
	}
	return in
}

// parseShowArgs splits the arguments into the ID or index and the remaining
// options. Flag parsing is done here so that negative indexes are not taken
// for flags.
func parseShowArgs(in []string) (idArg string, rest []string) {
	if len(in) == 0 {
		return "0", nil
	}

	if in[0] == "--" {
		return "0", in[1:]
	}

	// A negative index is "-" followed by only digits (e.g. "-1", "-2")
	if len(in[0]) > 1 && in[0][0] == '-' {
		if _, err := strconv.ParseInt(in[0], 10, 64); err != nil {
			return "0", in
		}
	}

	return in[0], removeFirstDashDash(in[1:])
}

func parseShowOptions(in []string) (showOptions, error) {
	var opts showOptions
	for i := 0; i < len(in); i++ {
		arg := in[i]
		switch {
		case arg == "--output" || arg == "-output":
			opts.output = true
		case arg == "--results-dir" || arg == "-results-dir":
			if i+1 >= len(in) {
				return opts, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			opts.resultsDir = in[i]
		case strings.HasPrefix(arg, "--results-dir="):
			opts.resultsDir = strings.TrimPrefix(arg, "--results-dir=")
		default:
			return opts, fmt.Errorf("unknown argument: %s", arg)
		}
	}
	return opts, nil
}

func (a *App) view(ctx *cli.Context) error {
	arg, rest := parseShowArgs(ctx.Args().Slice())
	opts, err := parseShowOptions(rest)
	if err != nil {
		return err
	}

	resultsDir := opts.resultsDir
	if resultsDir == "" {
		sw, err := a.switches(ctx)
		if err != nil {
			return err
		}
		resultsDir = sw.ResultsDir
	}

	entries, err := history.LoadEntries(a.logger, history.Root(resultsDir))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	history.SortNewest(entries)

	entry, err := history.Select(entries, arg)
	if err != nil {
		return err
	}

	return a.displayHistoryEntry(entry, opts.output)
}

func (a *App) displayHistoryEntry(entry *history.Entry, showOutput bool) error {
	h := entry.History

	shortID := h.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	status := color.GreenString("succeeded")
	if h.ExitCode != 0 {
		status = color.RedString("failed (exit=%d)", h.ExitCode)
	}

	fmt.Fprintf(a.out, "=== Sweep: %s ===\n", shortID)
	fmt.Fprintf(a.out, "Experiment: %s\n", h.Experiment)
	fmt.Fprintf(a.out, "Time: %s\n", h.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Duration: %s\n", h.Duration.Round(time.Millisecond))
	fmt.Fprintf(a.out, "Status: %s\n", status)
	if h.Error != "" {
		fmt.Fprintf(a.out, "Error: %s\n", h.Error)
	}
	if len(h.Args) > 1 {
		fmt.Fprintf(a.out, "Args: %s\n", strings.Join(h.Args[1:], " "))
	}
	if h.AppDir != "" {
		fmt.Fprintf(a.out, "App Dir: %s\n", h.AppDir)
	}
	fmt.Fprintf(a.out, "Points: %d/%d (%d repetitions)\n", h.Rows, h.Points, h.Repetitions)
	if h.Compiled {
		fmt.Fprintln(a.out, "Compiled: yes")
	}
	if h.Target != nil && h.Target.OS != "" {
		fmt.Fprintf(a.out, "Host: %s (%s/%s)\n", h.Target.Host, h.Target.OS, h.Target.Arch)
	}
	if h.Git != nil && h.Git.Commit != "" {
		shortCommit := h.Git.Commit
		if len(shortCommit) > 8 {
			shortCommit = shortCommit[:8]
		}
		fmt.Fprintf(a.out, "Git Commit: %s", shortCommit)
		if h.Git.Branch != "" {
			fmt.Fprintf(a.out, " (%s)", h.Git.Branch)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintln(a.out)

	if h.ResultsFile != "" {
		if err := a.displayResults(h.ResultsFile); err != nil {
			a.logger.Warn().Err(err).Str("path", h.ResultsFile).Msg("Failed to read results table")
		}
	}

	if h.OutputFile != "" {
		outputPath := filepath.Join(entry.FullPath, h.OutputFile)
		if !showOutput {
			fmt.Fprintf(a.out, "App output of the failed run: %s\n", outputPath)
			return nil
		}
		data, err := os.ReadFile(outputPath)
		if err != nil {
			return fmt.Errorf("failed to read app output: %w", err)
		}
		fmt.Fprintf(a.out, "App output of the failed run: %s\n", outputPath)
		fmt.Fprintln(a.out, string(data))
	}

	fmt.Fprintf(a.out, "History directory: %s\n", entry.FullPath)
	return nil
}

// displayResults prints the header and row count of the results table. The
// table may have been overwritten by a later sweep.
func (a *App) displayResults(path string) error {
	header, rows, err := results.Read(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Results: %s (%d rows)\n", path, len(rows))
	fmt.Fprintf(a.out, "Columns: %s\n\n", strings.Join(header, ", "))
	return nil
}
