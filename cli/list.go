package cli

// This file contains the list command for displaying previous sweeps.

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/perfgo/joinsweep/history"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	filterExperiment := ctx.String("experiment")
	limit := ctx.Int("limit")

	resultsDir := ctx.String("results-dir")
	if resultsDir == "" {
		sw, err := a.switches(ctx)
		if err != nil {
			return err
		}
		resultsDir = sw.ResultsDir
	}

	historyEntries, err := history.LoadEntries(a.logger, history.Root(resultsDir))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var filteredEntries []history.Entry
	for _, entry := range historyEntries {
		if filterExperiment == "" || entry.History.Experiment == filterExperiment {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	if len(filteredEntries) == 0 {
		if filterExperiment != "" {
			fmt.Fprintf(a.out, "No history entries found for experiment: %s\n", filterExperiment)
		} else {
			fmt.Fprintln(a.out, "No history entries found")
		}
		return nil
	}

	history.SortNewest(filteredEntries)

	displayRuns := filteredEntries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Fprintf(a.out, "\n=== History (%d total) ===\n\n", len(filteredEntries))

	for _, entry := range displayRuns {
		h := entry.History
		timestamp := h.Timestamp.Format("2006-01-02 15:04:05")
		duration := h.Duration.Round(time.Millisecond)

		status := color.GreenString("✓")
		if h.ExitCode != 0 {
			status = color.RedString("✗")
		}

		shortID := h.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Fprintf(a.out, "%s  %s  %s  [%s]  rows=%d/%d  exit=%d  id=%s\n",
			status, timestamp, color.CyanString(h.Experiment), duration, h.Rows, h.Points, h.ExitCode, shortID)
		if len(h.Args) > 1 {
			fmt.Fprintf(a.out, "   Args: %s\n", strings.Join(h.Args[1:], " "))
		}
		if h.Error != "" {
			fmt.Fprintf(a.out, "   Error: %s\n", h.Error)
		}
		if h.Git != nil && h.Git.Commit != "" {
			shortCommit := h.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Fprintf(a.out, "   Commit: %s", shortCommit)
			if h.Git.Branch != "" {
				fmt.Fprintf(a.out, " (%s)", h.Git.Branch)
			}
			fmt.Fprintln(a.out)
		}
		if h.ResultsFile != "" {
			fmt.Fprintf(a.out, "   Results: %s\n", h.ResultsFile)
		}
		fmt.Fprintf(a.out, "   %s\n", entry.FullPath)
		fmt.Fprintln(a.out)
	}

	fmt.Fprintf(a.out, "\nShow a sweep: %s history show <ID>\n", AppName)

	return nil
}
