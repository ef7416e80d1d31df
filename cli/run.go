package cli

// This file contains the run command executing an experiment sweep and
// recording it in the history.

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/perfgo/joinsweep/chart"
	"github.com/perfgo/joinsweep/config"
	"github.com/perfgo/joinsweep/experiment"
	"github.com/perfgo/joinsweep/history"
	"github.com/perfgo/joinsweep/metrics"
	"github.com/perfgo/joinsweep/model"
	"github.com/perfgo/joinsweep/runner"
	"github.com/perfgo/joinsweep/sweep"
	"github.com/urfave/cli/v2"
)

// outputFile holds the captured output of a failed application run.
const outputFile = "output.txt"

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()

	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one experiment, known experiments: %v", experiment.Names())
	}
	exp, err := experiment.Lookup(ctx.Args().First())
	if err != nil {
		return err
	}

	sw, err := a.switches(ctx)
	if err != nil {
		return err
	}

	opts := experiment.Options{
		Algorithms: ctx.StringSlice("alg"),
		Datasets:   ctx.StringSlice("dataset"),
	}

	h := &model.History{
		ID:          uuid.New().String(),
		Experiment:  exp.Name,
		Timestamp:   startTime,
		Args:        os.Args,
		AppDir:      sw.AppDir,
		Repetitions: sw.Repetitions,
		ResultsFile: exp.ResultsPath(sw.ResultsDir),
	}

	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(sw.AppDir); err == nil {
		h.Git = &model.Git{
			Commit: commit,
			Branch: branch,
		}
	}
	h.Target = &model.Target{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if host, err := os.Hostname(); err == nil {
		h.Target.Host = host
	}

	var finalErr error
	var failedOutput string
	defer func() {
		if !sw.Experiment {
			return
		}
		h.Duration = time.Since(startTime)
		if finalErr != nil {
			h.Error = finalErr.Error()
			var failure *runner.ExternalProcessFailure
			if errors.As(finalErr, &failure) {
				h.ExitCode = failure.ExitCode
			} else {
				h.ExitCode = 1
			}
		}
		if failedOutput != "" {
			h.OutputFile = outputFile
		}

		// Record the history (non-fatal if it fails)
		if err := a.recordHistory(sw.ResultsDir, h, failedOutput); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to record history")
		}
	}()

	if sw.Compile {
		if err := a.compileApp(sw); err != nil {
			a.logger.Error().Err(err).Msg("Failed to compile application")
			finalErr = err
			return err
		}
		h.Compiled = true
	}

	if sw.Experiment {
		report, err := a.sweep(ctx, exp, sw, opts)
		h.Points = report.Points
		h.Rows = report.Rows
		if err != nil {
			finalErr = err
			failedOutput = a.logSweepFailure(err)
			return err
		}
	} else {
		a.logger.Info().Str("experiment", exp.Name).Msg("Sweep disabled, keeping existing results")
	}

	if sw.Plot {
		files, err := exp.Plot(chart.NewRenderer(a.logger), sw.ResultsDir)
		if err != nil {
			a.logger.Error().Err(err).Msg("Failed to plot results")
			finalErr = err
			return err
		}
		a.logger.Info().Strs("files", files).Msg("Charts rendered")
	}

	return nil
}

func (a *App) sweep(ctx *cli.Context, exp *experiment.Experiment, sw config.Switches, opts experiment.Options) (sweep.Report, error) {
	// Options are validated before the previous table is removed
	plan, err := exp.Plan(nil, opts)
	if err != nil {
		return sweep.Report{}, err
	}

	plan.Table, err = exp.CreateTable(sw.ResultsDir)
	if err != nil {
		return sweep.Report{}, err
	}

	r := runner.New(a.logger, sw.Program, sw.AppDir)
	if ctx.Bool("echo") {
		r.Stdout = a.out
	}
	if ctx.Bool("app-stderr") {
		r.Stderr = os.Stderr
	}

	d := &sweep.Driver{
		Runner:      r,
		Extractor:   metrics.NewExtractor(),
		Repetitions: sw.Repetitions,
		Program:     sw.Program,
		Logger:      a.logger,
	}
	return d.Run(plan)
}

// logSweepFailure logs the failing point and returns the captured output of
// the failed application run, if any.
func (a *App) logSweepFailure(err error) string {
	event := a.logger.Error().Err(err)

	var pointErr *sweep.PointError
	if errors.As(err, &pointErr) {
		event = event.
			Int("point", pointErr.Index+1).
			Str("command", pointErr.Command)
	}

	var failure *runner.ExternalProcessFailure
	if errors.As(err, &failure) {
		event.Int("exit_code", failure.ExitCode).Msg("App error")
		if failure.Output != "" {
			fmt.Fprint(os.Stderr, failure.Output)
		}
		return failure.Output
	}

	event.Msg("Sweep failed")
	return ""
}

func (a *App) recordHistory(resultsDir string, h *model.History, output string) error {
	dir, err := history.Write(history.Root(resultsDir), h)
	if err != nil {
		return err
	}
	if output != "" {
		if err := history.Attach(dir, outputFile, []byte(output)); err != nil {
			return err
		}
	}
	a.logger.Debug().Str("dir", dir).Str("id", h.ID).Msg("Recorded sweep")
	return nil
}
