package cli

// This file contains the plot, command and experiments commands working on
// the experiment catalog without running the application.

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/perfgo/joinsweep/chart"
	"github.com/perfgo/joinsweep/experiment"
	"github.com/urfave/cli/v2"
)

func (a *App) plot(ctx *cli.Context) error {
	sw, err := a.switches(ctx)
	if err != nil {
		return err
	}

	all := ctx.Bool("all")
	names := ctx.Args().Slice()
	switch {
	case all && len(names) > 0:
		return fmt.Errorf("--all cannot be combined with experiment names")
	case !all && len(names) == 0:
		return fmt.Errorf("expected experiment names or --all, known experiments: %s", strings.Join(experiment.Names(), ", "))
	case all:
		names = experiment.Names()
	}

	renderer := chart.NewRenderer(a.logger)
	for _, name := range names {
		exp, err := experiment.Lookup(name)
		if err != nil {
			return err
		}

		if all {
			if _, err := os.Stat(exp.ResultsPath(sw.ResultsDir)); errors.Is(err, os.ErrNotExist) {
				a.logger.Debug().Str("experiment", name).Msg("No results, skipping")
				continue
			}
		}

		files, err := exp.Plot(renderer, sw.ResultsDir)
		if err != nil {
			return err
		}
		a.logger.Info().Str("experiment", name).Strs("files", files).Msg("Charts rendered")
	}
	return nil
}

func (a *App) command(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one experiment, known experiments: %s", strings.Join(experiment.Names(), ", "))
	}
	exp, err := experiment.Lookup(ctx.Args().First())
	if err != nil {
		return err
	}

	sw, err := a.switches(ctx)
	if err != nil {
		return err
	}

	cfgs, err := exp.Configs(experiment.Options{
		Algorithms: ctx.StringSlice("alg"),
		Datasets:   ctx.StringSlice("dataset"),
	})
	if err != nil {
		return err
	}

	describe := ctx.Bool("describe")
	for _, cfg := range cfgs {
		fmt.Fprintln(a.out, cfg.Command(sw.Program))
		if describe {
			fmt.Fprintln(a.out, cfg.Describe())
		}
	}
	return nil
}

func (a *App) experiments(ctx *cli.Context) error {
	for _, name := range experiment.Names() {
		exp, err := experiment.Lookup(name)
		if err != nil {
			return err
		}

		cfgs, err := exp.Configs(experiment.Options{})
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s  %s\n", color.CyanString("%-18s", exp.Name), exp.Description)
		fmt.Fprintf(a.out, "   Points: %d\n", len(cfgs))
		fmt.Fprintf(a.out, "   Algorithms: %s\n", strings.Join(exp.Algorithms, ", "))
		if exp.Datasets != nil {
			fmt.Fprintf(a.out, "   Datasets: %s\n", strings.Join(exp.Datasets, ", "))
		}
		fmt.Fprintf(a.out, "   Columns: %s\n", strings.Join(exp.Header, ", "))
		var charts []string
		for _, spec := range exp.Charts {
			charts = append(charts, spec.File)
		}
		fmt.Fprintf(a.out, "   Charts: %s\n\n", strings.Join(charts, ", "))
	}
	return nil
}
