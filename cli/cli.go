package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/perfgo/joinsweep/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "joinsweep"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
	out    io.Writer
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		out:    os.Stdout,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Run parameter sweeps against the stream join application and plot the results",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "YAML file with the run switches",
					Value:   config.DefaultFile,
					EnvVars: []string{"JOINSWEEP_CONFIG"},
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the sweep of an experiment and append its results",
		ArgsUsage: "<experiment>",
		Action:    app.run,
		Flags: append(locationFlags(),
			&cli.StringSliceFlag{
				Name:    "alg",
				Aliases: []string{"a"},
				Usage:   "Algorithm to sweep, repeatable (default: the experiment's algorithms)",
			},
			&cli.StringSliceFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Dataset to sweep, repeatable (default: the experiment's datasets)",
			},
			&cli.IntFlag{
				Name:    "repetitions",
				Aliases: []string{"r", "reps"},
				Usage:   "Repetitions of every sweep point",
			},
			&cli.BoolFlag{
				Name:  "experiment",
				Usage: "Run the sweep (disable to only compile or plot)",
			},
			&cli.BoolFlag{
				Name:  "compile",
				Usage: "Rebuild the application with make before the sweep",
			},
			&cli.BoolFlag{
				Name:  "plot",
				Usage: "Render the experiment's charts after the sweep",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Build the enclave in debug mode",
			},
			&cli.StringSliceFlag{
				Name:  "flag",
				Usage: "Preprocessor define passed to the build, repeatable",
			},
			&cli.BoolFlag{
				Name:  "echo",
				Usage: "Print the output of every application run",
			},
			&cli.BoolFlag{
				Name:  "app-stderr",
				Usage: "Forward the application's stderr instead of discarding it",
			},
		),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "plot",
		Usage:     "Render the charts of finished experiments",
		ArgsUsage: "[experiment...]",
		Action:    app.plot,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "results-dir",
				Usage: "Directory holding the results tables",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Plot every experiment with a results table",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "command",
		Usage:     "Print the application command of every sweep point without running it",
		ArgsUsage: "<experiment>",
		Action:    app.command,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "alg",
				Aliases: []string{"a"},
				Usage:   "Algorithm to sweep, repeatable",
			},
			&cli.StringSliceFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Dataset to sweep, repeatable",
			},
			&cli.StringFlag{
				Name:  "program",
				Usage: "Application binary relative to its directory",
			},
			&cli.BoolFlag{
				Name:  "describe",
				Usage: "Print the full configuration of every point",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "experiments",
		Usage:  "List the available experiments",
		Action: app.experiments,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:  "history",
		Usage: "Inspect previous sweeps",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List previous sweeps",
				Action: app.list,
				Flags:  listFlags(),
			},
			{
				Name:            "show",
				Usage:           "Show a previous sweep",
				ArgsUsage:       "[ID|INDEX]",
				Action:          app.view,
				SkipFlagParsing: true,
				Description: `Show a previous sweep.

Arguments:
  0           Show last sweep (default)
  -1          Show 2nd last sweep
  <hex-id>    Show sweep matching the ID prefix

The results directory is taken from the switch file.`,
			},
		},
		// Default action when no subcommand is specified
		Action: app.list,
		Flags:  listFlags(),
	})
	return app
}

func locationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "app-dir",
			Usage:   "Working directory of the application (default: ..)",
			EnvVars: []string{"JOINSWEEP_APP_DIR"},
		},
		&cli.StringFlag{
			Name:  "program",
			Usage: "Application binary relative to its directory (default: ./app)",
		},
		&cli.StringFlag{
			Name:  "results-dir",
			Usage: "Directory for results tables, charts and history (default: results)",
		},
	}
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "experiment",
			Aliases: []string{"e"},
			Usage:   "Filter by experiment name",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Limit number of results (default: 20)",
			Value:   20,
		},
		&cli.StringFlag{
			Name:  "results-dir",
			Usage: "Directory holding the history",
		},
	}
}

func (a *App) Run(args []string) error {
	if err := loadEnvFile(EnvFile); err != nil {
		return err
	}
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// switches loads the switch file and applies the flags set on the command
// line. The default switch file may be missing.
func (a *App) switches(ctx *cli.Context) (config.Switches, error) {
	path := ctx.String("config")
	required := ctx.IsSet("config")

	s, err := config.Load(path, required)
	if err != nil {
		return s, err
	}

	boolFlags := map[string]*bool{
		"experiment": &s.Experiment,
		"compile":    &s.Compile,
		"plot":       &s.Plot,
		"debug":      &s.Debug,
	}
	for name, dst := range boolFlags {
		if ctx.IsSet(name) {
			*dst = ctx.Bool(name)
		}
	}

	stringFlags := map[string]*string{
		"app-dir":     &s.AppDir,
		"program":     &s.Program,
		"results-dir": &s.ResultsDir,
	}
	for name, dst := range stringFlags {
		if ctx.IsSet(name) {
			*dst = ctx.String(name)
		}
	}

	if ctx.IsSet("repetitions") {
		s.Repetitions = ctx.Int("repetitions")
	}
	if ctx.IsSet("flag") {
		s.Flags = ctx.StringSlice("flag")
	}

	return s, s.Validate()
}
