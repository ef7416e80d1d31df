// Package sweep runs parameter sweeps: every point of a Cartesian product is
// executed a fixed number of times and reduced to one results row.
package sweep

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perfgo/joinsweep/metrics"
	"github.com/perfgo/joinsweep/model"
	"github.com/perfgo/joinsweep/results"
	"github.com/rs/zerolog"
)

// Runner executes one invocation of the join application.
type Runner interface {
	Run(cfg model.RunConfig) (string, error)
}

// Extractor turns captured output into metric values.
type Extractor interface {
	Extract(output string) (map[string]float64, error)
}

// Plan describes a single sweep.
type Plan struct {
	Name string
	// Table receives one row per completed point
	Table *results.Table
	// Metrics that every point must report
	Metrics    []string
	Dimensions []Dimension

	// Build returns the configuration of a point
	Build func(p Point) model.RunConfig
	// Row returns the results row of a point from its aggregated metrics
	Row func(p Point, cfg model.RunConfig, agg map[string]float64) results.Row
}

// PointError reports the point at which a sweep stopped.
type PointError struct {
	Index int
	Point Point
	// Repetition is zero based; -1 when the failure happened after all repetitions
	Repetition int
	Command    string
	Err        error
}

func (e *PointError) Error() string {
	if e.Repetition < 0 {
		return fmt.Sprintf("sweep point %d (%s): %v", e.Index, e.Point.Describe(), e.Err)
	}
	return fmt.Sprintf("sweep point %d (%s) repetition %d: %v", e.Index, e.Point.Describe(), e.Repetition+1, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

// Report summarizes a finished or aborted sweep.
type Report struct {
	Points   int
	Rows     int
	Duration time.Duration
}

// Driver executes plans.
type Driver struct {
	Runner      Runner
	Extractor   Extractor
	Repetitions int
	// Program is only used to render commands for logs
	Program string
	Logger  zerolog.Logger
}

// Run executes every point of plan in order. The first error stops the
// sweep: no row is written for the failing point and no later point is run.
func (d *Driver) Run(plan Plan) (Report, error) {
	start := time.Now()
	points := Product(plan.Dimensions...)
	report := Report{Points: len(points)}

	reps := d.Repetitions
	if reps < 1 {
		reps = 1
	}

	d.Logger.Info().
		Str("sweep", plan.Name).
		Int("points", len(points)).
		Int("repetitions", reps).
		Str("table", plan.Table.Path).
		Msg("Starting sweep")

	for i, p := range points {
		cfg := plan.Build(p)
		command := cfg.Command(d.Program)

		d.Logger.Info().
			Int("point", i+1).
			Int("of", len(points)).
			Str("command", command).
			Msg("Running sweep point")
		d.Logger.Debug().Msg(cfg.Describe())

		samples := metrics.Samples{}
		for rep := 0; rep < reps; rep++ {
			output, err := d.Runner.Run(cfg)
			if err != nil {
				report.Duration = time.Since(start)
				return report, &PointError{Index: i, Point: p, Repetition: rep, Command: command, Err: err}
			}

			values, err := d.Extractor.Extract(output)
			if err != nil {
				report.Duration = time.Since(start)
				return report, &PointError{Index: i, Point: p, Repetition: rep, Command: command, Err: err}
			}
			samples.Add(values)
		}

		agg, err := metrics.Aggregate(samples, plan.Metrics)
		if err != nil {
			report.Duration = time.Since(start)
			return report, &PointError{Index: i, Point: p, Repetition: -1, Command: command, Err: err}
		}
		d.logSpread(samples, plan.Metrics)

		row := plan.Row(p, cfg, agg)
		if err := plan.Table.Append(row...); err != nil {
			report.Duration = time.Since(start)
			return report, &PointError{Index: i, Point: p, Repetition: -1, Command: command, Err: err}
		}
		report.Rows++

		d.Logger.Info().
			Str("row", joinRow(row)).
			Msg("Join results")
	}

	report.Duration = time.Since(start)
	d.Logger.Info().
		Str("sweep", plan.Name).
		Int("rows", report.Rows).
		Dur("duration", report.Duration).
		Msg("Sweep finished")
	return report, nil
}

func (d *Driver) logSpread(samples metrics.Samples, names []string) {
	for _, name := range names {
		s, err := metrics.NewSpread(samples[name])
		if errors.Is(err, metrics.ErrEmptySamples) {
			d.Logger.Debug().Str("metric", name).Msg("No spread for metric")
			continue
		}
		if err != nil {
			d.Logger.Warn().Err(err).Str("metric", name).Msg("Failed to compute repetition spread")
			continue
		}
		d.Logger.Debug().
			Str("metric", name).
			Int64("count", s.Count).
			Float64("min", s.Min).
			Float64("p90", s.P90).
			Float64("max", s.Max).
			Msg("Repetition spread")
	}
}

func joinRow(row results.Row) string {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = results.Format(v)
	}
	return strings.Join(fields, ",")
}
