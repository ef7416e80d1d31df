package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Renderer draws charts with gonum/plot.
type Renderer struct {
	logger zerolog.Logger

	Palette Palette
	Width   vg.Length
	Height  vg.Length
}

// NewRenderer creates a renderer using the algorithm palette.
func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{
		logger:  logger,
		Palette: Algorithms,
		Width:   6 * vg.Inch,
		Height:  4 * vg.Inch,
	}
}

// Render draws spec into out, dispatching on the chart kind.
func (r *Renderer) Render(spec Spec, header []string, rows [][]string, out string) error {
	switch spec.Kind {
	case Bars, StackedBars:
		return r.Bars(spec, header, rows, out)
	default:
		return r.Lines(spec, header, rows, out)
	}
}

func (r *Renderer) palette(spec Spec) Palette {
	if spec.Palette != nil {
		return spec.Palette
	}
	return r.Palette
}

func newPlot(spec Spec) *plot.Plot {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Legend.Top = true
	return p
}

// Lines draws one line per series with X and Y read from every record.
func (r *Renderer) Lines(spec Spec, header []string, rows [][]string, out string) error {
	recs := spec.records(header, rows)
	palette := r.palette(spec)

	p := newPlot(spec)
	if spec.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if spec.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	drawn := 0
	for _, name := range spec.groups(recs, spec.Series) {
		style, err := palette.Style(name)
		if err != nil {
			return err
		}

		pts, err := r.points(spec, recs, name)
		if err != nil {
			return fmt.Errorf("failed to read series %s: %w", name, err)
		}
		if len(pts) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("failed to create line for %s: %w", name, err)
		}
		line.Color = style.Color
		line.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = style.Color
		scatter.GlyphStyle.Shape = style.Marker
		scatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, scatter)
		p.Legend.Add(name, line, scatter)
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}

	return r.save(p, out)
}

func (r *Renderer) points(spec Spec, recs []Record, series string) (plotter.XYs, error) {
	var pts plotter.XYs
	base := 0.0
	for _, rec := range recs {
		if rec.String(spec.Series) != series {
			continue
		}
		x, err := rec.Float(spec.X)
		if err != nil {
			return nil, err
		}
		y, err := spec.Y(rec)
		if err != nil {
			return nil, err
		}

		if spec.Relative {
			if len(pts) == 0 {
				if y == 0 {
					return nil, errors.New("first point is zero, cannot compute relative values")
				}
				base = y
			}
			y /= base
		}

		if (spec.LogX && x <= 0) || (spec.LogY && y <= 0) {
			r.logger.Debug().Str("series", series).Float64("x", x).Float64("y", y).Msg("Skipping point outside of log scale")
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts, nil
}

// Bars draws grouped or stacked bars with one slot per X category.
func (r *Renderer) Bars(spec Spec, header []string, rows [][]string, out string) error {
	if spec.LogY || spec.LogX {
		return errors.New("bar charts do not support log scales")
	}

	recs := spec.records(header, rows)
	categories := spec.groups(recs, spec.X)
	if len(categories) == 0 {
		return ErrNoData
	}

	p := newPlot(spec)
	width := vg.Points(20)

	var err error
	switch {
	case spec.Kind == StackedBars:
		err = r.stacked(p, spec, recs, categories, width)
	case spec.Series == "":
		err = r.single(p, spec, recs, categories, width)
	default:
		err = r.grouped(p, spec, recs, categories, width)
	}
	if err != nil {
		return err
	}

	p.NominalX(categories...)
	p.X.Tick.Label.Rotation = 0.5
	p.X.Tick.Label.XAlign = -0.8
	return r.save(p, out)
}

// DuplicateCategoryError is returned when several records feed the same bar.
type DuplicateCategoryError struct {
	Column   string
	Category string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("several records for %s %q in one bar, split or filter the chart", e.Column, e.Category)
}

// lookup returns the Y value of every category for the records accepted by
// keep. Every category takes at most one record.
func lookup(recs []Record, col string, categories []string, value Value, keep func(Record) bool) (plotter.Values, error) {
	vals := make(plotter.Values, len(categories))
	for i, c := range categories {
		found := false
		for _, rec := range recs {
			if rec.String(col) != c || (keep != nil && !keep(rec)) {
				continue
			}
			if found {
				return nil, &DuplicateCategoryError{Column: col, Category: c}
			}
			found = true

			v, err := value(rec)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
	}
	return vals, nil
}

func (r *Renderer) single(p *plot.Plot, spec Spec, recs []Record, categories []string, width vg.Length) error {
	palette := r.palette(spec)
	vals, err := lookup(recs, spec.X, categories, spec.Y, nil)
	if err != nil {
		return err
	}

	for i, c := range categories {
		style, err := palette.Style(c)
		if err != nil {
			return err
		}
		bar, err := plotter.NewBarChart(plotter.Values{vals[i]}, width)
		if err != nil {
			return fmt.Errorf("failed to create bar for %s: %w", c, err)
		}
		bar.XMin = float64(i)
		bar.Color = style.Color
		p.Add(bar)
	}
	return nil
}

func (r *Renderer) grouped(p *plot.Plot, spec Spec, recs []Record, categories []string, width vg.Length) error {
	palette := r.palette(spec)

	// Only applies to the categories, series keep their order of appearance
	seriesSpec := spec
	seriesSpec.Only = nil
	series := seriesSpec.groups(recs, spec.Series)

	for j, name := range series {
		style, err := palette.Style(name)
		if err != nil {
			return err
		}
		vals, err := lookup(recs, spec.X, categories, spec.Y, func(rec Record) bool {
			return rec.String(spec.Series) == name
		})
		if err != nil {
			return err
		}

		bar, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("failed to create bars for %s: %w", name, err)
		}
		bar.Color = style.Color
		bar.Offset = vg.Length(float64(j)-float64(len(series)-1)/2) * width

		p.Add(bar)
		p.Legend.Add(name, bar)
	}
	return nil
}

func (r *Renderer) stacked(p *plot.Plot, spec Spec, recs []Record, categories []string, width vg.Length) error {
	palette := r.palette(spec)

	var below *plotter.BarChart
	for _, col := range spec.Stack {
		style, err := palette.Style(col)
		if err != nil {
			return err
		}
		vals, err := lookup(recs, spec.X, categories, Column(col), nil)
		if err != nil {
			return err
		}

		bar, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("failed to create bars for %s: %w", col, err)
		}
		bar.Color = style.Color
		if below != nil {
			bar.StackOn(below)
		}
		below = bar

		p.Add(bar)
		p.Legend.Add(col, bar)
	}
	if below == nil {
		return ErrNoData
	}
	return nil
}

func (r *Renderer) save(p *plot.Plot, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := p.Save(r.Width, r.Height, out); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", out, err)
	}
	r.logger.Info().Str("file", out).Msg("Saved image file")
	return nil
}
