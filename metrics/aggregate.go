package metrics

// This file contains the reduction of repeated observations to point estimates.

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrEmptySamples is returned when a metric has no observations to reduce.
var ErrEmptySamples = errors.New("no samples")

// MissingMetricError is returned when a required metric was never reported.
type MissingMetricError struct {
	Metric string
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("metric %s was not reported by any repetition", e.Metric)
}

func (e *MissingMetricError) Unwrap() error {
	return ErrEmptySamples
}

// Median returns the middle value of values, or the mean of the two central
// values for an even count. The input is not modified.
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySamples
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// Aggregate returns the median of every named metric.
func Aggregate(samples Samples, names []string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, name := range names {
		m, err := Median(samples[name])
		if err != nil {
			return nil, &MissingMetricError{Metric: name}
		}
		out[name] = m
	}
	return out, nil
}

const (
	// spreadScale keeps three decimals of fractional metrics in the histogram.
	spreadScale = 1000
	// MaxSpreadValue is the largest observation NewSpread records, about
	// eleven days in microseconds.
	MaxSpreadValue = 1e12
)

// Spread summarizes the distribution of repeated observations.
type Spread struct {
	Count int64
	Min   float64
	Max   float64
	P90   float64
}

// NewSpread records values into an HDR histogram and reports its summary.
// Values must not be negative.
func NewSpread(values []float64) (Spread, error) {
	if len(values) == 0 {
		return Spread{}, ErrEmptySamples
	}

	h := hdrhistogram.New(1, MaxSpreadValue*spreadScale, 3)
	for _, v := range values {
		if v < 0 || v > MaxSpreadValue {
			return Spread{}, fmt.Errorf("value %g outside of [0, %g]", v, float64(MaxSpreadValue))
		}
		if err := h.RecordValue(int64(math.Round(v * spreadScale))); err != nil {
			return Spread{}, fmt.Errorf("failed to record value %g: %w", v, err)
		}
	}

	return Spread{
		Count: h.TotalCount(),
		Min:   float64(h.Min()) / spreadScale,
		Max:   float64(h.Max()) / spreadScale,
		P90:   float64(h.ValueAtQuantile(90)) / spreadScale,
	}, nil
}
