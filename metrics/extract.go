// Package metrics extracts numeric performance metrics from the textual output
// of the join application and reduces repeated observations.
package metrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind selects how the value following a marker is parsed.
type Kind int

const (
	// Int values are time-like counters printed as integers.
	Int Kind = iota
	// Float values are rate-like measurements.
	Float
)

func (k Kind) String() string {
	if k == Float {
		return "float"
	}
	return "int"
}

// Marker binds a substring in the application output to a metric name.
type Marker struct {
	Text   string
	Metric string
	Kind   Kind
}

// Metric names reported by the default extractor.
const (
	Time           = "time"
	Throughput     = "throughput"
	BuildTime      = "buildTime"
	ProbeTime      = "probeTime"
	DeleteTime     = "deleteTime"
	LeftInitTime   = "leftInitTime"
	LeftBuildTime  = "leftBuildTime"
	LeftProbeTime  = "leftProbeTime"
	RightInitTime  = "rightInitTime"
	RightBuildTime = "rightBuildTime"
	RightProbeTime = "rightProbeTime"
)

// DefaultMarkers lists the markers printed by the join application.
// Order matters: the first marker contained in a line claims it.
var DefaultMarkers = []Marker{
	{Text: "joinTotalTime", Metric: Time, Kind: Int},
	{Text: "joinThroughput", Metric: Throughput, Kind: Float},
	{Text: "leftInitTime", Metric: LeftInitTime, Kind: Int},
	{Text: "leftBuildTime", Metric: LeftBuildTime, Kind: Int},
	{Text: "leftProbeTime", Metric: LeftProbeTime, Kind: Int},
	{Text: "rightInitTime", Metric: RightInitTime, Kind: Int},
	{Text: "rightBuildTime", Metric: RightBuildTime, Kind: Int},
	{Text: "rightProbeTime", Metric: RightProbeTime, Kind: Int},
	{Text: "buildTime", Metric: BuildTime, Kind: Int},
	{Text: "probeTime", Metric: ProbeTime, Kind: Int},
	{Text: "deleteTime", Metric: DeleteTime, Kind: Int},
}

var ansiEscape = regexp.MustCompile(`(\x9B|\x1B\[)[0-?]*[ -/]*[@-~]`)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// MalformedValueError is returned when a line carries a marker but no
// parsable value.
type MalformedValueError struct {
	Marker string
	Line   string
	Err    error
}

func (e *MalformedValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed value for %s in %q: %v", e.Marker, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed value for %s in %q", e.Marker, e.Line)
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

// Extractor scans application output for marker lines.
type Extractor struct {
	markers []Marker
}

// NewExtractor creates an extractor for the given markers, or for
// DefaultMarkers when none are passed.
func NewExtractor(markers ...Marker) *Extractor {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Extractor{markers: markers}
}

// Markers returns the marker list in matching order.
func (e *Extractor) Markers() []Marker {
	return e.markers
}

// Extract returns the metric values found in text. When a marker appears
// more than once the last occurrence wins.
func (e *Extractor) Extract(text string) (map[string]float64, error) {
	values := make(map[string]float64)

	for _, line := range strings.Split(text, "\n") {
		m, ok := e.match(line)
		if !ok {
			continue
		}

		v, err := parse(m, line)
		if err != nil {
			return nil, err
		}
		values[m.Metric] = v
	}

	return values, nil
}

func (e *Extractor) match(line string) (Marker, bool) {
	for _, m := range e.markers {
		if strings.Contains(line, m.Text) {
			return m, true
		}
	}
	return Marker{}, false
}

func parse(m Marker, line string) (float64, error) {
	_, raw, found := strings.Cut(line, ": ")
	if !found {
		return 0, &MalformedValueError{Marker: m.Text, Line: line}
	}
	raw = strings.TrimSpace(StripANSI(raw))

	switch m.Kind {
	case Float:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &MalformedValueError{Marker: m.Text, Line: line, Err: err}
		}
		return v, nil
	default:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, &MalformedValueError{Marker: m.Text, Line: line, Err: err}
		}
		return float64(v), nil
	}
}

// Samples collects the observations of each metric across repetitions.
type Samples map[string][]float64

// Add appends one repetition's values.
func (s Samples) Add(values map[string]float64) {
	for name, v := range values {
		s[name] = append(s[name], v)
	}
}
