package sweep

// This file contains the sweep dimensions and their Cartesian product.

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Dimension is one named axis of a sweep.
type Dimension struct {
	Name   string
	Values []any
}

// Values builds a dimension from typed values.
func Values[T any](name string, values ...T) Dimension {
	d := Dimension{Name: name, Values: make([]any, len(values))}
	for i, v := range values {
		d.Values[i] = v
	}
	return d
}

// Point is one combination of dimension values.
type Point struct {
	names  []string
	values []any
}

// Value returns the value of the named dimension and whether it exists.
func (p Point) Value(name string) (any, bool) {
	for i, n := range p.names {
		if n == name {
			return p.values[i], true
		}
	}
	return nil, false
}

// String returns the named value as a string, or "" when absent.
func (p Point) String(name string) string {
	v, ok := p.Value(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the named value as an int, or 0 when absent or not an integer.
func (p Point) Int(name string) int {
	v, _ := p.Value(name)
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	}
	return 0
}

// Describe renders the point as name=value pairs in dimension order.
func (p Point) Describe() string {
	parts := make([]string, len(p.names))
	for i := range p.names {
		parts[i] = fmt.Sprintf("%s=%v", p.names[i], p.values[i])
	}
	return strings.Join(parts, " ")
}

// Product returns every combination of the dimension values. The first
// dimension varies slowest. Without dimensions there is exactly one empty
// point; any empty dimension yields no points.
func Product(dims ...Dimension) []Point {
	total := 1
	for _, d := range dims {
		total *= len(d.Values)
	}

	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}

	points := make([]Point, 0, total)
	for idx := 0; idx < total; idx++ {
		values := make([]any, len(dims))
		rem := idx
		for i := len(dims) - 1; i >= 0; i-- {
			n := len(dims[i].Values)
			values[i] = dims[i].Values[rem%n]
			rem /= n
		}
		points = append(points, Point{names: names, values: values})
	}
	return points
}

// NextPowerOfTwo returns n when it is a power of two and the next larger
// power of two otherwise. Zero maps to zero.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

// LogSpaced returns n values evenly spaced on a log10 scale between start
// and end, inclusive, each rounded and snapped to a power of two.
func LogSpaced(start, end float64, n int) []int {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []int{NextPowerOfTwo(int(math.Round(start)))}
	}

	lo, hi := math.Log10(start), math.Log10(end)
	step := (hi - lo) / float64(n-1)

	out := make([]int, n)
	for i := range out {
		v := math.Round(math.Pow(10, lo+float64(i)*step))
		out[i] = NextPowerOfTwo(int(v))
	}
	return out
}
