package model

// This file contains the run configuration describing a single invocation of
// the external join application.

import (
	"fmt"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// DefaultProgram is the external join application, relative to its working directory.
const DefaultProgram = "./app"

// baselineAlgorithms always run without the enclave.
var baselineAlgorithms = map[string]bool{
	"SHJ":    true,
	"SHJ-L0": true,
}

// IsBaseline reports whether the algorithm belongs to the non-isolated baseline family.
func IsBaseline(algorithm string) bool {
	return baselineAlgorithms[algorithm]
}

// RunConfig holds the parameters of one invocation of the external application.
// Every field is optional; unset fields are omitted from the command line.
// Use the With* methods to derive modified copies.
type RunConfig struct {
	// Free-form label, never passed to the application
	Name string

	algorithm *string
	dataset   *string
	rBatch    *int
	sBatch    *int
	rRate     *int
	sRate     *int
	rSize     *int
	sSize     *int
	rWindow   *int
	sWindow   *int
	skew      *float64
	fkJoin    bool
	selfJoin  bool
	noSGX     bool
	nThreads  *int
}

func ptr[T any](v T) *T { return &v }

func (c RunConfig) WithName(name string) RunConfig {
	c.Name = name
	return c
}

func (c RunConfig) WithAlgorithm(alg string) RunConfig {
	c.algorithm = ptr(alg)
	return c
}

func (c RunConfig) WithDataset(dataset string) RunConfig {
	c.dataset = ptr(dataset)
	return c
}

// WithBatch sets the micro-batch size of both streams.
func (c RunConfig) WithBatch(r, s int) RunConfig {
	c.rBatch, c.sBatch = ptr(r), ptr(s)
	return c
}

// WithRate sets the arrival rate of both streams in tuples per second.
func (c RunConfig) WithRate(r, s int) RunConfig {
	c.rRate, c.sRate = ptr(r), ptr(s)
	return c
}

// WithSize sets the total number of tuples of both streams.
func (c RunConfig) WithSize(r, s int) RunConfig {
	c.rSize, c.sSize = ptr(r), ptr(s)
	return c
}

// WithWindow sets the count-based window of both streams.
func (c RunConfig) WithWindow(r, s int) RunConfig {
	c.rWindow, c.sWindow = ptr(r), ptr(s)
	return c
}

func (c RunConfig) WithSkew(skew float64) RunConfig {
	c.skew = ptr(skew)
	return c
}

func (c RunConfig) WithFKJoin(on bool) RunConfig {
	c.fkJoin = on
	return c
}

func (c RunConfig) WithSelfJoin(on bool) RunConfig {
	c.selfJoin = on
	return c
}

func (c RunConfig) WithNoSGX(on bool) RunConfig {
	c.noSGX = on
	return c
}

func (c RunConfig) WithThreads(n int) RunConfig {
	c.nThreads = ptr(n)
	return c
}

// Algorithm returns the algorithm identifier, or "" when unset.
func (c RunConfig) Algorithm() string { return deref(c.algorithm) }

// Dataset returns the dataset identifier, or "" when unset.
func (c RunConfig) Dataset() string { return deref(c.dataset) }

func (c RunConfig) RBatch() int    { return deref(c.rBatch) }
func (c RunConfig) SBatch() int    { return deref(c.sBatch) }
func (c RunConfig) RRate() int     { return deref(c.rRate) }
func (c RunConfig) SRate() int     { return deref(c.sRate) }
func (c RunConfig) RSize() int     { return deref(c.rSize) }
func (c RunConfig) SSize() int     { return deref(c.sSize) }
func (c RunConfig) RWindow() int   { return deref(c.rWindow) }
func (c RunConfig) SWindow() int   { return deref(c.sWindow) }
func (c RunConfig) Skew() float64  { return deref(c.skew) }
func (c RunConfig) Threads() int   { return deref(c.nThreads) }
func (c RunConfig) FKJoin() bool   { return c.fkJoin }
func (c RunConfig) SelfJoin() bool { return c.selfJoin }

// NoSGX reports whether the application runs without the enclave. Baseline
// algorithms always do, whatever the stored flag says.
func (c RunConfig) NoSGX() bool {
	return c.noSGX || IsBaseline(c.Algorithm())
}

// InputTuples returns the combined size of both streams.
func (c RunConfig) InputTuples() int {
	return c.RSize() + c.SSize()
}

// StreamedTuples returns the tuples arriving after both windows are filled.
func (c RunConfig) StreamedTuples() int {
	return c.RSize() + c.SSize() - c.RWindow() - c.SWindow()
}

// Args returns the command line arguments for the application in their
// fixed order.
func (c RunConfig) Args() []string {
	args := []string{}

	str := func(flag string, v *string) {
		if v != nil {
			args = append(args, flag, *v)
		}
	}
	num := func(flag string, v *int) {
		if v != nil {
			args = append(args, flag, strconv.Itoa(*v))
		}
	}
	flag := func(name string, on bool) {
		if on {
			args = append(args, name)
		}
	}

	str("--alg", c.algorithm)
	str("--dataset", c.dataset)
	num("--r-batch", c.rBatch)
	num("--s-batch", c.sBatch)
	num("--r-rate", c.rRate)
	num("--s-rate", c.sRate)
	num("--r-size", c.rSize)
	num("--s-size", c.sSize)
	num("--r-window", c.rWindow)
	num("--s-window", c.sWindow)
	if c.skew != nil {
		args = append(args, "--skew", strconv.FormatFloat(*c.skew, 'f', -1, 64))
	}
	flag("--fk-join", c.fkJoin)
	flag("--self-join", c.selfJoin)
	flag("--no-sgx", c.NoSGX())
	num("--nthreads", c.nThreads)

	return args
}

// Command returns the invocation as a single shell-quoted line.
func (c RunConfig) Command(program string) string {
	if program == "" {
		program = DefaultProgram
	}
	args := c.Args()
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellescape.Quote(program))
	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}
	return strings.Join(parts, " ")
}

// Describe returns a multi-line description for logs.
func (c RunConfig) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config(name: %s, algorithm: %s, dataset: %s)\n", orNone(c.Name), show(c.algorithm), show(c.dataset))
	fmt.Fprintf(&b, "\tR Stream: size=%s rate=%s window=%s batch=%s\n", show(c.rSize), show(c.rRate), show(c.rWindow), show(c.rBatch))
	fmt.Fprintf(&b, "\tS Stream: size=%s rate=%s window=%s batch=%s skew=%s\n", show(c.sSize), show(c.sRate), show(c.sWindow), show(c.sBatch), show(c.skew))
	fmt.Fprintf(&b, "\tFK-join=%t self-join=%t no-sgx=%t nthreads=%s", c.fkJoin, c.selfJoin, c.NoSGX(), show(c.nThreads))
	return b.String()
}

func (c RunConfig) String() string {
	return c.Describe()
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func show[T any](v *T) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprint(*v)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
