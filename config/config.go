// Package config loads the run switches of a sweep from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no switch file is given explicitly.
const DefaultFile = "config.yaml"

// DefaultEnclaveConfig is the enclave configuration passed to make.
const DefaultEnclaveConfig = "Enclave/Enclave.config.xml"

// Switches control a sweep run.
type Switches struct {
	// Run the sweep
	Experiment bool `yaml:"experiment"`
	// Rebuild the application before the sweep
	Compile bool `yaml:"compile"`
	// Render the charts after the sweep
	Plot bool `yaml:"plot"`
	// Repetitions of every sweep point
	Repetitions int `yaml:"repetitions"`

	// Build with enclave debugging enabled
	Debug bool `yaml:"debug"`
	// Preprocessor defines passed as CFLAGS, without the -D prefix
	Flags []string `yaml:"flags"`
	// Enclave configuration file, relative to the application directory
	EnclaveConfig string `yaml:"enclave-config"`

	AppDir     string `yaml:"app-dir"`
	Program    string `yaml:"program"`
	ResultsDir string `yaml:"results-dir"`
}

// Default returns the switches used when no file is present.
func Default() Switches {
	return Switches{
		Experiment:    true,
		Plot:          true,
		Repetitions:   3,
		EnclaveConfig: DefaultEnclaveConfig,
		AppDir:        "..",
		Program:       "./app",
		ResultsDir:    "results",
	}
}

// Load reads the switch file at path on top of the defaults. A missing file
// is only an error when required is set.
func Load(path string, required bool) (Switches, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return s, nil
		}
		return s, fmt.Errorf("failed to read switch file: %w", err)
	}

	if err := Decode(bytes.NewReader(data), &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, s.Validate()
}

// Decode overlays the YAML document read from r onto s. Unknown keys are
// rejected.
func Decode(r io.Reader, s *Switches) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the switch values.
func (s Switches) Validate() error {
	if s.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", s.Repetitions)
	}
	return nil
}
