// Package runner executes the external join application and captures its
// standard output.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"al.essio.dev/pkg/shellescape"
	"github.com/perfgo/joinsweep/model"
	"github.com/rs/zerolog"
)

// DefaultDir is the working directory of the application, relative to the harness.
const DefaultDir = ".."

// ExternalProcessFailure is returned when the application exits with a
// non-zero status. Output holds whatever the process wrote to stdout.
type ExternalProcessFailure struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExternalProcessFailure) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

func (e *ExternalProcessFailure) Unwrap() error {
	return e.Err
}

// Runner runs the application once per call.
type Runner struct {
	logger zerolog.Logger

	// Program is the application binary, resolved relative to Dir
	Program string
	// Dir is the working directory of the application
	Dir string
	// Stdout receives a copy of every captured output when set
	Stdout io.Writer
	// Stderr receives the application's stderr when set, it is discarded otherwise
	Stderr io.Writer
}

// New creates a Runner for the given program and working directory. Empty
// values fall back to ./app in the parent directory.
func New(logger zerolog.Logger, program, dir string) *Runner {
	if program == "" {
		program = model.DefaultProgram
	}
	if dir == "" {
		dir = DefaultDir
	}
	return &Runner{
		logger:  logger,
		Program: program,
		Dir:     dir,
	}
}

// Run executes the application with the arguments of cfg and returns its
// standard output. It blocks until the process exits.
func (r *Runner) Run(cfg model.RunConfig) (string, error) {
	return r.Exec(cfg.Args())
}

// Exec executes the application with raw arguments.
func (r *Runner) Exec(args []string) (string, error) {
	cmd := exec.Command(r.Program, args...)
	cmd.Dir = r.Dir

	var stdoutBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	command := shellescape.QuoteCommand(append([]string{r.Program}, args...))
	r.logger.Debug().
		Str("dir", r.Dir).
		Str("command", command).
		Msg("Executing application")

	err := cmd.Run()
	output := stdoutBuf.String()

	if r.Stdout != nil && output != "" {
		if _, werr := io.WriteString(r.Stdout, output); werr != nil {
			r.logger.Debug().Err(werr).Msg("Failed to echo application output")
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &ExternalProcessFailure{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Output:   output,
				Err:      err,
			}
		}
		return output, fmt.Errorf("failed to execute %s: %w", command, err)
	}

	return output, nil
}
