package model

import "time"

// History represents a single sweep execution. It is written once the sweep
// has finished, successfully or not.
type History struct {
	// Unique ID for this sweep (UUID)
	ID string `json:"id"`
	// Name of the experiment that was swept
	Experiment string `json:"experiment"`
	// Timestamp when the sweep started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory of the external application
	AppDir string `json:"app_dir"`
	// Exit code of the sweep (0 on success)
	ExitCode int `json:"exit_code"`
	// Error message of a failed sweep
	Error string `json:"error,omitempty"`
	// Duration of the whole sweep
	Duration time.Duration `json:"duration"`
	// Repetitions per sweep point
	Repetitions int `json:"repetitions"`
	// Number of sweep points in the plan
	Points int `json:"points"`
	// Number of rows written to the results table
	Rows int `json:"rows"`
	// Results table written by the sweep
	ResultsFile string `json:"results_file"`
	// Captured output of the failed application run, relative to the record
	OutputFile string `json:"output_file,omitempty"`
	// Whether the application was rebuilt before the sweep
	Compiled bool `json:"compiled,omitempty"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Execution environment
	Target *Target `json:"target,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
}

// Target contains information about the execution environment
type Target struct {
	// Host name of the machine running the sweep
	Host string `json:"host,omitempty"`
	// Operating system of the execution environment
	OS string `json:"os,omitempty"`
	// CPU architecture of the execution environment
	Arch string `json:"arch,omitempty"`
}
