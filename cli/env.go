package cli

// This file contains loading of the optional environment file providing the
// JOINSWEEP_* defaults.

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile is read from the working directory before the flags are parsed.
const EnvFile = ".env"

// loadEnvFile exports the variables of path that are not set yet. A missing
// file is ignored.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
