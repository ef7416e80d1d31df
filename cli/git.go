package cli

// This file contains Git integration utilities for recording the revision of
// the application a sweep ran against.

import (
	"fmt"
	"os/exec"
	"strings"
)

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// getGitInfo returns the commit and branch checked out in dir.
func (a *App) getGitInfo(dir string) (commit, branch string, err error) {
	commit, err = gitOutput(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git commit: %w", err)
	}

	branch, err = gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git branch: %w", err)
	}

	if dirty, err := gitOutput(dir, "status", "--porcelain", "--untracked-files=no"); err == nil && dirty != "" {
		a.logger.Debug().Str("dir", dir).Msg("Application tree has uncommitted changes")
		commit += "-dirty"
	}

	return commit, branch, nil
}
