package cli

// This file contains the build step rebuilding the application with make
// before a sweep.

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/perfgo/joinsweep/config"
)

// makeArgs returns the make arguments building the application for sw.
func makeArgs(sw config.Switches) []string {
	args := []string{"SGX_DEBUG=0"}
	if sw.Debug {
		args = []string{"SGX_DEBUG=1", "SGX_PRERELEASE=0"}
	}

	enclaveConfig := sw.EnclaveConfig
	if enclaveConfig == "" {
		enclaveConfig = config.DefaultEnclaveConfig
	}
	args = append(args, "CONFIG="+enclaveConfig)

	if len(sw.Flags) > 0 {
		defines := make([]string, len(sw.Flags))
		for i, flag := range sw.Flags {
			defines[i] = "-D" + flag
		}
		args = append(args, "CFLAGS="+strings.Join(defines, " "))
	}
	return args
}

func (a *App) compileApp(sw config.Switches) error {
	a.logger.Info().
		Str("dir", sw.AppDir).
		Bool("debug", sw.Debug).
		Strs("flags", sw.Flags).
		Msg("Compiling application")

	if err := a.make(sw.AppDir, "clean"); err != nil {
		return err
	}
	return a.make(sw.AppDir, makeArgs(sw)...)
}

func (a *App) make(dir string, args ...string) error {
	cmd := exec.Command("make", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{"make"}, args...))).
		Msg("Executing make")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run make %s: %w (stderr: %s)", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
